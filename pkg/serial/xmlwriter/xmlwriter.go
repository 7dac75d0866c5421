// Package xmlwriter renders an object as indented XML for inspection. The
// output is not meant to be read back.
package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"unicode/utf16"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/meta"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/text"
)

const indentStep = "    "

var _ meta.Serializer = (*Writer)(nil)

// Writer is a meta.Serializer producing
//
//	<object type="struct_a">
//	    <value type="int32">1</value>
//	</object>
type Writer struct {
	w      io.Writer
	err    error
	indent string
	depth  int
}

// New returns a Writer writing to w.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error that occurred while writing.
func (x *Writer) Err() error {
	return x.err
}

func (x *Writer) line(parts ...string) {
	if x.err != nil {
		return
	}
	var b strings.Builder
	b.WriteString(x.indent)
	for _, p := range parts {
		b.WriteString(p)
	}
	b.WriteByte('\n')
	_, x.err = io.WriteString(x.w, b.String())
}

func (x *Writer) push() {
	x.indent += indentStep
}

func (x *Writer) pop() {
	x.indent = x.indent[:max(len(x.indent)-len(indentStep), 0)]
}

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// BeginObject opens an <object> element typed with name.
func (x *Writer) BeginObject(name string) error {
	x.line(`<object type="`, escape(name), `">`)
	x.push()
	x.depth++
	return x.err
}

// EndObject closes the innermost <object> element.
func (x *Writer) EndObject() error {
	if x.err == nil && x.depth == 0 {
		x.err = serrors.New(serrors.ErrStructuralMismatch, "end object", "no open object")
	}
	x.depth--
	x.pop()
	x.line("</object>")
	return x.err
}

// BeginList opens a <list> element.
func (x *Writer) BeginList(int) error {
	x.line("<list>")
	x.push()
	return x.err
}

// EndList closes the innermost <list> element.
func (x *Writer) EndList() error {
	x.pop()
	x.line("</list>")
	return x.err
}

// WriteValue writes v as a <value> element tagged with its kind.
func (x *Writer) WriteValue(v primitive.Value) error {
	if x.err != nil {
		return x.err
	}
	body, err := content(v)
	if err != nil {
		x.err = err
		return err
	}
	x.line(`<value type="`, v.Tag().String(), `">`, escape(body), "</value>")
	return x.err
}

// content is the element text for v: strings verbatim, numbers in their
// text-format spelling.
func content(v primitive.Value) (string, error) {
	switch v.Tag() {
	case primitive.U8String:
		return primitive.MustCast[string](v), nil
	case primitive.U16String:
		return string(utf16.Decode(primitive.MustCast[primitive.UTF16](v))), nil
	case primitive.U32String:
		return string(primitive.MustCast[primitive.UTF32](v)), nil
	default:
		return text.Format(v)
	}
}

// Marshal renders instance with t.
func Marshal(instance any, t meta.Type) (string, error) {
	var b strings.Builder
	if err := t.Serialize(instance, New(&b)); err != nil {
		return "", err
	}
	return b.String(), nil
}
