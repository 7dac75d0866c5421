// Package text implements the human-readable wire format:
//
//	struct_b ( struct_a ( 1, 2 ), 3, { 4, 5, 6 } )
//
// An object is its type name followed by its members in parentheses, a list
// is a brace-enclosed run of values. Strings are Go-quoted literals; UTF-16
// and UTF-32 strings carry a u or U prefix.
package text

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/meta"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"
)

var _ meta.Serializer = (*Serializer)(nil)

// Serializer writes the text format to an io.Writer and keeps the first
// error it encounters.
type Serializer struct {
	w          io.StringWriter
	err        error
	afterValue bool
	depth      int
}

type stringWriter struct {
	io.Writer
}

func (w stringWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// NewSerializer returns a Serializer writing to w.
func NewSerializer(w io.Writer) *Serializer {
	sw, ok := w.(io.StringWriter)
	if !ok {
		sw = stringWriter{w}
	}
	return &Serializer{w: sw}
}

// Err returns the first error that occurred while writing.
func (s *Serializer) Err() error {
	return s.err
}

func (s *Serializer) write(str string) {
	if s.err != nil {
		return
	}
	_, s.err = s.w.WriteString(str)
}

func (s *Serializer) separate() {
	if s.afterValue {
		s.write(", ")
	}
}

// BeginObject writes name followed by an opening parenthesis.
func (s *Serializer) BeginObject(name string) error {
	if s.err == nil {
		if err := meta.ValidateName(name); err != nil {
			s.err = serrors.Wrap(serrors.ErrUnrepresentable, "begin object", err, "type name")
			return s.err
		}
	}
	s.separate()
	s.write(name)
	s.write(" ( ")
	s.afterValue = false
	s.depth++
	return s.err
}

// EndObject writes the closing parenthesis.
func (s *Serializer) EndObject() error {
	if s.err == nil && s.depth == 0 {
		s.err = serrors.New(serrors.ErrStructuralMismatch, "end object", "no open object")
	}
	if s.afterValue {
		s.write(" )")
	} else {
		s.write(")")
	}
	s.afterValue = true
	s.depth--
	return s.err
}

// BeginList writes an opening brace. The size is implied by the elements.
func (s *Serializer) BeginList(int) error {
	s.separate()
	s.write("{ ")
	s.afterValue = false
	return s.err
}

// EndList writes the closing brace.
func (s *Serializer) EndList() error {
	if s.afterValue {
		s.write(" }")
	} else {
		s.write("}")
	}
	s.afterValue = true
	return s.err
}

// WriteValue writes v as a literal, separated from the previous value.
func (s *Serializer) WriteValue(v primitive.Value) error {
	if s.err != nil {
		return s.err
	}
	lit, err := Format(v)
	if err != nil {
		s.err = err
		return err
	}
	s.separate()
	s.write(lit)
	s.afterValue = true
	return s.err
}

// Format returns the literal the text format uses for v.
func Format(v primitive.Value) (string, error) {
	var f formatter
	if err := v.Apply(&f); err != nil {
		return "", err
	}
	return f.out, nil
}

type formatter struct {
	out string
}

func (f *formatter) VisitNull() error {
	return serrors.New(serrors.ErrTypeMismatch, "format", "null has no text representation")
}

func (f *formatter) VisitInt8(x int8) error   { return f.formatInt(int64(x)) }
func (f *formatter) VisitInt16(x int16) error { return f.formatInt(int64(x)) }
func (f *formatter) VisitInt32(x int32) error { return f.formatInt(int64(x)) }
func (f *formatter) VisitInt64(x int64) error { return f.formatInt(x) }

func (f *formatter) VisitUint8(x uint8) error   { return f.formatUint(uint64(x)) }
func (f *formatter) VisitUint16(x uint16) error { return f.formatUint(uint64(x)) }
func (f *formatter) VisitUint32(x uint32) error { return f.formatUint(uint64(x)) }
func (f *formatter) VisitUint64(x uint64) error { return f.formatUint(x) }

func (f *formatter) VisitFloat32(x float32) error {
	f.out = strconv.FormatFloat(float64(x), 'g', -1, 32)
	return nil
}

func (f *formatter) VisitFloat64(x float64) error {
	f.out = strconv.FormatFloat(x, 'g', -1, 64)
	return nil
}

func (f *formatter) VisitLongDouble(x primitive.Float80) error {
	return f.VisitFloat64(float64(x))
}

func (f *formatter) VisitU8String(x string) error {
	f.out = strconv.Quote(x)
	return nil
}

func (f *formatter) VisitU16String(x primitive.UTF16) error {
	runes := make([]rune, 0, len(x))
	for i := 0; i < len(x); i++ {
		u := rune(x[i])
		switch {
		case !utf16.IsSurrogate(u):
			runes = append(runes, u)
		case u < 0xDC00 && i+1 < len(x) && utf16.DecodeRune(u, rune(x[i+1])) != utf8.RuneError:
			runes = append(runes, utf16.DecodeRune(u, rune(x[i+1])))
			i++
		default:
			return serrors.New(serrors.ErrUnrepresentable, "format u16string", "unpaired surrogate 0x%04X at unit %d", x[i], i)
		}
	}
	f.out = "u" + strconv.Quote(string(runes))
	return nil
}

func (f *formatter) VisitU32String(x primitive.UTF32) error {
	var b strings.Builder
	for i, r := range x {
		if !utf8.ValidRune(r) {
			return serrors.New(serrors.ErrUnrepresentable, "format u32string", "invalid code point 0x%X at index %d", r, i)
		}
		b.WriteRune(r)
	}
	f.out = "U" + strconv.Quote(b.String())
	return nil
}

func (f *formatter) formatInt(x int64) error {
	f.out = strconv.FormatInt(x, 10)
	return nil
}

func (f *formatter) formatUint(x uint64) error {
	f.out = strconv.FormatUint(x, 10)
	return nil
}

// Marshal renders instance with t.
func Marshal(instance any, t meta.Type) (string, error) {
	var b strings.Builder
	if err := t.Serialize(instance, NewSerializer(&b)); err != nil {
		return "", err
	}
	return b.String(), nil
}
