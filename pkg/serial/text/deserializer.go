package text

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/meta"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"
)

// SyntaxError reports input that does not follow the grammar. It always
// matches ErrMalformedInput.
type SyntaxError struct {
	Offset int
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("text: %s at offset %d: %v", e.Msg, e.Offset, e.Err)
	}
	return fmt.Sprintf("text: %s at offset %d", e.Msg, e.Offset)
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err == nil {
		return []error{serrors.ErrMalformedInput}
	}
	return []error{serrors.ErrMalformedInput, e.Err}
}

var _ meta.Deserializer = (*Deserializer)(nil)

// Deserializer parses the text format.
type Deserializer struct {
	src   string
	pos   int
	depth int
}

// NewDeserializer returns a Deserializer over src.
func NewDeserializer(src string) *Deserializer {
	return &Deserializer{src: src}
}

// Offset returns the current read position in bytes.
func (d *Deserializer) Offset() int {
	return d.pos
}

func (d *Deserializer) errorf(offset int, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isNameDelim(c byte) bool {
	return isSpace(c) || strings.IndexByte("(){},\"", c) >= 0
}

func isValueDelim(c byte) bool {
	return isSpace(c) || strings.IndexByte("(){},", c) >= 0
}

func (d *Deserializer) skipSpace() {
	for d.pos < len(d.src) && isSpace(d.src[d.pos]) {
		d.pos++
	}
}

func (d *Deserializer) skipSeparators() {
	for d.pos < len(d.src) && (isSpace(d.src[d.pos]) || d.src[d.pos] == ',') {
		d.pos++
	}
}

func (d *Deserializer) peekByte() (byte, bool) {
	if d.pos >= len(d.src) {
		return 0, false
	}
	return d.src[d.pos], true
}

func (d *Deserializer) expect(c byte, what string) error {
	got, ok := d.peekByte()
	if !ok {
		return d.errorf(d.pos, "expected %q to %s, found end of input", c, what)
	}
	if got != c {
		return d.errorf(d.pos, "expected %q to %s, found %q", c, what, got)
	}
	d.pos++
	return nil
}

func (d *Deserializer) scan(delim func(byte) bool) string {
	start := d.pos
	for d.pos < len(d.src) && !delim(d.src[d.pos]) {
		d.pos++
	}
	return d.src[start:d.pos]
}

// quotedEnd returns the offset just past the closing quote of the literal
// starting at i, or -1 if it is not terminated.
func quotedEnd(src string, i int) int {
	for i++; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return -1
}

// SeekObject consumes the next object's name and its opening parenthesis.
func (d *Deserializer) SeekObject() (string, error) {
	d.skipSeparators()
	start := d.pos
	name := d.scan(isNameDelim)
	if name == "" {
		if d.pos >= len(d.src) {
			return "", d.errorf(start, "expected type name, found end of input")
		}
		return "", d.errorf(start, "expected type name, found %q", d.src[d.pos])
	}
	d.skipSpace()
	if c, ok := d.peekByte(); !ok || c != '(' {
		pos := d.pos
		d.pos = start
		return "", d.errorf(pos, "expected '(' after type name %q", name)
	}
	return name, nil
}

// PeekObject returns the next object's name without consuming it.
func (d *Deserializer) PeekObject() (string, error) {
	pos := d.pos
	defer func() { d.pos = pos }()
	return d.SeekObject()
}

// BeginObject opens an object whose header SeekObject already consumed.
func (d *Deserializer) BeginObject(string) error {
	d.skipSpace()
	if err := d.expect('(', "open object"); err != nil {
		return err
	}
	d.depth++
	return nil
}

// EndObject closes the innermost object. Closing the outermost one requires
// the rest of the input to be separators only.
func (d *Deserializer) EndObject() error {
	if d.depth == 0 {
		return d.errorf(d.pos, "unbalanced ')'")
	}
	d.skipSeparators()
	if err := d.expect(')', "close object"); err != nil {
		return err
	}
	d.depth--
	if d.depth == 0 {
		d.skipSeparators()
		if d.pos != len(d.src) {
			return d.errorf(d.pos, "unexpected trailing input %q", d.src[d.pos:])
		}
	}
	return nil
}

// BeginList consumes '{' and counts the values up to the matching '}'
// without consuming them.
func (d *Deserializer) BeginList(primitive.Tag) (int, error) {
	d.skipSeparators()
	if err := d.expect('{', "open list"); err != nil {
		return 0, err
	}
	n, i := 0, d.pos
	for {
		for i < len(d.src) && (isSpace(d.src[i]) || d.src[i] == ',') {
			i++
		}
		if i >= len(d.src) {
			return 0, d.errorf(i, "list opened at offset %d is not closed", d.pos-1)
		}
		switch c := d.src[i]; {
		case c == '}':
			return n, nil
		case c == '"' || (c == 'u' || c == 'U') && i+1 < len(d.src) && d.src[i+1] == '"':
			if c != '"' {
				i++
			}
			end := quotedEnd(d.src, i)
			if end < 0 {
				return 0, d.errorf(i, "unterminated string literal")
			}
			i = end
		case c == '{' || c == '(' || c == ')':
			return 0, d.errorf(i, "unexpected %q inside list", c)
		default:
			for i < len(d.src) && !isValueDelim(d.src[i]) {
				i++
			}
		}
		n++
	}
}

// EndList consumes the closing brace of a list.
func (d *Deserializer) EndList() error {
	d.skipSeparators()
	return d.expect('}', "close list")
}

// ReadValue parses one literal of the given tag.
func (d *Deserializer) ReadValue(tag primitive.Tag) (primitive.Value, error) {
	d.skipSeparators()
	start := d.pos
	if tag.IsString() {
		return d.readString(tag)
	}
	tok := d.scan(isValueDelim)
	if tok == "" {
		if d.pos >= len(d.src) {
			return primitive.Value{}, d.errorf(start, "expected %s, found end of input", tag)
		}
		return primitive.Value{}, d.errorf(start, "expected %s, found %q", tag, d.src[d.pos])
	}
	v, err := parseNumber(tag, tok)
	if err != nil {
		d.pos = start
		if errors.Is(err, serrors.ErrTypeMismatch) {
			return primitive.Value{}, err
		}
		return primitive.Value{}, &SyntaxError{Offset: start, Msg: fmt.Sprintf("invalid %s %q", tag, tok), Err: err}
	}
	return v, nil
}

func parseNumber(tag primitive.Tag, tok string) (primitive.Value, error) {
	switch tag {
	case primitive.Int8, primitive.Int16, primitive.Int32, primitive.Int64:
		x, err := strconv.ParseInt(tok, 10, tag.Width()*8)
		if err != nil {
			return primitive.Value{}, err
		}
		switch tag {
		case primitive.Int8:
			return primitive.New(int8(x)), nil
		case primitive.Int16:
			return primitive.New(int16(x)), nil
		case primitive.Int32:
			return primitive.New(int32(x)), nil
		default:
			return primitive.New(x), nil
		}
	case primitive.Uint8, primitive.Uint16, primitive.Uint32, primitive.Uint64:
		x, err := strconv.ParseUint(tok, 10, tag.Width()*8)
		if err != nil {
			return primitive.Value{}, err
		}
		switch tag {
		case primitive.Uint8:
			return primitive.New(uint8(x)), nil
		case primitive.Uint16:
			return primitive.New(uint16(x)), nil
		case primitive.Uint32:
			return primitive.New(uint32(x)), nil
		default:
			return primitive.New(x), nil
		}
	case primitive.Float32:
		x, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return primitive.Value{}, err
		}
		return primitive.New(float32(x)), nil
	case primitive.Float64, primitive.LongDouble:
		x, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return primitive.Value{}, err
		}
		if tag == primitive.LongDouble {
			return primitive.New(primitive.Float80(x)), nil
		}
		return primitive.New(x), nil
	default:
		return primitive.Value{}, serrors.New(serrors.ErrTypeMismatch, "read value", "%s has no text representation", tag)
	}
}

func (d *Deserializer) readString(tag primitive.Tag) (primitive.Value, error) {
	start := d.pos
	prefix := ""
	switch tag {
	case primitive.U16String:
		prefix = "u"
	case primitive.U32String:
		prefix = "U"
	}
	if !strings.HasPrefix(d.src[d.pos:], prefix+`"`) {
		return primitive.Value{}, d.errorf(start, "expected %s literal %s\"...\"", tag, prefix)
	}
	q := d.pos + len(prefix)
	end := quotedEnd(d.src, q)
	if end < 0 {
		return primitive.Value{}, d.errorf(start, "unterminated string literal")
	}
	s, err := strconv.Unquote(d.src[q:end])
	if err != nil {
		return primitive.Value{}, &SyntaxError{Offset: start, Msg: "invalid string literal", Err: err}
	}
	switch tag {
	case primitive.U16String, primitive.U32String:
		if !utf8.ValidString(s) {
			return primitive.Value{}, d.errorf(start, "%s literal is not valid UTF-8", tag)
		}
	}
	d.pos = end
	switch tag {
	case primitive.U16String:
		return primitive.New(primitive.UTF16(utf16.Encode([]rune(s)))), nil
	case primitive.U32String:
		return primitive.New(primitive.UTF32([]rune(s))), nil
	default:
		return primitive.New(s), nil
	}
}

// Unmarshal parses one instance of t from src into instance.
func Unmarshal(src string, instance any, t meta.Type) error {
	return t.Deserialize(instance, NewDeserializer(src))
}
