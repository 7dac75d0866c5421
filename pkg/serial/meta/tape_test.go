package meta

import (
	"fmt"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"
)

type tokenKind int

const (
	tokBeginObject tokenKind = iota
	tokEndObject
	tokBeginList
	tokEndList
	tokValue
)

type token struct {
	kind tokenKind
	name string
	n    int
	v    primitive.Value
}

// tape records protocol calls and replays them. It implements both
// Serializer and Deserializer so metadata can be exercised without a wire
// format.
type tape struct {
	toks []token
	pos  int
}

func (t *tape) BeginObject(name string) error {
	t.toks = append(t.toks, token{kind: tokBeginObject, name: name})
	return nil
}

func (t *tape) EndObject() error {
	t.toks = append(t.toks, token{kind: tokEndObject})
	return nil
}

func (t *tape) BeginList(size int) error {
	t.toks = append(t.toks, token{kind: tokBeginList, n: size})
	return nil
}

func (t *tape) EndList() error {
	t.toks = append(t.toks, token{kind: tokEndList})
	return nil
}

func (t *tape) WriteValue(v primitive.Value) error {
	t.toks = append(t.toks, token{kind: tokValue, v: v})
	return nil
}

func (t *tape) next(kind tokenKind) (token, error) {
	if t.pos >= len(t.toks) {
		return token{}, serrors.New(serrors.ErrOutOfRange, "tape", "end of tape")
	}
	tok := t.toks[t.pos]
	if tok.kind != kind {
		return token{}, serrors.New(serrors.ErrMalformedInput, "tape", "token %d: want kind %d, have %d", t.pos, kind, tok.kind)
	}
	t.pos++
	return tok, nil
}

// reader returns a fresh replay cursor over the recorded tokens.
func (t *tape) reader() *tapeReader {
	return &tapeReader{tape: &tape{toks: t.toks}}
}

type tapeReader struct {
	*tape
}

func (r *tapeReader) SeekObject() (string, error) {
	tok, err := r.next(tokBeginObject)
	return tok.name, err
}

func (r *tapeReader) PeekObject() (string, error) {
	pos := r.pos
	name, err := r.SeekObject()
	r.pos = pos
	return name, err
}

func (r *tapeReader) BeginObject(string) error { return nil }

func (r *tapeReader) EndObject() error {
	_, err := r.next(tokEndObject)
	return err
}

func (r *tapeReader) BeginList(primitive.Tag) (int, error) {
	tok, err := r.next(tokBeginList)
	return tok.n, err
}

func (r *tapeReader) EndList() error {
	_, err := r.next(tokEndList)
	return err
}

func (r *tapeReader) ReadValue(tag primitive.Tag) (primitive.Value, error) {
	tok, err := r.next(tokValue)
	if err != nil {
		return primitive.Value{}, err
	}
	if tok.v.Tag() != tag {
		return primitive.Value{}, serrors.New(serrors.ErrTypeMismatch, "tape", "want %s, have %s", tag, tok.v.Tag())
	}
	return tok.v, nil
}

func (t *tape) String() string {
	return fmt.Sprint(t.toks)
}
