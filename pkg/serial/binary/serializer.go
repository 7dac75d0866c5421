// Package binary implements the positional binary wire format.
//
// Objects are written as a length-prefixed name followed by their members,
// lists as a u32 element count followed by the elements. Numbers use their
// fixed-width in-memory layout in the host byte order, so a payload is only
// portable between hosts of the same architecture.
package binary

import (
	"bytes"
	ebinary "encoding/binary"
	"io"
	"math"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/meta"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"
)

var nativeEndian = ebinary.NativeEndian

var _ meta.Serializer = (*Serializer)(nil)

// Serializer writes the binary format to an io.Writer. It keeps the first
// error it encounters; every later call is a no-op that returns it.
type Serializer struct {
	w            io.Writer
	err          error
	bytesWritten int
	depth        int
	scratch      [float80Size]byte
}

// NewSerializer returns a Serializer writing to w. A *bytes.Buffer is the
// usual destination.
func NewSerializer(w io.Writer) *Serializer {
	return &Serializer{w: w}
}

// Bytes returns the written bytes if the destination is a *bytes.Buffer and
// no error has occurred, nil otherwise.
func (s *Serializer) Bytes() []byte {
	if s.err != nil {
		return nil
	}
	if bb, ok := s.w.(*bytes.Buffer); ok {
		return bb.Bytes()
	}
	return nil
}

// Err returns the first error that occurred while writing.
func (s *Serializer) Err() error {
	return s.err
}

// BytesWritten returns how many bytes reached the destination.
func (s *Serializer) BytesWritten() int {
	return s.bytesWritten
}

func (s *Serializer) recordError(err error) {
	if s.err == nil && err != nil {
		s.err = err
	}
}

func (s *Serializer) write(p []byte) {
	if s.err != nil {
		return
	}
	n, err := s.w.Write(p)
	s.bytesWritten += n
	s.recordError(err)
}

func (s *Serializer) writeUint32(op string, n int) {
	if s.err != nil {
		return
	}
	if n < 0 || uint64(n) > math.MaxUint32 {
		s.recordError(serrors.New(serrors.ErrOutOfRange, op, "length %d does not fit in u32", n))
		return
	}
	nativeEndian.PutUint32(s.scratch[:4], uint32(n))
	s.write(s.scratch[:4])
}

func (s *Serializer) writeString(op, str string) {
	s.writeUint32(op, len(str))
	if s.err == nil && len(str) > 0 {
		if sw, ok := s.w.(io.StringWriter); ok {
			n, err := sw.WriteString(str)
			s.bytesWritten += n
			s.recordError(err)
			return
		}
		s.write([]byte(str))
	}
}

// BeginObject writes name with its u32 length prefix.
func (s *Serializer) BeginObject(name string) error {
	if s.err == nil && name == "" {
		s.recordError(serrors.New(serrors.ErrMalformedInput, "begin object", "empty type name"))
	}
	s.writeString("begin object", name)
	if s.err == nil {
		s.depth++
	}
	return s.err
}

// EndObject closes the innermost object. It writes nothing.
func (s *Serializer) EndObject() error {
	if s.err == nil {
		if s.depth == 0 {
			s.recordError(serrors.New(serrors.ErrStructuralMismatch, "end object", "no open object"))
		} else {
			s.depth--
		}
	}
	return s.err
}

// BeginList writes the element count as a u32.
func (s *Serializer) BeginList(size int) error {
	s.writeUint32("begin list", size)
	return s.err
}

// EndList writes nothing and returns the sticky error.
func (s *Serializer) EndList() error {
	return s.err
}

// WriteValue writes the active representation of v in native byte order.
func (s *Serializer) WriteValue(v primitive.Value) error {
	if s.err != nil {
		return s.err
	}
	s.recordError(v.Apply(valueWriter{s}))
	return s.err
}

// valueWriter writes the active representation of a Value.
type valueWriter struct {
	s *Serializer
}

func (w valueWriter) fixed(n int, put func([]byte)) error {
	put(w.s.scratch[:n])
	w.s.write(w.s.scratch[:n])
	return w.s.err
}

func (w valueWriter) VisitNull() error {
	return serrors.New(serrors.ErrTypeMismatch, "write value", "null has no binary representation")
}

func (w valueWriter) VisitInt8(x int8) error {
	return w.fixed(1, func(b []byte) { b[0] = byte(x) })
}

func (w valueWriter) VisitInt16(x int16) error {
	return w.fixed(2, func(b []byte) { nativeEndian.PutUint16(b, uint16(x)) })
}

func (w valueWriter) VisitInt32(x int32) error {
	return w.fixed(4, func(b []byte) { nativeEndian.PutUint32(b, uint32(x)) })
}

func (w valueWriter) VisitInt64(x int64) error {
	return w.fixed(8, func(b []byte) { nativeEndian.PutUint64(b, uint64(x)) })
}

func (w valueWriter) VisitUint8(x uint8) error {
	return w.fixed(1, func(b []byte) { b[0] = x })
}

func (w valueWriter) VisitUint16(x uint16) error {
	return w.fixed(2, func(b []byte) { nativeEndian.PutUint16(b, x) })
}

func (w valueWriter) VisitUint32(x uint32) error {
	return w.fixed(4, func(b []byte) { nativeEndian.PutUint32(b, x) })
}

func (w valueWriter) VisitUint64(x uint64) error {
	return w.fixed(8, func(b []byte) { nativeEndian.PutUint64(b, x) })
}

func (w valueWriter) VisitFloat32(x float32) error {
	return w.fixed(4, func(b []byte) { nativeEndian.PutUint32(b, math.Float32bits(x)) })
}

func (w valueWriter) VisitFloat64(x float64) error {
	return w.fixed(8, func(b []byte) { nativeEndian.PutUint64(b, math.Float64bits(x)) })
}

func (w valueWriter) VisitLongDouble(x primitive.Float80) error {
	return w.fixed(float80Size, func(b []byte) { putFloat80(b, float64(x)) })
}

func (w valueWriter) VisitU8String(x string) error {
	w.s.writeString("write u8string", x)
	return w.s.err
}

func (w valueWriter) VisitU16String(x primitive.UTF16) error {
	w.s.writeUint32("write u16string", len(x))
	if w.s.err != nil || len(x) == 0 {
		return w.s.err
	}
	buf := make([]byte, 2*len(x))
	for i, u := range x {
		nativeEndian.PutUint16(buf[2*i:], u)
	}
	w.s.write(buf)
	return w.s.err
}

func (w valueWriter) VisitU32String(x primitive.UTF32) error {
	w.s.writeUint32("write u32string", len(x))
	if w.s.err != nil || len(x) == 0 {
		return w.s.err
	}
	buf := make([]byte, 4*len(x))
	for i, r := range x {
		nativeEndian.PutUint32(buf[4*i:], uint32(r))
	}
	w.s.write(buf)
	return w.s.err
}

// Marshal serializes instance with t into a fresh buffer.
func Marshal(instance any, t meta.Type) ([]byte, error) {
	var buf bytes.Buffer
	s := NewSerializer(&buf)
	if err := t.Serialize(instance, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
