package binary

import (
	"math"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/meta"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"
)

var _ meta.Deserializer = (*Deserializer)(nil)

// Deserializer reads the binary format from a bounded byte slice. A read
// that would cross the end of the slice fails with a *BoundsError and
// leaves the position unchanged.
type Deserializer struct {
	data  []byte
	pos   int
	depth int
}

// NewDeserializer returns a Deserializer over data. The slice is not
// copied and must not change while it is read.
func NewDeserializer(data []byte) *Deserializer {
	return &Deserializer{data: data}
}

// Offset returns the current read position.
func (d *Deserializer) Offset() int {
	return d.pos
}

// Remaining returns the number of unread bytes.
func (d *Deserializer) Remaining() int {
	return len(d.data) - d.pos
}

func (d *Deserializer) take(op string, n int) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, &BoundsError{Op: op, Offset: d.pos, Size: n, Limit: len(d.data)}
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// takeUnits consumes count elements of width bytes each. The product is
// checked against the remaining input before anything is allocated.
func (d *Deserializer) takeUnits(op string, count uint32, width int) ([]byte, error) {
	size := uint64(count) * uint64(width)
	if size > uint64(d.Remaining()) {
		return nil, &BoundsError{Op: op, Offset: d.pos, Size: int(min(size, math.MaxInt32)), Limit: len(d.data)}
	}
	return d.take(op, int(size))
}

func (d *Deserializer) readUint32(op string) (uint32, error) {
	b, err := d.take(op, 4)
	if err != nil {
		return 0, err
	}
	return nativeEndian.Uint32(b), nil
}

func (d *Deserializer) readString(op string) (string, error) {
	start := d.pos
	n, err := d.readUint32(op)
	if err != nil {
		return "", err
	}
	b, err := d.takeUnits(op, n, 1)
	if err != nil {
		d.pos = start
		return "", err
	}
	return string(b), nil
}

// SeekObject consumes the length-prefixed name of the next object.
func (d *Deserializer) SeekObject() (string, error) {
	start := d.pos
	name, err := d.readString("seek object")
	if err != nil {
		return "", err
	}
	if name == "" {
		d.pos = start
		return "", serrors.New(serrors.ErrMalformedInput, "seek object", "empty type name at offset %d", start)
	}
	return name, nil
}

// PeekObject returns the next object's name without consuming it.
func (d *Deserializer) PeekObject() (string, error) {
	pos := d.pos
	defer func() { d.pos = pos }()
	return d.SeekObject()
}

// BeginObject opens an object whose name SeekObject already consumed.
func (d *Deserializer) BeginObject(string) error {
	d.depth++
	return nil
}

// EndObject closes the innermost object. It reads nothing.
func (d *Deserializer) EndObject() error {
	if d.depth == 0 {
		return serrors.New(serrors.ErrStructuralMismatch, "end object", "no open object at offset %d", d.pos)
	}
	d.depth--
	return nil
}

// BeginList reads the element count. A count that could not possibly fit in
// the remaining input is rejected up front.
func (d *Deserializer) BeginList(elem primitive.Tag) (int, error) {
	start := d.pos
	n, err := d.readUint32("begin list")
	if err != nil {
		return 0, err
	}
	minSize := elem.Width()
	if elem.IsString() {
		minSize = 4
	}
	if uint64(n)*uint64(minSize) > uint64(d.Remaining()) {
		d.pos = start
		return 0, &BoundsError{Op: "begin list", Offset: start, Size: int(min(uint64(n)*uint64(minSize), math.MaxInt32)), Limit: len(d.data)}
	}
	return int(n), nil
}

// EndList closes a list. The binary format has no list terminator.
func (d *Deserializer) EndList() error {
	return nil
}

// ReadValue reads one native-endian value of the given tag.
func (d *Deserializer) ReadValue(tag primitive.Tag) (primitive.Value, error) {
	const op = "read value"
	if tag == primitive.Null || !tag.Valid() {
		return primitive.Value{}, serrors.New(serrors.ErrTypeMismatch, op, "%s has no binary representation", tag)
	}

	if tag.IsString() {
		start := d.pos
		n, err := d.readUint32(op)
		if err != nil {
			return primitive.Value{}, err
		}
		b, err := d.takeUnits(op, n, tag.Width())
		if err != nil {
			d.pos = start
			return primitive.Value{}, err
		}
		switch tag {
		case primitive.U16String:
			units := make(primitive.UTF16, n)
			for i := range units {
				units[i] = nativeEndian.Uint16(b[2*i:])
			}
			return primitive.New(units), nil
		case primitive.U32String:
			runes := make(primitive.UTF32, n)
			for i := range runes {
				runes[i] = rune(nativeEndian.Uint32(b[4*i:]))
			}
			return primitive.New(runes), nil
		default:
			return primitive.New(string(b)), nil
		}
	}

	b, err := d.take(op, tag.Width())
	if err != nil {
		return primitive.Value{}, err
	}
	switch tag {
	case primitive.Int8:
		return primitive.New(int8(b[0])), nil
	case primitive.Int16:
		return primitive.New(int16(nativeEndian.Uint16(b))), nil
	case primitive.Int32:
		return primitive.New(int32(nativeEndian.Uint32(b))), nil
	case primitive.Int64:
		return primitive.New(int64(nativeEndian.Uint64(b))), nil
	case primitive.Uint8:
		return primitive.New(b[0]), nil
	case primitive.Uint16:
		return primitive.New(nativeEndian.Uint16(b)), nil
	case primitive.Uint32:
		return primitive.New(nativeEndian.Uint32(b)), nil
	case primitive.Uint64:
		return primitive.New(nativeEndian.Uint64(b)), nil
	case primitive.Float32:
		return primitive.New(math.Float32frombits(nativeEndian.Uint32(b))), nil
	case primitive.Float64:
		return primitive.New(math.Float64frombits(nativeEndian.Uint64(b))), nil
	default:
		return primitive.New(primitive.Float80(float80(b))), nil
	}
}

// Unmarshal reads one instance of t from data into instance.
func Unmarshal(data []byte, instance any, t meta.Type) error {
	return t.Deserialize(instance, NewDeserializer(data))
}
