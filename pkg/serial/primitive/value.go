// Package primitive implements the closed set of leaf kinds and Value, a
// variant holding exactly one of them.
package primitive

import (
	"fmt"
	"math"
	"reflect"
	"slices"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
)

// Value holds one active tag and the matching representation. The zero
// Value is Null.
//
// Numeric payloads are stored as raw bits in num and assigned directly.
// UTF16 and UTF32 payloads are copied on the way in and on the way out, so
// plain assignment of a Value never exposes shared units.
// String payloads live in their own fields and are cleared whenever the
// active tag changes, so a Value never keeps an inactive payload alive.
type Value struct {
	tag Tag
	num uint64
	str string
	u16 UTF16
	u32 UTF32
}

// New returns a Value holding x under TagOf[T].
func New[T Primitive](x T) Value {
	var v Value
	Set(&v, x)
	return v
}

// Zero returns a Value holding the default representation for tag.
func Zero(tag Tag) Value {
	if !tag.Valid() {
		return Value{}
	}
	v := Value{tag: tag}
	switch tag {
	case U16String:
		v.u16 = UTF16{}
	case U32String:
		v.u32 = UTF32{}
	}
	return v
}

// Set assigns x to v, releasing whatever payload was active before.
func Set[T Primitive](v *Value, x T) {
	v.reset(TagOf[T]())
	switch x := any(x).(type) {
	case int8:
		v.num = uint64(int64(x))
	case int16:
		v.num = uint64(int64(x))
	case int32:
		v.num = uint64(int64(x))
	case int64:
		v.num = uint64(x)
	case uint8:
		v.num = uint64(x)
	case uint16:
		v.num = uint64(x)
	case uint32:
		v.num = uint64(x)
	case uint64:
		v.num = x
	case float32:
		v.num = uint64(math.Float32bits(x))
	case float64:
		v.num = math.Float64bits(x)
	case Float80:
		v.num = math.Float64bits(float64(x))
	case string:
		v.str = x
	case UTF16:
		v.u16 = append(UTF16{}, x...)
	case UTF32:
		v.u32 = append(UTF32{}, x...)
	}
}

// reset releases the active payload and activates tag.
func (v *Value) reset(tag Tag) {
	switch v.tag {
	case U8String:
		v.str = ""
	case U16String:
		v.u16 = nil
	case U32String:
		v.u32 = nil
	}
	v.num = 0
	v.tag = tag
}

// Clear releases the payload and makes v Null.
func (v *Value) Clear() {
	v.reset(Null)
}

// Tag returns the active tag.
func (v Value) Tag() Tag {
	return v.tag
}

// IsNull reports whether no representation is active.
func (v Value) IsNull() bool {
	return v.tag == Null
}

// Type returns the Go type of the active representation, nil for Null.
func (v Value) Type() reflect.Type {
	return v.tag.Type()
}

// Clone returns a copy of v that shares no memory with it.
func (v Value) Clone() Value {
	out := v
	switch v.tag {
	case U16String:
		out.u16 = slices.Clone(v.u16)
	case U32String:
		out.u32 = slices.Clone(v.u32)
	}
	return out
}

// Interface returns the active representation boxed in an interface, with
// its exact Go type, or nil for Null. String unit slices are copied.
func (v Value) Interface() any {
	switch v.tag {
	case Int8:
		return int8(v.num)
	case Int16:
		return int16(v.num)
	case Int32:
		return int32(v.num)
	case Int64:
		return int64(v.num)
	case Uint8:
		return uint8(v.num)
	case Uint16:
		return uint16(v.num)
	case Uint32:
		return uint32(v.num)
	case Uint64:
		return v.num
	case Float32:
		return math.Float32frombits(uint32(v.num))
	case Float64:
		return math.Float64frombits(v.num)
	case LongDouble:
		return Float80(math.Float64frombits(v.num))
	case U8String:
		return v.str
	case U16String:
		return slices.Clone(v.u16)
	case U32String:
		return slices.Clone(v.u32)
	default:
		return nil
	}
}

// Cast extracts the representation as T. It fails with ErrTypeMismatch when
// T's tag is not the active one.
func Cast[T Primitive](v Value) (T, error) {
	want := TagOf[T]()
	if v.tag != want {
		var zero T
		return zero, serrors.New(serrors.ErrTypeMismatch, "cast", "want %s, have %s", want, v.tag)
	}
	return v.Interface().(T), nil
}

// MustCast is like Cast but panics on a tag mismatch.
func MustCast[T Primitive](v Value) T {
	x, err := Cast[T](v)
	if err != nil {
		panic(err)
	}
	return x
}

// Equal compares v against a concrete value. Values of a different tag are
// unequal.
func Equal[T Primitive](v Value, x T) bool {
	return v.Equal(New(x))
}

// Equal reports whether v and o hold the same tag and equal payloads.
// Floating-point payloads compare by value, so NaN never equals itself.
func (v Value) Equal(o Value) bool {
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case Null:
		return true
	case Float32:
		return math.Float32frombits(uint32(v.num)) == math.Float32frombits(uint32(o.num))
	case Float64, LongDouble:
		return math.Float64frombits(v.num) == math.Float64frombits(o.num)
	case U8String:
		return v.str == o.str
	case U16String:
		return slices.Equal(v.u16, o.u16)
	case U32String:
		return slices.Equal(v.u32, o.u32)
	default:
		return v.num == o.num
	}
}

func (v Value) String() string {
	switch v.tag {
	case Null:
		return "null"
	case U8String:
		return fmt.Sprintf("%s(%q)", v.tag, v.str)
	default:
		return fmt.Sprintf("%s(%v)", v.tag, v.Interface())
	}
}
