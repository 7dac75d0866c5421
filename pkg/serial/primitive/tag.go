package primitive

import (
	"fmt"
	"reflect"
)

// Tag identifies which primitive representation a Value holds.
type Tag uint8

const (
	Null Tag = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	LongDouble
	U8String
	U16String
	U32String

	numTags
)

var tagNames = [numTags]string{
	Null:       "null",
	Int8:       "int8",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	Uint8:      "uint8",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Uint64:     "uint64",
	Float32:    "float32",
	Float64:    "float64",
	LongDouble: "long_double",
	U8String:   "u8string",
	U16String:  "u16string",
	U32String:  "u32string",
}

// Tags returns every tag, Null included, in declaration order.
func Tags() []Tag {
	out := make([]Tag, 0, numTags)
	for t := Null; t < numTags; t++ {
		out = append(out, t)
	}
	return out
}

func (t Tag) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
	return tagNames[t]
}

// Valid reports whether t is one of the declared tags.
func (t Tag) Valid() bool {
	return t < numTags
}

// IsInteger reports whether t names a signed or unsigned integer.
func (t Tag) IsInteger() bool {
	return t >= Int8 && t <= Uint64
}

// IsFloat reports whether t names a floating-point representation.
func (t Tag) IsFloat() bool {
	return t == Float32 || t == Float64 || t == LongDouble
}

// IsString reports whether t names one of the three string encodings.
func (t Tag) IsString() bool {
	return t == U8String || t == U16String || t == U32String
}

// Width is the in-memory size in bytes of a numeric representation, or of a
// single code unit for the string encodings. Null has width 0.
func (t Tag) Width() int {
	switch t {
	case Int8, Uint8, U8String:
		return 1
	case Int16, Uint16, U16String:
		return 2
	case Int32, Uint32, Float32, U32String:
		return 4
	case Int64, Uint64, Float64:
		return 8
	case LongDouble:
		return 16
	default:
		return 0
	}
}

// Type returns the Go representation type for t, or nil for Null.
func (t Tag) Type() reflect.Type {
	switch t {
	case Int8:
		return reflect.TypeFor[int8]()
	case Int16:
		return reflect.TypeFor[int16]()
	case Int32:
		return reflect.TypeFor[int32]()
	case Int64:
		return reflect.TypeFor[int64]()
	case Uint8:
		return reflect.TypeFor[uint8]()
	case Uint16:
		return reflect.TypeFor[uint16]()
	case Uint32:
		return reflect.TypeFor[uint32]()
	case Uint64:
		return reflect.TypeFor[uint64]()
	case Float32:
		return reflect.TypeFor[float32]()
	case Float64:
		return reflect.TypeFor[float64]()
	case LongDouble:
		return reflect.TypeFor[Float80]()
	case U8String:
		return reflect.TypeFor[string]()
	case U16String:
		return reflect.TypeFor[UTF16]()
	case U32String:
		return reflect.TypeFor[UTF32]()
	default:
		return nil
	}
}

// Float80 is the representation of the LongDouble tag. Go has no
// extended-precision float, so the value is carried as a float64; the
// distinct type keeps the tag mapping injective.
type Float80 float64

// UTF16 is a string of UTF-16 code units.
type UTF16 []uint16

// UTF32 is a string of UTF-32 code points.
type UTF32 []rune

// Primitive is the closed set of representation types. Instantiating a
// generic function of this package with any other type does not compile.
type Primitive interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64 | Float80 |
		string | UTF16 | UTF32
}

// TagOf returns the tag statically associated with T.
func TagOf[T Primitive]() Tag {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	case Float80:
		return LongDouble
	case string:
		return U8String
	case UTF16:
		return U16String
	case UTF32:
		return U32String
	}
	panic("primitive: unreachable")
}
