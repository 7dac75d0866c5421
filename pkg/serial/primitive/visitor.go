package primitive

import (
	"math"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
)

// Visitor receives the active representation of a Value. It has one method
// per tag, so adding a tag breaks every implementation until it is handled.
// The UTF16 and UTF32 slices it receives belong to the Value and are
// read-only.
type Visitor interface {
	VisitNull() error
	VisitInt8(int8) error
	VisitInt16(int16) error
	VisitInt32(int32) error
	VisitInt64(int64) error
	VisitUint8(uint8) error
	VisitUint16(uint16) error
	VisitUint32(uint32) error
	VisitUint64(uint64) error
	VisitFloat32(float32) error
	VisitFloat64(float64) error
	VisitLongDouble(Float80) error
	VisitU8String(string) error
	VisitU16String(UTF16) error
	VisitU32String(UTF32) error
}

// Apply calls the Visitor method matching the active tag.
func (v Value) Apply(vis Visitor) error {
	switch v.tag {
	case Null:
		return vis.VisitNull()
	case Int8:
		return vis.VisitInt8(int8(v.num))
	case Int16:
		return vis.VisitInt16(int16(v.num))
	case Int32:
		return vis.VisitInt32(int32(v.num))
	case Int64:
		return vis.VisitInt64(int64(v.num))
	case Uint8:
		return vis.VisitUint8(uint8(v.num))
	case Uint16:
		return vis.VisitUint16(uint16(v.num))
	case Uint32:
		return vis.VisitUint32(uint32(v.num))
	case Uint64:
		return vis.VisitUint64(v.num)
	case Float32:
		return vis.VisitFloat32(math.Float32frombits(uint32(v.num)))
	case Float64:
		return vis.VisitFloat64(math.Float64frombits(v.num))
	case LongDouble:
		return vis.VisitLongDouble(Float80(math.Float64frombits(v.num)))
	case U8String:
		return vis.VisitU8String(v.str)
	case U16String:
		return vis.VisitU16String(v.u16)
	case U32String:
		return vis.VisitU32String(v.u32)
	default:
		return serrors.New(serrors.ErrTypeMismatch, "apply", "invalid tag %s", v.tag)
	}
}
