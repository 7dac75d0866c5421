// Package catalog holds the demo types serialctl knows how to convert and
// the metadata describing them.
package catalog

import (
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/meta"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"
)

// StructA is a pair of coordinates.
type StructA struct {
	X int32
	Y int32
}

// StructB nests a StructA next to a scalar and a list.
type StructB struct {
	A    StructA
	Z    int32
	Ints []int32
}

// Sample carries one field of every primitive kind.
type Sample struct {
	I8    int8
	I16   int16
	I32   int32
	I64   int64
	U8    uint8
	U16   uint16
	U32   uint32
	U64   uint64
	F32   float32
	F64   float64
	Ext   primitive.Float80
	Label string
	Wide  primitive.UTF16
	Runes primitive.UTF32
	Tags  []string
}

// Reading is a sensor sample whose identifier is only reachable through
// methods.
type Reading struct {
	id      uint64
	Sensor  string
	Samples []float64
}

func (r *Reading) ID() uint64      { return r.id }
func (r *Reading) SetID(id uint64) { r.id = id }

var (
	StructAMeta = meta.NewObject[StructA](
		meta.Value(func(a *StructA) *int32 { return &a.X }),
		meta.Value(func(a *StructA) *int32 { return &a.Y }),
	)

	StructBMeta = meta.NewObject[StructB](
		meta.Nested(func(b *StructB) *StructA { return &b.A }, StructAMeta),
		meta.Value(func(b *StructB) *int32 { return &b.Z }),
		meta.List(func(b *StructB) *[]int32 { return &b.Ints }),
	)

	SampleMeta = meta.NewObject[Sample](
		meta.Value(func(s *Sample) *int8 { return &s.I8 }),
		meta.Value(func(s *Sample) *int16 { return &s.I16 }),
		meta.Value(func(s *Sample) *int32 { return &s.I32 }),
		meta.Value(func(s *Sample) *int64 { return &s.I64 }),
		meta.Value(func(s *Sample) *uint8 { return &s.U8 }),
		meta.Value(func(s *Sample) *uint16 { return &s.U16 }),
		meta.Value(func(s *Sample) *uint32 { return &s.U32 }),
		meta.Value(func(s *Sample) *uint64 { return &s.U64 }),
		meta.Value(func(s *Sample) *float32 { return &s.F32 }),
		meta.Value(func(s *Sample) *float64 { return &s.F64 }),
		meta.Value(func(s *Sample) *primitive.Float80 { return &s.Ext }),
		meta.Value(func(s *Sample) *string { return &s.Label }),
		meta.Value(func(s *Sample) *primitive.UTF16 { return &s.Wide }),
		meta.Value(func(s *Sample) *primitive.UTF32 { return &s.Runes }),
		meta.List(func(s *Sample) *[]string { return &s.Tags }),
	)

	ReadingMeta = meta.NewObject[Reading](
		meta.Accessor((*Reading).ID, (*Reading).SetID),
		meta.Value(func(r *Reading) *string { return &r.Sensor }),
		meta.List(func(r *Reading) *[]float64 { return &r.Samples }),
	)
)

// Types returns the metadata of every catalog type.
func Types() []meta.Named {
	return []meta.Named{StructAMeta, StructBMeta, SampleMeta, ReadingMeta}
}

// Register adds every catalog type to reg.
func Register(reg *meta.Registry) error {
	for _, t := range Types() {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a frozen registry holding the catalog.
func NewRegistry() (*meta.Registry, error) {
	reg := meta.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	reg.Freeze()
	return reg, nil
}
