package primitive

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
)

// samples holds one non-default value per tag, Null excluded.
var samples = map[Tag]Value{
	Int8:       New(int8(-42)),
	Int16:      New(int16(-4200)),
	Int32:      New(int32(42)),
	Int64:      New(int64(-1 << 40)),
	Uint8:      New(uint8(200)),
	Uint16:     New(uint16(60000)),
	Uint32:     New(uint32(4000000000)),
	Uint64:     New(uint64(math.MaxUint64)),
	Float32:    New(float32(1.5)),
	Float64:    New(3.14159),
	LongDouble: New(Float80(2.718281828)),
	U8String:   New("hello"),
	U16String:  New(UTF16{'h', 'i', 0xD83D, 0xDE80}),
	U32String:  New(UTF32("héllo 🚀")),
}

func TestValue_PtValueBasics(t *testing.T) {
	v1 := New(int32(42))
	v2 := New(int32(42))

	assert.True(t, v1.Equal(v2))
	assert.True(t, Equal(v1, int32(42)))
	assert.True(t, Equal(v2, int32(42)))
	// same number, different tag
	assert.False(t, Equal(v2, int8(42)))
}

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, Null, v.Tag())
	assert.Nil(t, v.Type())
	assert.Nil(t, v.Interface())
	assert.True(t, v.Equal(Value{}))
}

func TestValue_TagOf(t *testing.T) {
	assert.Equal(t, Int8, TagOf[int8]())
	assert.Equal(t, Uint64, TagOf[uint64]())
	assert.Equal(t, Float32, TagOf[float32]())
	assert.Equal(t, LongDouble, TagOf[Float80]())
	assert.Equal(t, U8String, TagOf[string]())
	assert.Equal(t, U16String, TagOf[UTF16]())
	assert.Equal(t, U32String, TagOf[UTF32]())
}

func TestValue_MappingIsInjective(t *testing.T) {
	seen := make(map[string]Tag)
	for _, tag := range Tags() {
		if tag == Null {
			continue
		}
		rt := tag.Type()
		require.NotNil(t, rt, tag.String())
		if prev, dup := seen[rt.String()]; dup {
			t.Fatalf("tags %s and %s share representation %s", prev, tag, rt)
		}
		seen[rt.String()] = tag
		assert.Equal(t, tag, samples[tag].Tag())
		assert.Equal(t, rt, samples[tag].Type())
	}
}

func TestValue_TagDiscrimination(t *testing.T) {
	for _, a := range Tags() {
		for _, b := range Tags() {
			if a == b {
				continue
			}
			va, vb := Zero(a), Zero(b)
			assert.False(t, va.Equal(vb), "%s vs %s", a, b)
			if sa, ok := samples[a]; ok {
				if sb, ok := samples[b]; ok {
					assert.False(t, sa.Equal(sb), "%s vs %s", a, b)
				}
			}
		}
	}
}

func TestValue_CastMismatch(t *testing.T) {
	for tag, v := range samples {
		t.Run(tag.String(), func(t *testing.T) {
			casts := map[Tag]func(Value) error{
				Int8:       func(v Value) error { _, err := Cast[int8](v); return err },
				Int16:      func(v Value) error { _, err := Cast[int16](v); return err },
				Int32:      func(v Value) error { _, err := Cast[int32](v); return err },
				Int64:      func(v Value) error { _, err := Cast[int64](v); return err },
				Uint8:      func(v Value) error { _, err := Cast[uint8](v); return err },
				Uint16:     func(v Value) error { _, err := Cast[uint16](v); return err },
				Uint32:     func(v Value) error { _, err := Cast[uint32](v); return err },
				Uint64:     func(v Value) error { _, err := Cast[uint64](v); return err },
				Float32:    func(v Value) error { _, err := Cast[float32](v); return err },
				Float64:    func(v Value) error { _, err := Cast[float64](v); return err },
				LongDouble: func(v Value) error { _, err := Cast[Float80](v); return err },
				U8String:   func(v Value) error { _, err := Cast[string](v); return err },
				U16String:  func(v Value) error { _, err := Cast[UTF16](v); return err },
				U32String:  func(v Value) error { _, err := Cast[UTF32](v); return err },
			}
			for other, cast := range casts {
				err := cast(v)
				if other == tag {
					assert.NoError(t, err)
					continue
				}
				assert.True(t, errors.Is(err, serrors.ErrTypeMismatch), "cast %s as %s", tag, other)
			}
		})
	}
}

func TestValue_CastRoundTrip(t *testing.T) {
	s, err := Cast[string](New("abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	f, err := Cast[Float80](New(Float80(0.25)))
	require.NoError(t, err)
	assert.Equal(t, Float80(0.25), f)

	u, err := Cast[uint64](New(uint64(math.MaxUint64)))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u)

	i, err := Cast[int16](New(int16(math.MinInt16)))
	require.NoError(t, err)
	assert.Equal(t, int16(math.MinInt16), i)

	assert.Panics(t, func() { MustCast[int32](New("x")) })
}

func TestValue_SetReleasesPreviousPayload(t *testing.T) {
	v := New("payload")
	Set(&v, int64(7))
	assert.Equal(t, Int64, v.Tag())
	assert.Empty(t, v.str)

	Set(&v, UTF32("abc"))
	Set(&v, uint8(1))
	assert.Nil(t, v.u32)
	assert.True(t, Equal(v, uint8(1)))

	v.Clear()
	assert.True(t, v.IsNull())
}

func TestValue_ZeroFromTag(t *testing.T) {
	for _, tag := range Tags() {
		v := Zero(tag)
		assert.Equal(t, tag, v.Tag())
	}
	assert.True(t, Equal(Zero(Int32), int32(0)))
	assert.True(t, Equal(Zero(U8String), ""))
	assert.True(t, Equal(Zero(U16String), UTF16{}))
	assert.True(t, Zero(Tag(200)).IsNull())
}

func TestValue_CloneIsDeep(t *testing.T) {
	src := UTF16{1, 2, 3}
	v := New(src)
	c := v.Clone()
	src[0] = 9
	assert.True(t, Equal(c, UTF16{1, 2, 3}))
	assert.True(t, c.Equal(New(UTF16{1, 2, 3})))
}

func TestValue_CopyDoesNotShareUnits(t *testing.T) {
	t.Run("u16string", func(t *testing.T) {
		src := UTF16{1, 2}
		a := New(src)
		src[1] = 7
		b := a
		MustCast[UTF16](b)[0] = 9
		assert.True(t, Equal(a, UTF16{1, 2}))
		assert.True(t, Equal(b, UTF16{1, 2}))
	})
	t.Run("u32string", func(t *testing.T) {
		a := New(UTF32("ab"))
		b := a
		b.Interface().(UTF32)[0] = 'z'
		assert.True(t, Equal(a, UTF32("ab")))
	})
	t.Run("nil input is empty", func(t *testing.T) {
		v := New(UTF16(nil))
		assert.NotNil(t, MustCast[UTF16](v))
		assert.Empty(t, MustCast[UTF16](v))
	})
}

func TestValue_FloatEquality(t *testing.T) {
	assert.True(t, New(0.0).Equal(New(math.Copysign(0, -1))))
	nan := New(math.NaN())
	assert.False(t, nan.Equal(nan))
}

type recordingVisitor struct {
	got []string
}

func (r *recordingVisitor) VisitNull() error               { r.got = append(r.got, "null"); return nil }
func (r *recordingVisitor) VisitInt8(int8) error           { r.got = append(r.got, "int8"); return nil }
func (r *recordingVisitor) VisitInt16(int16) error         { r.got = append(r.got, "int16"); return nil }
func (r *recordingVisitor) VisitInt32(int32) error         { r.got = append(r.got, "int32"); return nil }
func (r *recordingVisitor) VisitInt64(int64) error         { r.got = append(r.got, "int64"); return nil }
func (r *recordingVisitor) VisitUint8(uint8) error         { r.got = append(r.got, "uint8"); return nil }
func (r *recordingVisitor) VisitUint16(uint16) error       { r.got = append(r.got, "uint16"); return nil }
func (r *recordingVisitor) VisitUint32(uint32) error       { r.got = append(r.got, "uint32"); return nil }
func (r *recordingVisitor) VisitUint64(uint64) error       { r.got = append(r.got, "uint64"); return nil }
func (r *recordingVisitor) VisitFloat32(float32) error     { r.got = append(r.got, "float32"); return nil }
func (r *recordingVisitor) VisitFloat64(float64) error     { r.got = append(r.got, "float64"); return nil }
func (r *recordingVisitor) VisitLongDouble(Float80) error  { r.got = append(r.got, "long_double"); return nil }
func (r *recordingVisitor) VisitU8String(string) error     { r.got = append(r.got, "u8string"); return nil }
func (r *recordingVisitor) VisitU16String(UTF16) error     { r.got = append(r.got, "u16string"); return nil }
func (r *recordingVisitor) VisitU32String(UTF32) error     { r.got = append(r.got, "u32string"); return nil }

func TestValue_ApplyDispatchesOnTag(t *testing.T) {
	for _, tag := range Tags() {
		rec := &recordingVisitor{}
		require.NoError(t, Zero(tag).Apply(rec))
		assert.Equal(t, []string{tag.String()}, rec.got)
	}
}

func TestTag_String(t *testing.T) {
	assert.Equal(t, "int32", Int32.String())
	assert.Equal(t, "long_double", LongDouble.String())
	assert.Equal(t, "Tag(99)", Tag(99).String())
	assert.False(t, Tag(99).Valid())
	assert.Equal(t, 16, LongDouble.Width())
	assert.True(t, U16String.IsString())
	assert.True(t, Uint8.IsInteger())
	assert.True(t, Float32.IsFloat())
	assert.Len(t, Tags(), 15)
}
