package meta

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"
)

type structA struct {
	X int32
	Y int32
}

type structB struct {
	A    structA
	Z    int32
	Ints []int32
}

type account struct {
	id    uint64
	Owner string
}

func (a *account) ID() uint64      { return a.id }
func (a *account) SetID(id uint64) { a.id = id }

func newMetaB() *Object[structB] {
	return NewObject[structB](
		Compound(func(b *structB) *structA { return &b.A },
			Value(func(a *structA) *int32 { return &a.X }),
			Value(func(a *structA) *int32 { return &a.Y }),
		),
		Value(func(b *structB) *int32 { return &b.Z }),
		List(func(b *structB) *[]int32 { return &b.Ints }),
	)
}

func TestObject_Name(t *testing.T) {
	metaB := newMetaB()
	assert.Equal(t, "struct_b", metaB.Name())
	require.Len(t, metaB.Members(), 3)

	nested, ok := metaB.Members()[0].Meta().(*Object[structA])
	require.True(t, ok)
	assert.Equal(t, "struct_a", nested.Name())
}

func TestObject_SerializeOrder(t *testing.T) {
	metaB := newMetaB()
	b := structB{A: structA{X: 1, Y: 2}, Z: 3, Ints: []int32{4, 5, 4}}

	var tp tape
	require.NoError(t, metaB.Serialize(&b, &tp))

	kinds := make([]tokenKind, len(tp.toks))
	for i, tok := range tp.toks {
		kinds[i] = tok.kind
	}
	assert.Equal(t, []tokenKind{
		tokBeginObject, tokBeginObject, tokValue, tokValue, tokEndObject,
		tokValue,
		tokBeginList, tokValue, tokValue, tokValue, tokEndList,
		tokEndObject,
	}, kinds)
	assert.Equal(t, "struct_b", tp.toks[0].name)
	assert.Equal(t, "struct_a", tp.toks[1].name)
	assert.True(t, primitive.Equal(tp.toks[2].v, int32(1)))
	assert.True(t, primitive.Equal(tp.toks[3].v, int32(2)))
	assert.True(t, primitive.Equal(tp.toks[5].v, int32(3)))
	assert.Equal(t, 3, tp.toks[6].n)
	// duplicates kept, order kept
	assert.True(t, primitive.Equal(tp.toks[7].v, int32(4)))
	assert.True(t, primitive.Equal(tp.toks[9].v, int32(4)))
}

func TestObject_RoundTrip(t *testing.T) {
	metaB := newMetaB()
	b := structB{A: structA{X: 1, Y: 2}, Z: 3, Ints: []int32{4, 5, 6, 7, 8, 9, 10}}

	var tp tape
	require.NoError(t, metaB.Write(&b, &tp))

	got, err := metaB.Read(tp.reader())
	require.NoError(t, err)
	assert.Equal(t, b, *got)
}

func TestObject_EmptyList(t *testing.T) {
	metaB := newMetaB()
	b := structB{}

	var tp tape
	require.NoError(t, metaB.Write(&b, &tp))
	assert.Equal(t, 0, tp.toks[6].n)

	got, err := metaB.Read(tp.reader())
	require.NoError(t, err)
	assert.Empty(t, got.Ints)
}

func TestObject_StructuralMismatch(t *testing.T) {
	metaA := NewObject[structA](
		Value(func(a *structA) *int32 { return &a.X }),
		Value(func(a *structA) *int32 { return &a.Y }),
	)
	var tp tape
	require.NoError(t, metaA.Write(&structA{X: 1, Y: 2}, &tp))

	_, err := newMetaB().Read(tp.reader())
	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrStructuralMismatch))
}

func TestObject_WrongInstanceType(t *testing.T) {
	var tp tape
	err := newMetaB().Serialize(&structA{}, &tp)
	assert.True(t, errors.Is(err, serrors.ErrTypeMismatch))
	assert.Empty(t, tp.toks)
}

func TestObject_LeafTypeMismatch(t *testing.T) {
	metaA := NewObject[structA](
		Value(func(a *structA) *int32 { return &a.X }),
		Value(func(a *structA) *int32 { return &a.Y }),
	)
	tp := tape{toks: []token{
		{kind: tokBeginObject, name: "struct_a"},
		{kind: tokValue, v: primitive.New(int32(1))},
		{kind: tokValue, v: primitive.New(int8(2))},
		{kind: tokEndObject},
	}}
	_, err := metaA.Read(tp.reader())
	assert.True(t, errors.Is(err, serrors.ErrTypeMismatch))
}

func TestObject_Accessor(t *testing.T) {
	metaAcc := NewObject[account](
		Accessor((*account).ID, (*account).SetID),
		Value(func(a *account) *string { return &a.Owner }),
	)
	src := account{id: 77, Owner: "alice"}

	var tp tape
	require.NoError(t, metaAcc.Write(&src, &tp))

	got, err := metaAcc.Read(tp.reader())
	require.NoError(t, err)
	assert.Equal(t, uint64(77), got.ID())
	assert.Equal(t, "alice", got.Owner)
}

func TestObject_Release(t *testing.T) {
	metaB := newMetaB()
	inst := metaB.New().(*structB)
	inst.Z = 9
	inst.Ints = []int32{1}
	metaB.Release(inst)
	assert.Equal(t, structB{}, *inst)
}

func TestListProperty_AppendsInPlace(t *testing.T) {
	lp := NewListProperty[string]()
	src := []string{"a", "b", "a"}

	var tp tape
	require.NoError(t, lp.Serialize(&src, &tp))

	dst := []string{"x"}
	require.NoError(t, lp.Deserialize(&dst, tp.reader()))
	assert.Equal(t, []string{"x", "a", "b", "a"}, dst)

	lp.Release(&dst)
	assert.Nil(t, dst)
}

func TestValueProperty(t *testing.T) {
	vp := NewValueProperty[primitive.UTF32]()
	p := vp.New().(*primitive.UTF32)
	*p = primitive.UTF32("ok")

	var tp tape
	require.NoError(t, vp.Serialize(p, &tp))

	out := new(primitive.UTF32)
	require.NoError(t, vp.Deserialize(out, tp.reader()))
	assert.Equal(t, primitive.UTF32("ok"), *out)

	err := vp.Serialize(new(int32), &tp)
	assert.True(t, errors.Is(err, serrors.ErrTypeMismatch))
}
