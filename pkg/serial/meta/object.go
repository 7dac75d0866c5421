package meta

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/internal/naming"
	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"
)

// Projection maps a pointer to a parent instance to a pointer to one of its
// fields.
type Projection interface {
	Project(parent any) (any, error)
}

// ProjectFunc adapts a typed field selector to a Projection.
type ProjectFunc[P, F any] func(*P) *F

func (f ProjectFunc[P, F]) Project(parent any) (any, error) {
	p, err := typed[P](parent, "project")
	if err != nil {
		return nil, err
	}
	return f(p), nil
}

// Member is one entry of a composite's ordered member list.
type Member struct {
	meta  Type
	write func(parent any, s Serializer) error
	read  func(parent any, d Deserializer) error
}

// Meta returns the metadata of the member's field.
func (m Member) Meta() Type {
	return m.meta
}

// Field builds a member from a projection and the metadata of the field
// it selects.
func Field(p Projection, t Type) Member {
	return Member{
		meta: t,
		write: func(parent any, s Serializer) error {
			f, err := p.Project(parent)
			if err != nil {
				return err
			}
			return t.Serialize(f, s)
		},
		read: func(parent any, d Deserializer) error {
			f, err := p.Project(parent)
			if err != nil {
				return err
			}
			return t.Deserialize(f, d)
		},
	}
}

// Value is a member for a single primitive field.
func Value[P any, F primitive.Primitive](field func(*P) *F) Member {
	return Field(ProjectFunc[P, F](field), NewValueProperty[F]())
}

// List is a member for a slice of primitives.
func List[P any, F primitive.Primitive](field func(*P) *[]F) Member {
	return Field(ProjectFunc[P, []F](field), NewListProperty[F]())
}

// Compound is a member for a nested structured field described by its own
// ordered member list.
func Compound[P, F any](field func(*P) *F, members ...Member) Member {
	return Nested(field, NewObject[F](members...))
}

// Nested is like Compound but reuses existing metadata for the field type.
func Nested[P, F any](field func(*P) *F, t *Object[F]) Member {
	return Field(ProjectFunc[P, F](field), t)
}

// Accessor is a member for a primitive reached through a getter and a
// setter instead of a field address.
func Accessor[P any, F primitive.Primitive](get func(*P) F, set func(*P, F)) Member {
	return Member{
		meta: NewValueProperty[F](),
		write: func(parent any, s Serializer) error {
			p, err := typed[P](parent, "serialize accessor")
			if err != nil {
				return err
			}
			return s.WriteValue(primitive.New(get(p)))
		},
		read: func(parent any, d Deserializer) error {
			p, err := typed[P](parent, "deserialize accessor")
			if err != nil {
				return err
			}
			v, err := d.ReadValue(primitive.TagOf[F]())
			if err != nil {
				return err
			}
			x, err := primitive.Cast[F](v)
			if err != nil {
				return err
			}
			set(p, x)
			return nil
		},
	}
}

// Object is the metadata of a structured type T: a canonical name and an
// ordered member list. The wire form is positional; members are written and
// read in exactly the declared order and carry no field names.
type Object[T any] struct {
	name    string
	members []Member
}

// NewObject builds composite metadata for T. The canonical name is derived
// from T's Go type once, here.
func NewObject[T any](members ...Member) *Object[T] {
	return &Object[T]{
		name:    naming.Canonical(reflect.TypeFor[T]()),
		members: slices.Clone(members),
	}
}

// NewNamedObject is like NewObject but writes and expects name instead of
// the canonical one. It panics if name cannot travel through every format.
func NewNamedObject[T any](name string, members ...Member) *Object[T] {
	if err := ValidateName(name); err != nil {
		panic(err)
	}
	return &Object[T]{name: name, members: slices.Clone(members)}
}

// Name returns the type name written in front of every instance.
func (o *Object[T]) Name() string { return o.name }

// Members returns the ordered member list.
func (o *Object[T]) Members() []Member { return slices.Clone(o.members) }

// New allocates a zero T.
func (o *Object[T]) New() any { return new(T) }

// Release resets the instance to its zero value.
func (o *Object[T]) Release(instance any) {
	if p, ok := instance.(*T); ok && p != nil {
		var zero T
		*p = zero
	}
}

// Serialize writes the name, then every member in order.
func (o *Object[T]) Serialize(instance any, s Serializer) error {
	if _, err := typed[T](instance, "serialize "+o.name); err != nil {
		return err
	}
	if err := s.BeginObject(o.name); err != nil {
		return err
	}
	for i, m := range o.members {
		if err := m.write(instance, s); err != nil {
			return fmt.Errorf("%s member %d: %w", o.name, i, err)
		}
	}
	return s.EndObject()
}

// Deserialize checks the streamed name, then reads every member in order.
func (o *Object[T]) Deserialize(instance any, d Deserializer) error {
	if _, err := typed[T](instance, "deserialize "+o.name); err != nil {
		return err
	}
	name, err := d.SeekObject()
	if err != nil {
		return err
	}
	if name != o.name {
		return serrors.New(serrors.ErrStructuralMismatch, "deserialize", "want object %q, found %q", o.name, name)
	}
	if err := d.BeginObject(o.name); err != nil {
		return err
	}
	for i, m := range o.members {
		if err := m.read(instance, d); err != nil {
			return fmt.Errorf("%s member %d: %w", o.name, i, err)
		}
	}
	return d.EndObject()
}

// Write serializes v.
func (o *Object[T]) Write(v *T, s Serializer) error {
	return o.Serialize(v, s)
}

// Read allocates a T and deserializes into it.
func (o *Object[T]) Read(d Deserializer) (*T, error) {
	v := new(T)
	if err := o.Deserialize(v, d); err != nil {
		o.Release(v)
		return nil, err
	}
	return v, nil
}
