// Package meta describes how to allocate, release and walk Go types through
// the Serializer and Deserializer protocol, and resolves streamed type names
// back to that description.
package meta

import (
	"fmt"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"
)

// Type is the metadata of one concrete Go type. Instances are passed as
// pointers: New returns a pointer to a default value, and Serialize,
// Deserialize and Release expect one.
//
// Metadata is created once per type and lives for the rest of the process.
type Type interface {
	New() any
	Release(instance any)
	Serialize(instance any, s Serializer) error
	Deserialize(instance any, d Deserializer) error
}

// Named is a Type with a wire name, canonical unless built with
// NewNamedObject. Only named types can be registered.
type Named interface {
	Type
	Name() string
}

// ValueProperty is the metadata of a single primitive field.
type ValueProperty[T primitive.Primitive] struct{}

// NewValueProperty returns the metadata for a field of type T.
func NewValueProperty[T primitive.Primitive]() *ValueProperty[T] {
	return &ValueProperty[T]{}
}

func (*ValueProperty[T]) New() any { return new(T) }

func (*ValueProperty[T]) Release(instance any) {
	if p, ok := instance.(*T); ok && p != nil {
		var zero T
		*p = zero
	}
}

func (*ValueProperty[T]) Serialize(instance any, s Serializer) error {
	p, err := typed[T](instance, "serialize value")
	if err != nil {
		return err
	}
	return s.WriteValue(primitive.New(*p))
}

func (*ValueProperty[T]) Deserialize(instance any, d Deserializer) error {
	p, err := typed[T](instance, "deserialize value")
	if err != nil {
		return err
	}
	v, err := d.ReadValue(primitive.TagOf[T]())
	if err != nil {
		return err
	}
	x, err := primitive.Cast[T](v)
	if err != nil {
		return err
	}
	*p = x
	return nil
}

// ListProperty is the metadata of an ordered sequence of primitives. The
// encoding keeps order and duplicates.
type ListProperty[T primitive.Primitive] struct{}

// NewListProperty returns the metadata for a []T field.
func NewListProperty[T primitive.Primitive]() *ListProperty[T] {
	return &ListProperty[T]{}
}

func (*ListProperty[T]) New() any { return new([]T) }

func (*ListProperty[T]) Release(instance any) {
	if p, ok := instance.(*[]T); ok && p != nil {
		*p = nil
	}
}

func (*ListProperty[T]) Serialize(instance any, s Serializer) error {
	p, err := typed[[]T](instance, "serialize list")
	if err != nil {
		return err
	}
	if err := s.BeginList(len(*p)); err != nil {
		return err
	}
	for _, x := range *p {
		if err := s.WriteValue(primitive.New(x)); err != nil {
			return err
		}
	}
	return s.EndList()
}

// Deserialize appends the decoded elements to the slice in place.
func (*ListProperty[T]) Deserialize(instance any, d Deserializer) error {
	p, err := typed[[]T](instance, "deserialize list")
	if err != nil {
		return err
	}
	tag := primitive.TagOf[T]()
	n, err := d.BeginList(tag)
	if err != nil {
		return err
	}
	if n < 0 {
		return serrors.New(serrors.ErrMalformedInput, "deserialize list", "negative element count %d", n)
	}
	for i := 0; i < n; i++ {
		v, err := d.ReadValue(tag)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		x, err := primitive.Cast[T](v)
		if err != nil {
			return err
		}
		*p = append(*p, x)
	}
	return d.EndList()
}

func typed[T any](instance any, op string) (*T, error) {
	p, ok := instance.(*T)
	if !ok || p == nil {
		var zero T
		return nil, serrors.New(serrors.ErrTypeMismatch, op, "want *%T, have %T", zero, instance)
	}
	return p, nil
}
