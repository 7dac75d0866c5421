package meta

import "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/primitive"

// Serializer is the write side of the protocol metadata drives during a
// traversal. Every BeginObject/BeginList is matched by the corresponding
// End call in LIFO order; a backend may use that nesting for formatting or
// ignore it.
type Serializer interface {
	BeginObject(name string) error
	EndObject() error

	BeginList(size int) error
	EndList() error

	WriteValue(v primitive.Value) error
}

// Deserializer is the read side of the protocol.
type Deserializer interface {
	// SeekObject consumes the next object's declared name and returns it.
	SeekObject() (string, error)

	// PeekObject returns the next object's declared name without moving
	// the read position.
	PeekObject() (string, error)

	BeginObject(name string) error
	EndObject() error

	// BeginList returns the number of elements of the list that follows.
	BeginList(elem primitive.Tag) (int, error)
	EndList() error

	// ReadValue reads one value of the expected tag.
	ReadValue(tag primitive.Tag) (primitive.Value, error)
}
