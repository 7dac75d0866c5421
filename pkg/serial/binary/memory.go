package binary

import (
	"fmt"
	"slices"

	"github.com/tetratelabs/wazero/api"
)

// NewMemoryDeserializer returns a Deserializer over size bytes of a wasm
// linear memory starting at offset. The bytes are copied out, so the
// module may grow or overwrite its memory while the result is in use.
func NewMemoryDeserializer(mem api.Memory, offset, size uint32) (*Deserializer, error) {
	if mem == nil {
		return nil, fmt.Errorf("binary: nil wasm memory")
	}
	limit := mem.Size()
	if uint64(offset)+uint64(size) > uint64(limit) {
		return nil, &BoundsError{Op: "memory read", Offset: int(offset), Size: int(size), Limit: int(limit)}
	}
	view, ok := mem.Read(offset, size)
	if !ok {
		return nil, &BoundsError{Op: "memory read", Offset: int(offset), Size: int(size), Limit: int(limit)}
	}
	return NewDeserializer(slices.Clone(view)), nil
}

// WriteMemory copies a serialized payload into a wasm linear memory at
// offset.
func WriteMemory(mem api.Memory, offset uint32, payload []byte) error {
	if mem == nil {
		return fmt.Errorf("binary: nil wasm memory")
	}
	if uint64(offset)+uint64(len(payload)) > uint64(mem.Size()) || !mem.Write(offset, payload) {
		return &BoundsError{Op: "memory write", Offset: int(offset), Size: len(payload), Limit: int(mem.Size())}
	}
	return nil
}
