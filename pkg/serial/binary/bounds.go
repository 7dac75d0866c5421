package binary

import (
	"fmt"

	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
)

// BoundsError reports a read that would cross the end of the input.
type BoundsError struct {
	Op     string
	Offset int
	Size   int
	Limit  int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("bounds error [%s]: %d bytes at offset %d exceed limit %d",
		e.Op, e.Size, e.Offset, e.Limit)
}

// Unwrap makes every BoundsError match ErrOutOfRange.
func (e *BoundsError) Unwrap() error {
	return serrors.ErrOutOfRange
}
