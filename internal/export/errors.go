package export

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrDuplicateTensorName = errors.New("duplicate tensor name in export")
	ErrNoLayers            = errors.New("model has no layers")
	ErrTensorTooLarge      = errors.New("tensor larger than maximum shard size")
)

// ShapeMismatchError reports a collected tensor whose buffer length
// disagrees with its declared shape. It aborts the export before any
// file is written.
type ShapeMismatchError struct {
	Name     string // Tensor path as collected
	Shape    []int  // Declared shape
	ByteLen  int    // Actual buffer length
	WantLen  int    // Expected buffer length for the shape
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: tensor %q declares shape %v (%d bytes) but buffer holds %d bytes",
		e.Name, e.Shape, e.WantLen, e.ByteLen)
}
