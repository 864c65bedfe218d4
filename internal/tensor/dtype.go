// Package tensor provides the flat tensor representation shared by the
// checkpoint and export code paths.
//
// Tensors here are plain byte buffers with shape and element-type
// metadata. All buffers are little-endian regardless of host order, so
// that files written by one machine load on any other.
package tensor

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Float16
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	case Float16:
		return 2
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	default:
		return "unknown"
	}
}

// ParseDataType resolves a data type name as written in checkpoint headers.
func ParseDataType(name string) (DataType, bool) {
	switch name {
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	case "float16":
		return Float16, true
	default:
		return 0, false
	}
}
