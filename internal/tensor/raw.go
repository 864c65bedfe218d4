package tensor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// Raw is the flat tensor representation: a little-endian byte buffer
// plus shape and element-type metadata. It is immutable by convention;
// code that needs to mutate values should build a new Raw.
type Raw struct {
	shape Shape
	dtype DataType
	data  []byte
}

// NewRaw wraps a byte buffer as a tensor after checking that the buffer
// length matches the declared shape and element size exactly.
func NewRaw(shape Shape, dtype DataType, data []byte) (*Raw, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	want := shape.NumElements() * dtype.Size()
	if len(data) != want {
		return nil, fmt.Errorf("buffer length %d does not match shape %v (%s): want %d bytes",
			len(data), shape, dtype, want)
	}
	return &Raw{shape: shape.Clone(), dtype: dtype, data: data}, nil
}

// FromFloat32 builds a float32 tensor from a value slice.
func FromFloat32(shape Shape, values []float32) (*Raw, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("got %d values for shape %v (want %d)",
			len(values), shape, shape.NumElements())
	}
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return &Raw{shape: shape.Clone(), dtype: Float32, data: data}, nil
}

// FromFloat64 builds a float64 tensor from a value slice.
func FromFloat64(shape Shape, values []float64) (*Raw, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("got %d values for shape %v (want %d)",
			len(values), shape, shape.NumElements())
	}
	data := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}
	return &Raw{shape: shape.Clone(), dtype: Float64, data: data}, nil
}

// FromFloat16 builds a half-precision tensor from float32 values,
// rounding each to the nearest representable float16.
func FromFloat16(shape Shape, values []float32) (*Raw, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("got %d values for shape %v (want %d)",
			len(values), shape, shape.NumElements())
	}
	data := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[i*2:], float16.Fromfloat32(v).Bits())
	}
	return &Raw{shape: shape.Clone(), dtype: Float16, data: data}, nil
}

// Shape returns the tensor's shape.
func (r *Raw) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *Raw) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *Raw) NumElements() int {
	return r.shape.NumElements()
}

// Data returns the underlying little-endian byte buffer.
// Callers must not modify the returned slice.
func (r *Raw) Data() []byte {
	return r.data
}

// ByteLen returns the length of the underlying buffer.
func (r *Raw) ByteLen() int {
	return len(r.data)
}

// Float32s decodes the tensor's contents as float32 values, widening
// float16 and narrowing float64 as needed.
func (r *Raw) Float32s() []float32 {
	n := r.NumElements()
	out := make([]float32, n)
	switch r.dtype {
	case Float32:
		for i := 0; i < n; i++ {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.data[i*4:]))
		}
	case Float64:
		for i := 0; i < n; i++ {
			out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(r.data[i*8:])))
		}
	case Float16:
		for i := 0; i < n; i++ {
			out[i] = float16.Frombits(binary.LittleEndian.Uint16(r.data[i*2:])).Float32()
		}
	}
	return out
}

// AsFloat32 returns the tensor itself when it is already float32, or a
// new float32 tensor with converted contents otherwise.
func (r *Raw) AsFloat32() (*Raw, error) {
	if r.dtype == Float32 {
		return r, nil
	}
	return FromFloat32(r.shape, r.Float32s())
}

// Convert returns a copy of the tensor stored as the requested type.
func (r *Raw) Convert(dtype DataType) (*Raw, error) {
	if r.dtype == dtype {
		return r, nil
	}
	values := r.Float32s()
	switch dtype {
	case Float32:
		return FromFloat32(r.shape, values)
	case Float16:
		return FromFloat16(r.shape, values)
	case Float64:
		wide := make([]float64, len(values))
		for i, v := range values {
			wide[i] = float64(v)
		}
		return FromFloat64(r.shape, wide)
	default:
		return nil, fmt.Errorf("unsupported conversion target: %s", dtype)
	}
}
