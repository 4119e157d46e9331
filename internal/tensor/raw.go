package tensor

import (
	"fmt"
	"unsafe"
)

// RawTensor is the low-level tensor representation: a shape, a runtime
// data type and a flat little-endian byte buffer.
type RawTensor struct {
	data  []byte
	shape Shape
	dtype DataType
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zeroed.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if dtype.Size() == 0 {
		return nil, fmt.Errorf("dtype %s has no element size", dtype)
	}

	return &RawTensor{
		data:  make([]byte, shape.NumElements()*dtype.Size()),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromBytes creates a RawTensor holding a copy of data.
func FromBytes(shape Shape, dtype DataType, data []byte) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	if len(data) != len(raw.data) {
		return nil, fmt.Errorf("data is %d bytes, shape %v of %s needs %d", len(data), shape, dtype, len(raw.data))
	}
	copy(raw.data, data)
	return raw, nil
}

// FromInt8 creates an Int8 tensor holding a copy of values.
func FromInt8(shape Shape, values []int8) (*RawTensor, error) {
	raw, err := NewRaw(shape, Int8)
	if err != nil {
		return nil, err
	}
	if len(values) != raw.NumElements() {
		return nil, fmt.Errorf("%d values for shape %v", len(values), shape)
	}
	copy(raw.AsInt8(), values)
	return raw, nil
}

// FromInt16 creates an Int16 tensor holding a copy of values.
func FromInt16(shape Shape, values []int16) (*RawTensor, error) {
	raw, err := NewRaw(shape, Int16)
	if err != nil {
		return nil, err
	}
	if len(values) != raw.NumElements() {
		return nil, fmt.Errorf("%d values for shape %v", len(values), shape)
	}
	copy(raw.AsInt16(), values)
	return raw, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt8 interprets the data as []int8.
// Panics if the tensor's dtype is not Int8.
func (r *RawTensor) AsInt8() []int8 {
	if r.dtype != Int8 {
		panic(fmt.Sprintf("tensor dtype is %s, not int8", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*int8)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt16 interprets the data as []int16.
// Panics if the tensor's dtype is not Int16.
func (r *RawTensor) AsInt16() []int16 {
	if r.dtype != Int16 {
		panic(fmt.Sprintf("tensor dtype is %s, not int16", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*int16)(unsafe.Pointer(&r.data[0])), r.NumElements())
}
