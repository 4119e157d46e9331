// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/fsequant/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape() and DType()
//   - Typed views via AsInt8(), AsInt16() and AsFloat32()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Int8)
//	data := raw.AsInt8()
type RawTensor = tensor.RawTensor

// Shape represents tensor dimensions. The first dimension is the output channel.
type Shape = tensor.Shape

// DataType represents runtime type information for tensors.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Uint8   = tensor.Uint8
	Bool    = tensor.Bool
	Int8    = tensor.Int8
	Int16   = tensor.Int16
	Float16 = tensor.Float16
	FSE     = tensor.FSE
)

// NewRaw creates a zeroed tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromBytes creates a tensor holding a copy of data.
func FromBytes(shape Shape, dtype DataType, data []byte) (*RawTensor, error) {
	return tensor.FromBytes(shape, dtype, data)
}

// FromInt8 creates an Int8 tensor holding a copy of values.
func FromInt8(shape Shape, values []int8) (*RawTensor, error) {
	return tensor.FromInt8(shape, values)
}

// FromInt16 creates an Int16 tensor holding a copy of values.
func FromInt16(shape Shape, values []int16) (*RawTensor, error) {
	return tensor.FromInt16(shape, values)
}

// ParseDataType converts a dtype name such as "int8" to a DataType.
func ParseDataType(s string) (DataType, bool) {
	return tensor.ParseDataType(s)
}
