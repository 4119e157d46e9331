// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package quant

import (
	"github.com/x448/float16"

	"github.com/born-ml/fsequant/internal/fse"
	"github.com/born-ml/fsequant/internal/quant"
	"github.com/born-ml/fsequant/internal/tensor"
)

// Weight is a named model parameter with its quantization parameters.
type Weight = quant.Weight

// Param is an affine quantization parameter: real = Scale * (q - ZeroPoint).
type Param = quant.Param

// Payload is the stored content of a weight: Raw or Compressed.
type Payload = quant.Payload

// Raw is an uncompressed tensor payload.
type Raw = quant.Raw

// Compressed is an FSE coded payload.
type Compressed = quant.Compressed

// Compressor replaces quantized payloads with FSE coded ones.
type Compressor = quant.Compressor

// Options configures a Compressor.
type Options = quant.Options

// Report summarizes a CompressAll run.
type Report = quant.Report

// Failure records a weight left uncompressed by CompressAll.
type Failure = quant.Failure

// Errors returned by compression. Test with errors.Is.
var (
	ErrInvalidParams  = quant.ErrInvalidParams
	ErrNotProfitable  = quant.ErrNotProfitable
	ErrNullInput      = fse.ErrNullInput
	ErrBufferTooSmall = fse.ErrBufferTooSmall
	ErrUnsupported    = fse.ErrUnsupportedType
	ErrCorruptStream  = fse.ErrCorruptStream
)

// NewWeight wraps a raw tensor.
func NewWeight(name string, raw *tensor.RawTensor, params []Param) *Weight {
	return quant.NewWeight(name, raw, params)
}

// DefaultOptions returns options that accept every result and use all CPUs.
func DefaultOptions() Options {
	return quant.DefaultOptions()
}

// NewCompressor creates a compressor.
func NewCompressor(opts Options) *Compressor {
	return quant.NewCompressor(opts)
}

// Decompress returns the dequantized values of w.
func Decompress(w *Weight) ([]float32, error) {
	return quant.Decompress(w)
}

// DecompressHalf returns the dequantized values of w in half precision.
func DecompressHalf(w *Weight) ([]float16.Float16, error) {
	return quant.DecompressHalf(w)
}
