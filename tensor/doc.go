// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the storage types used by fsequant.
//
// A RawTensor is a shape, a runtime data type and a flat little-endian byte
// buffer. Quantized weights are Int8 or Int16 tensors; FSE marks an entropy
// coded payload whose elements are only available after decoding.
//
// Example:
//
//	raw, err := tensor.FromInt8(tensor.Shape{64, 128}, values)
//	if err != nil {
//	    return err
//	}
//	w := quant.NewWeight("layer.0.weight", raw, params)
package tensor
