// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package quant compresses quantized model weights with FSE (tANS) entropy
// coding and stores them in .born files.
//
// # Overview
//
// A Weight holds an int8 or int16 tensor with per-tensor or per-channel
// affine quantization parameters. Compress rewrites it over a dense symbol
// alphabet whose centroids are the dequantized values and replaces the
// payload with the coded stream, provided the stream is no larger than the
// original tensor. Decompress returns the dequantized float32 values of any
// weight, compressed or not.
//
// # Basic Usage
//
//	raw, _ := tensor.FromInt8(tensor.Shape{64, 128}, values)
//	w := quant.NewWeight("layer.0.weight", raw, []quant.Param{{Scale: 0.02}})
//
//	c := quant.NewCompressor(quant.DefaultOptions())
//	report, err := c.CompressAll(ctx, []*quant.Weight{w})
//	if err != nil {
//	    return err
//	}
//	if err := quant.Save("model.born", []*quant.Weight{w}, "mlp", nil); err != nil {
//	    return err
//	}
//
//	weights, err := quant.Load("model.born")
//	values, err := quant.Decompress(weights[0])
package quant
