// Package quant connects quantized model weights to the FSE coder.
//
// A Weight holds either a Raw payload (int8 or int16 quantized values) or a
// Compressed payload produced by Compressor.Compress. Compression squeezes the
// quantized values into a dense symbol alphabet whose centroids are the
// dequantized values, entropy codes the symbols and replaces the payload.
// Decompress reverses this and returns dequantized float32 values.
//
// Compressing a weight never grows it: the serialized stream must fit in the
// original tensor's byte size, otherwise the weight is left untouched and the
// error reports fse.ErrBufferTooSmall. CompressAll applies this to a whole
// model and keeps every weight that cannot be compressed in raw form.
package quant
