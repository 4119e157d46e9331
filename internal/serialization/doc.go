// Package serialization stores quantized and FSE compressed weights in the
// .born container format.
//
//	Format Structure:
//	  [0x00: Magic "BORN"]
//	  [0x04: Version (uint32 LE) = 2]
//	  [0x08: Flags (uint32 LE)]
//	  [0x0C: Reserved]
//	  [0x10: Header size (uint64 LE)]
//	  [0x18: Data size (uint64 LE)]
//	  [0x20: SHA-256 of the data section (32 bytes)]
//	  [0x40: Header: JSON metadata]
//	  [Tensor data: 64-byte aligned, each tensor padded to 64 bytes]
//
// Every tensor entry records its stored dtype, logical shape and
// quantization parameters. Entropy coded tensors have dtype "fse" and a
// compression block with the coding table size, alphabet size, original
// element type and an xxh3 hash of the payload, checked on load.
//
// Example usage:
//
//	writer, err := serialization.NewWriter("model.born")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := writer.WriteWeights(weights, "llama", nil); err != nil {
//	    log.Fatal(err)
//	}
//	writer.Close()
//
//	reader, err := serialization.NewReader("model.born")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//	weights, err := reader.ReadWeights()
package serialization
