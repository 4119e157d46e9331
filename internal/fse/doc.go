// Package fse implements the Finite State Entropy (tANS) coder used to compress
// quantized weight tables before they are written to a model file.
//
// The encoder pipeline is:
//
//	counts     := histogram of symbol indices
//	tableLog   := OptimalTableLog(len(counts))
//	norm, _    := NormalizeCounts(counts, tableLog)
//	ct, _      := BuildCTable(norm, tableLog)
//	bs, _      := NewBitStream(16 * len(symbols))
//	_ = Encode(bs, symbols, ct)
//	bs.Flush()
//	buf, _     := Serialize(bs, norm, centroids, tableLog, budget)
//
// Compress runs all of the above in one call. Decompress parses the buffer,
// rebuilds the decoding table from the stored frequencies and walks the state
// machine backwards over the bit stream.
//
// Serialized layout (little-endian):
//
//	[2 bytes: symbol count]
//	[2 bytes: table log]
//	[4 bytes: last chunk index + 2]
//	[4*N bytes: normalized frequencies]
//	[uint16 zero padding to 8 bytes]
//	[4*N bytes: float32 centroids]
//	[uint16 zero padding to 8 bytes]
//	[8*(C+1) bytes: committed 64-bit chunks]
//	[8 bytes: partial chunk, left aligned]
//	[1 byte: bits used in the partial chunk]
package fse
