package fse

import "github.com/pkg/errors"

// bitsPerSymbolEstimate sizes the initial bit stream.
const bitsPerSymbolEstimate = 16

// Result describes a compressed symbol stream.
type Result struct {
	Data        []byte
	TableLog    int
	SymbolCount int
}

// Compress normalizes counts, encodes symbols and serializes the stream
// together with the normalized frequencies and centroids. counts[s] is the
// number of occurrences of symbol s; centroids[s] is its dequantized value.
// The serialized buffer must fit in budget bytes.
func Compress(symbols []uint16, counts []uint32, centroids []float32, budget int) (*Result, error) {
	if len(symbols) == 0 {
		return nil, errors.Wrap(ErrNullInput, "no symbols")
	}
	if len(counts) == 0 || len(counts) != len(centroids) {
		return nil, errors.Wrapf(ErrNullInput, "%d counts, %d centroids", len(counts), len(centroids))
	}
	if len(counts) > MaxSymbols {
		return nil, errors.Wrapf(ErrInvalidIndex, "%d symbols, max %d", len(counts), MaxSymbols)
	}

	tableLog := OptimalTableLog(len(counts))
	norm, err := NormalizeCounts(counts, tableLog)
	if err != nil {
		return nil, errors.WithMessage(err, "normalize frequency")
	}
	ct, err := BuildCTable(norm, tableLog)
	if err != nil {
		return nil, errors.WithMessage(err, "create states for encoding")
	}
	bs, err := NewBitStream(bitsPerSymbolEstimate * len(symbols))
	if err != nil {
		return nil, err
	}
	if err := Encode(bs, symbols, ct); err != nil {
		return nil, errors.WithMessage(err, "encode")
	}
	bs.Flush()

	data, err := Serialize(bs, norm, centroids, tableLog, budget)
	if err != nil {
		return nil, errors.WithMessage(err, "serialize")
	}
	return &Result{Data: data, TableLog: tableLog, SymbolCount: len(counts)}, nil
}

// Decompress parses buf and decodes n symbols. It also returns the centroid
// table so callers can map symbols back to values.
func Decompress(buf []byte, n int) ([]uint16, []float32, error) {
	s, err := Parse(buf)
	if err != nil {
		return nil, nil, err
	}
	symbols, err := Decode(s, n)
	if err != nil {
		return nil, nil, err
	}
	return symbols, s.Centroids, nil
}
