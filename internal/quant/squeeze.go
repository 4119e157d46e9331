package quant

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/born-ml/fsequant/internal/fse"
)

// Quantized is the set of element types the coder accepts.
type Quantized interface {
	~int8 | ~int16
}

// Squeezed is a weight rewritten over a dense symbol alphabet.
type Squeezed struct {
	Symbols   []uint16  // one symbol per element
	Counts    []uint32  // occurrences per symbol
	Centroids []float32 // dequantized value per symbol, ascending
}

// Squeeze dequantizes values with params and maps every distinct real value
// to a symbol. Symbols are ranks in ascending value order, so the centroid
// table is sorted.
func Squeeze[T Quantized](values []T, params []Param) (*Squeezed, error) {
	if len(values) == 0 {
		return nil, errors.Wrap(fse.ErrNullInput, "no values")
	}
	deq, err := dequantize(values, params)
	if err != nil {
		return nil, err
	}

	centroids := slices.Clone(deq)
	slices.Sort(centroids)
	centroids = slices.Compact(centroids)
	if len(centroids) > fse.MaxSymbols {
		return nil, errors.Wrapf(fse.ErrInvalidIndex, "%d distinct values, max %d", len(centroids), fse.MaxSymbols)
	}

	sq := &Squeezed{
		Symbols:   make([]uint16, len(values)),
		Counts:    make([]uint32, len(centroids)),
		Centroids: slices.Clip(centroids),
	}
	for i, v := range deq {
		s, _ := slices.BinarySearch(centroids, v)
		sq.Symbols[i] = uint16(s)
		sq.Counts[s]++
	}
	return sq, nil
}
