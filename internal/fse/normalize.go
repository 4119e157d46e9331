package fse

import (
	"container/heap"
	"math"

	"github.com/pkg/errors"
)

// Table limits.
const (
	MinTableLog = 1
	MaxTableLog = 16
	MaxSymbols  = 1<<16 - 1 // symbol count is stored as a uint16

	// tableLogExtra trades table size against closeness to the entropy.
	tableLogExtra = 3
)

// OptimalTableLog returns the table log used for an alphabet of symbolCount symbols.
func OptimalTableLog(symbolCount int) int {
	return min(MaxTableLog, CountBits(uint32(symbolCount))+tableLogExtra)
}

// NormalizeCounts rescales a histogram so that it sums to exactly 1<<tableLog
// with every entry at least 1. The input slice is not modified.
//
// Each count becomes max(1, floor(0.5 + ratio*count)). An excess is removed
// one unit at a time from the currently largest entry; a deficit is added in
// one step to the largest entry. Ties go to the lowest symbol index.
func NormalizeCounts(counts []uint32, tableLog int) ([]uint32, error) {
	if len(counts) == 0 {
		return nil, errors.Wrap(ErrNullInput, "empty histogram")
	}
	if tableLog < MinTableLog || tableLog > MaxTableLog {
		return nil, errors.Wrapf(ErrInvalidIndex, "table log %d outside [%d, %d]", tableLog, MinTableLog, MaxTableLog)
	}
	tableSize := uint64(1) << tableLog
	if uint64(len(counts)) > tableSize {
		return nil, errors.Wrapf(ErrInvalidFrequencySum, "%d symbols do not fit a table of %d", len(counts), tableSize)
	}

	var total uint64
	for _, c := range counts {
		total += uint64(c)
	}
	if total == 0 {
		return nil, errors.Wrap(ErrInvalidFrequencySum, "histogram sums to zero")
	}

	norm := make([]uint32, len(counts))
	ratio := float32(tableSize) / float32(total)
	var sum uint64
	for i, c := range counts {
		scaled := float32(ratio * float32(c))
		v := uint32(math.Floor(float64(0.5 + scaled)))
		norm[i] = max(1, v)
		sum += uint64(norm[i])
	}

	if sum > tableSize {
		if err := shrink(norm, sum-tableSize); err != nil {
			return nil, err
		}
	} else if sum < tableSize {
		ix := maxIndex(norm)
		if ix < 0 {
			return nil, errors.Wrap(ErrInvalidIndex, "no symbol to grow")
		}
		norm[ix] += uint32(tableSize - sum)
	}
	return norm, nil
}

// shrink removes excess units, always from the largest entry.
func shrink(norm []uint32, excess uint64) error {
	h := countHeap{ix: make([]int, len(norm)), counts: norm}
	for i := range h.ix {
		h.ix[i] = i
	}
	heap.Init(&h)
	for ; excess > 0; excess-- {
		ix := h.ix[0]
		if norm[ix] <= 1 {
			// Only reachable when len(norm) > table size, rejected above.
			return errors.Wrapf(ErrInvalidIndex, "cannot shrink symbol %d below 1", ix)
		}
		norm[ix]--
		heap.Fix(&h, 0)
	}
	return nil
}

// maxIndex returns the first index holding the largest value, or -1.
func maxIndex(arr []uint32) int {
	index := -1
	var best uint32
	for i, v := range arr {
		if index < 0 || v > best {
			best = v
			index = i
		}
	}
	return index
}

// countHeap orders symbol indices by count descending, then index ascending.
type countHeap struct {
	ix     []int
	counts []uint32
}

func (h countHeap) Len() int { return len(h.ix) }

func (h countHeap) Less(i, j int) bool {
	a, b := h.ix[i], h.ix[j]
	if h.counts[a] != h.counts[b] {
		return h.counts[a] > h.counts[b]
	}
	return a < b
}

func (h countHeap) Swap(i, j int) { h.ix[i], h.ix[j] = h.ix[j], h.ix[i] }

func (h *countHeap) Push(x any) { h.ix = append(h.ix, x.(int)) }

func (h *countHeap) Pop() any {
	old := h.ix
	n := len(old)
	x := old[n-1]
	h.ix = old[:n-1]
	return x
}
