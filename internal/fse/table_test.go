package fse

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableStepVisitsEverySlot(t *testing.T) {
	for tableLog := MinTableLog; tableLog <= MaxTableLog; tableLog++ {
		tableSize := uint32(1) << tableLog
		step := tableStep(tableSize)
		mask := tableSize - 1

		seen := make([]bool, tableSize)
		var position uint32
		for range tableSize {
			require.False(t, seen[position], "tableLog=%d revisits slot %d", tableLog, position)
			seen[position] = true
			position = (position + step) & mask
		}
		assert.Equal(t, uint32(0), position, "tableLog=%d", tableLog)
	}
}

func TestSpreadSymbolsCompleteness(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for tableLog := MinTableLog; tableLog <= 12; tableLog++ {
		n := 1 + rng.IntN(min(1<<tableLog, 64))
		counts := make([]uint32, n)
		for i := range counts {
			counts[i] = uint32(rng.IntN(1000))
		}
		counts[0]++
		norm, err := NormalizeCounts(counts, tableLog)
		require.NoError(t, err)

		spread, err := spreadSymbols(norm, tableLog)
		require.NoError(t, err)
		require.Len(t, spread, 1<<tableLog)

		got := make([]uint32, n)
		for _, s := range spread {
			require.Less(t, int(s), n)
			got[s]++
		}
		assert.Equal(t, norm, got, "tableLog=%d", tableLog)
	}
}

func TestSpreadSymbolsSeparatesOccurrences(t *testing.T) {
	spread, err := spreadSymbols([]uint32{8, 5, 3}, 4)
	require.NoError(t, err)
	// Stride 13 over 16 slots.
	want := []uint16{0, 0, 1, 2, 0, 1, 2, 0, 1, 2, 0, 0, 1, 0, 0, 1}
	assert.Equal(t, want, spread)
}

func TestBuildCTableTransforms(t *testing.T) {
	ct, err := BuildCTable([]uint32{8, 5, 3}, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, ct.TableLog())
	assert.Equal(t, 3, ct.SymbolCount())

	want := []symbolTransform{
		{deltaNbBits: 2<<16 - 32, deltaFindState: -8},
		{deltaNbBits: 2<<16 - 20, deltaFindState: 3},
		{deltaNbBits: 3<<16 - 24, deltaFindState: 10},
	}
	assert.Equal(t, want, ct.symbolTT)
}

func TestBuildCTableMinimumFrequency(t *testing.T) {
	ct, err := BuildCTable([]uint32{15, 1}, 4)
	require.NoError(t, err)
	assert.Equal(t, symbolTransform{deltaNbBits: 4<<16 - 16, deltaFindState: 14}, ct.symbolTT[1])
}

func TestBuildCTableStateTable(t *testing.T) {
	norm := []uint32{8, 5, 3}
	ct, err := BuildCTable(norm, 4)
	require.NoError(t, err)

	// Every state in [16, 32) appears exactly once.
	states := append([]uint32(nil), ct.stateTable...)
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	for i, s := range states {
		assert.Equal(t, uint32(16+i), s)
	}

	// Within a symbol's segment, states follow spread order.
	var cumul uint32
	for sym, f := range norm {
		seg := ct.stateTable[cumul : cumul+f]
		for _, s := range seg {
			assert.Equal(t, uint16(sym), ct.spread[s-16])
		}
		assert.True(t, sort.SliceIsSorted(seg, func(i, j int) bool { return seg[i] < seg[j] }))
		cumul += f
	}
}

func TestBuildCTableErrors(t *testing.T) {
	_, err := BuildCTable([]uint32{8, 5, 2}, 4)
	assert.ErrorIs(t, err, ErrInvalidFrequencySum)

	_, err = BuildCTable([]uint32{16, 0}, 4)
	assert.ErrorIs(t, err, ErrInvalidFrequencySum)

	_, err = BuildCTable(nil, 4)
	assert.ErrorIs(t, err, ErrNullInput)

	_, err = BuildCTable([]uint32{1}, 0)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestBuildDTableMatchesCTable(t *testing.T) {
	norm := []uint32{8, 5, 3}
	ct, err := BuildCTable(norm, 4)
	require.NoError(t, err)
	dt, err := BuildDTable(norm, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, dt.TableLog())

	// Encoding sym from any state and decoding the resulting state must
	// give sym back along with the original state.
	for sym := range norm {
		for state := uint32(16); state < 32; state++ {
			bs, err := NewBitStream(64)
			require.NoError(t, err)
			next := ct.encodeSymbol(bs, uint16(sym), state)
			require.GreaterOrEqual(t, next, uint32(16))
			require.Less(t, next, uint32(32))

			e := dt.entries[next-16]
			require.Equal(t, uint16(sym), e.symbol)
			require.Equal(t, uint8(bs.Len()), e.nbBits)
			assert.Equal(t, state, e.newState+uint32(bs.Current())+16)
		}
	}
}
