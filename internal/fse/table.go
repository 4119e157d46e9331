package fse

import (
	"fmt"

	"github.com/pkg/errors"
)

// symbolTransform holds the per-symbol constants of the encoding state transition.
type symbolTransform struct {
	// deltaNbBits added to the state and shifted right by 16 yields the
	// number of bits to output: either n or n+1 depending on the state.
	deltaNbBits uint32
	// deltaFindState locates the symbol's segment in the coding table.
	deltaFindState int32
}

// String prints values as a human readable string.
func (s symbolTransform) String() string {
	return fmt.Sprintf("{deltabits: %08x, findstate:%d}", s.deltaNbBits, s.deltaFindState)
}

// CTable contains the tables used for encoding.
type CTable struct {
	tableLog   int
	spread     []uint16
	stateTable []uint32
	symbolTT   []symbolTransform
}

// TableLog returns the log2 of the table size.
func (ct *CTable) TableLog() int { return ct.tableLog }

// SymbolCount returns the alphabet size the table was built for.
func (ct *CTable) SymbolCount() int { return len(ct.symbolTT) }

// tableStep is the stride used to spread symbols over the table.
func tableStep(tableSize uint32) uint32 {
	step := (tableSize >> 1) + (tableSize >> 3) + 3
	if step&1 == 0 {
		// Tables of 2 and 8 slots yield an even stride, which would not
		// visit every slot.
		step++
	}
	return step
}

// spreadSymbols places every symbol norm[s] times over the table so that
// occurrences of the same symbol are far apart.
func spreadSymbols(norm []uint32, tableLog int) ([]uint16, error) {
	if tableLog < MinTableLog || tableLog > MaxTableLog {
		return nil, errors.Wrapf(ErrInvalidIndex, "table log %d", tableLog)
	}
	if len(norm) == 0 {
		return nil, errors.Wrap(ErrNullInput, "empty frequency table")
	}
	if len(norm) > MaxSymbols {
		return nil, errors.Wrapf(ErrInvalidIndex, "%d symbols, max %d", len(norm), MaxSymbols)
	}
	tableSize := uint32(1) << tableLog
	var total uint64
	for sym, v := range norm {
		if v == 0 {
			return nil, errors.Wrapf(ErrInvalidFrequencySum, "symbol %d has zero frequency", sym)
		}
		total += uint64(v)
	}
	if total != uint64(tableSize) {
		return nil, errors.Wrapf(ErrInvalidFrequencySum, "frequencies sum to %d, table size is %d", total, tableSize)
	}

	spread := make([]uint16, tableSize)
	step := tableStep(tableSize)
	mask := tableSize - 1
	var position uint32
	for sym, v := range norm {
		for range v {
			spread[position] = uint16(sym)
			position = (position + step) & mask
		}
	}
	if position != 0 {
		return nil, errors.Wrapf(ErrInvalidFrequencySum, "spread ended at position %d", position)
	}
	return spread, nil
}

// BuildCTable builds the encoding tables for normalized frequencies.
func BuildCTable(norm []uint32, tableLog int) (*CTable, error) {
	spread, err := spreadSymbols(norm, tableLog)
	if err != nil {
		return nil, err
	}
	tableSize := uint32(len(spread))

	// Cumulative frequencies with two extra slots for bookkeeping.
	cumul := make([]uint32, len(norm)+2)
	for i := 1; i <= len(norm); i++ {
		cumul[i] = cumul[i-1] + norm[i-1]
	}
	cumul[len(norm)+1] = cumul[len(norm)] + 1

	stateTable := make([]uint32, tableSize)
	for u, sym := range spread {
		if int(sym) >= len(norm) {
			return nil, errors.Wrapf(ErrInvalidIndex, "symbol %d at slot %d", sym, u)
		}
		stateTable[cumul[sym]] = tableSize + uint32(u)
		cumul[sym]++
	}

	symbolTT := make([]symbolTransform, len(norm))
	var total int32
	for sym, v := range norm {
		if v >= 2 {
			maxBitsOut := uint32(tableLog - CountBits(v-1))
			minStatePlus := v << maxBitsOut
			symbolTT[sym].deltaNbBits = maxBitsOut<<16 - minStatePlus
			symbolTT[sym].deltaFindState = total - int32(v)
			total += int32(v)
		} else {
			// Minimum frequency is 1.
			symbolTT[sym].deltaNbBits = uint32(tableLog)<<16 - tableSize
			symbolTT[sym].deltaFindState = total - 1
			total++
		}
	}

	return &CTable{
		tableLog:   tableLog,
		spread:     spread,
		stateTable: stateTable,
		symbolTT:   symbolTT,
	}, nil
}

// decSymbol is one decoding table entry.
type decSymbol struct {
	newState uint32
	symbol   uint16
	nbBits   uint8
}

// DTable contains the table used for decoding.
type DTable struct {
	tableLog int
	entries  []decSymbol
}

// TableLog returns the log2 of the table size.
func (dt *DTable) TableLog() int { return dt.tableLog }

// BuildDTable builds the decoding table matching BuildCTable for the same input.
func BuildDTable(norm []uint32, tableLog int) (*DTable, error) {
	spread, err := spreadSymbols(norm, tableLog)
	if err != nil {
		return nil, err
	}
	tableSize := uint32(len(spread))

	next := make([]uint32, len(norm))
	copy(next, norm)
	entries := make([]decSymbol, tableSize)
	for u, sym := range spread {
		x := next[sym]
		next[sym]++
		nbBits := uint32(tableLog - CountBits(x))
		entries[u] = decSymbol{
			newState: x<<nbBits - tableSize,
			symbol:   sym,
			nbBits:   uint8(nbBits),
		}
	}
	return &DTable{tableLog: tableLog, entries: entries}, nil
}
