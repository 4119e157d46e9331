package fse

import "github.com/pkg/errors"

// encodeSymbol pushes the bits of state that sym does not keep and returns the next state.
func (ct *CTable) encodeSymbol(bs *BitStream, sym uint16, state uint32) uint32 {
	tt := ct.symbolTT[sym]
	nbBitsOut := uint8((state + tt.deltaNbBits) >> 16)
	bs.Push(uint64(state), nbBitsOut)
	return ct.stateTable[int32(state>>nbBitsOut)+tt.deltaFindState]
}

// Encode runs the state machine over symbols and appends the result to bs.
//
// The first symbol is encoded once to obtain a valid starting state and its
// output is discarded. The whole sequence, first symbol included, is then
// encoded, and the final state is written with TableLog bits. The caller
// flushes the stream.
func Encode(bs *BitStream, symbols []uint16, ct *CTable) error {
	if bs == nil || ct == nil {
		return errors.Wrap(ErrNullInput, "nil stream or table")
	}
	if len(symbols) == 0 {
		return errors.Wrap(ErrNullInput, "no symbols to encode")
	}
	for i, s := range symbols {
		if int(s) >= len(ct.symbolTT) {
			return errors.Wrapf(ErrInvalidIndex, "symbol %d at %d, alphabet size %d", s, i, len(ct.symbolTT))
		}
	}

	tableSize := uint32(1) << ct.tableLog
	state := ct.encodeSymbol(bs, symbols[0], tableSize)
	bs.Empty()
	for _, s := range symbols {
		state = ct.encodeSymbol(bs, s, state)
	}
	bs.Push(uint64(state-tableSize), uint8(ct.tableLog))
	return nil
}
