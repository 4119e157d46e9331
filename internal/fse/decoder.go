package fse

import "github.com/pkg/errors"

// bitReader reads a BitStream backwards, last pushed bits first.
type bitReader struct {
	chunks []uint64
	next   int    // next chunk to load, moving towards 0
	value  uint64 // unread bits, right aligned
	avail  uint8
}

func newBitReader(s *Stream) *bitReader {
	r := &bitReader{chunks: s.Chunks, next: len(s.Chunks) - 1}
	if s.BitCount > 0 {
		r.value = s.Current >> (chunkBits - s.BitCount)
		r.avail = s.BitCount
	}
	return r
}

func (r *bitReader) pop(n uint8) (uint64, error) {
	if n <= r.avail {
		v := r.value & lowMask(n)
		r.value >>= n
		r.avail -= n
		return v, nil
	}
	if r.next < 0 {
		return 0, errors.Wrapf(ErrCorruptStream, "stream exhausted reading %d bits", n)
	}
	// The low part of the value was pushed into the newer chunk, the high
	// part completes the older one.
	lo, loBits := r.value, r.avail
	hi := n - loBits
	c := r.chunks[r.next]
	r.next--
	v := (c&lowMask(hi))<<loBits | lo
	r.value = c >> hi
	r.avail = chunkBits - hi
	return v, nil
}

func (r *bitReader) finished() bool {
	return r.avail == 0 && r.next < 0
}

// Decode reverses Encode and returns n symbols.
func Decode(s *Stream, n int) ([]uint16, error) {
	if s == nil {
		return nil, errors.Wrap(ErrNullInput, "nil stream")
	}
	if n <= 0 {
		return nil, errors.Wrapf(ErrNullInput, "symbol count %d", n)
	}
	dt, err := BuildDTable(s.Frequencies, s.TableLog)
	if err != nil {
		return nil, err
	}
	return dt.decode(newBitReader(s), n)
}

func (dt *DTable) decode(r *bitReader, n int) ([]uint16, error) {
	v, err := r.pop(uint8(dt.tableLog))
	if err != nil {
		return nil, err
	}
	state := uint32(v)
	out := make([]uint16, n)
	for i := n - 1; i >= 0; i-- {
		e := dt.entries[state]
		out[i] = e.symbol
		bits, err := r.pop(e.nbBits)
		if err != nil {
			return nil, errors.WithMessagef(err, "symbol %d", i)
		}
		state = e.newState + uint32(bits)
	}
	if !r.finished() {
		return nil, errors.Wrap(ErrCorruptStream, "trailing bits after last symbol")
	}
	return out, nil
}
