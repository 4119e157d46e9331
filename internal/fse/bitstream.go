package fse

import (
	"math/bits"

	"github.com/pkg/errors"
)

const chunkBits = 64

// BitStream is an append-only bit buffer made of 64-bit chunks.
// Bits are pushed most-significant first within a chunk. A full chunk is
// committed to the chunk sequence; the chunk being filled is kept separately
// together with the number of bits it holds.
//
// BitStream is not safe for concurrent use.
type BitStream struct {
	chunks     []uint64
	chunkIndex int    // index of the last committed chunk, -1 when none
	current    uint64 // chunk being filled
	bitCount   uint8  // bits used in current
	flushed    bool
}

// NewBitStream allocates a stream sized for at least capacityBits bits.
// The capacity is an estimate: the stream grows if more bits are pushed.
func NewBitStream(capacityBits int) (*BitStream, error) {
	if capacityBits <= 0 {
		return nil, errors.Wrapf(ErrAllocation, "bit capacity %d", capacityBits)
	}
	chunkCount := 1 + (capacityBits-1)/chunkBits
	return &BitStream{
		chunks:     make([]uint64, 0, chunkCount),
		chunkIndex: -1,
	}, nil
}

// Push appends the low nbBits bits of value.
// nbBits must not exceed 32; the coder never pushes more than MaxTableLog bits.
func (b *BitStream) Push(value uint64, nbBits uint8) {
	value &= lowMask(nbBits)
	free := chunkBits - b.bitCount
	if nbBits < free {
		b.current = b.current<<nbBits | value
		b.bitCount += nbBits
		return
	}

	// The value straddles the chunk boundary: its high part completes the
	// current chunk and its low part starts the next one.
	over := nbBits - free
	b.current = b.current<<free | value>>over
	b.commit()
	b.current = value & lowMask(over)
	b.bitCount = over
}

func (b *BitStream) commit() {
	b.chunks = append(b.chunks, b.current)
	b.chunkIndex++
	b.current = 0
	b.bitCount = 0
}

// Empty drops all content but keeps the allocated storage.
func (b *BitStream) Empty() {
	clear(b.chunks)
	b.chunks = b.chunks[:0]
	b.chunkIndex = -1
	b.current = 0
	b.bitCount = 0
	b.flushed = false
}

// Flush finalizes the partial chunk by moving its bits to the most
// significant end. Calling Flush more than once has no further effect.
func (b *BitStream) Flush() {
	if b.flushed {
		return
	}
	b.flushed = true
	// A shift by 64 yields 0, which is what an empty partial chunk holds.
	b.current <<= chunkBits - b.bitCount
}

// Chunks returns the committed chunks. The slice aliases the stream.
func (b *BitStream) Chunks() []uint64 {
	return b.chunks[:b.chunkIndex+1]
}

// ChunkIndex returns the index of the last committed chunk, or -1.
func (b *BitStream) ChunkIndex() int {
	return b.chunkIndex
}

// Current returns the partial chunk.
func (b *BitStream) Current() uint64 {
	return b.current
}

// BitCount returns the number of bits held by the partial chunk.
func (b *BitStream) BitCount() uint8 {
	return b.bitCount
}

// Len returns the total number of bits pushed since the last Empty.
func (b *BitStream) Len() int {
	return (b.chunkIndex+1)*chunkBits + int(b.bitCount)
}

// CountBits returns the position of the highest set bit of x, i.e.
// floor(log2(x)). CountBits(0) is 0.
func CountBits(x uint32) int {
	if x == 0 {
		return 0
	}
	return bits.Len32(x) - 1
}

func lowMask(n uint8) uint64 {
	return 1<<n - 1
}
