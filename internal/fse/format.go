package fse

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

const (
	alignSize = 8
	// MaxBufferSize bounds the buffer budget of a single tensor (2 GiB).
	MaxBufferSize = 2 << 30

	headerSize = 8 // symbol count, table log, chunk count field
)

// Stream is the parsed form of a serialized buffer.
type Stream struct {
	TableLog    int
	Frequencies []uint32
	Centroids   []float32
	Chunks      []uint64 // committed chunks
	Current     uint64   // partial chunk, left aligned
	BitCount    uint8    // bits used in Current
}

func alignUp(n int) int {
	return (n + alignSize - 1) &^ (alignSize - 1)
}

// SerializedSize returns the exact size of a buffer holding symbolCount
// symbols and committedChunks full chunks.
func SerializedSize(symbolCount, committedChunks int) int {
	size := alignUp(headerSize + 4*symbolCount)
	size = alignUp(size + 4*symbolCount)
	return size + 8*committedChunks + 8 + 1
}

// Serialize lays out a flushed stream and its tables in a flat buffer.
// The result must fit in budget bytes.
func Serialize(bs *BitStream, norm []uint32, centroids []float32, tableLog int, budget int) ([]byte, error) {
	if bs == nil {
		return nil, errors.Wrap(ErrNullInput, "nil bit stream")
	}
	if len(norm) == 0 || len(norm) != len(centroids) {
		return nil, errors.Wrapf(ErrNullInput, "%d frequencies, %d centroids", len(norm), len(centroids))
	}
	if len(norm) > MaxSymbols {
		return nil, errors.Wrapf(ErrInvalidIndex, "%d symbols, max %d", len(norm), MaxSymbols)
	}
	if budget <= 0 || budget > MaxBufferSize {
		return nil, errors.Wrapf(ErrAllocation, "buffer budget %d", budget)
	}

	chunks := bs.Chunks()
	size := SerializedSize(len(norm), len(chunks))
	if size > budget {
		return nil, errors.Wrapf(ErrBufferTooSmall, "need %d bytes, budget %d", size, budget)
	}

	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(norm)))
	out = binary.LittleEndian.AppendUint16(out, uint16(tableLog))
	out = binary.LittleEndian.AppendUint32(out, uint32(bs.ChunkIndex()+2))
	for _, f := range norm {
		out = binary.LittleEndian.AppendUint32(out, f)
	}
	out = pad(out)
	for _, c := range centroids {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(c))
	}
	out = pad(out)
	for _, c := range chunks {
		out = binary.LittleEndian.AppendUint64(out, c)
	}
	out = binary.LittleEndian.AppendUint64(out, bs.Current())
	out = append(out, bs.BitCount())
	return out, nil
}

// pad appends uint16 zeros up to the next 8-byte boundary.
func pad(out []byte) []byte {
	for len(out)%alignSize != 0 {
		out = binary.LittleEndian.AppendUint16(out, 0)
	}
	return out
}

// Parse decodes a buffer produced by Serialize.
func Parse(buf []byte) (*Stream, error) {
	if len(buf) < headerSize {
		return nil, errors.Wrapf(ErrCorruptStream, "buffer of %d bytes", len(buf))
	}
	symbolCount := int(binary.LittleEndian.Uint16(buf[0:2]))
	tableLog := int(binary.LittleEndian.Uint16(buf[2:4]))
	chunkField := binary.LittleEndian.Uint32(buf[4:8])
	if symbolCount == 0 {
		return nil, errors.Wrap(ErrCorruptStream, "zero symbols")
	}
	if tableLog < MinTableLog || tableLog > MaxTableLog {
		return nil, errors.Wrapf(ErrCorruptStream, "table log %d", tableLog)
	}
	if chunkField == 0 {
		return nil, errors.Wrap(ErrCorruptStream, "chunk count field is zero")
	}
	committed := int(chunkField - 1)
	if committed > len(buf)/8 {
		return nil, errors.Wrapf(ErrCorruptStream, "%d chunks in %d bytes", committed, len(buf))
	}
	if want := SerializedSize(symbolCount, committed); len(buf) != want {
		return nil, errors.Wrapf(ErrCorruptStream, "buffer is %d bytes, layout needs %d", len(buf), want)
	}

	s := &Stream{
		TableLog:    tableLog,
		Frequencies: make([]uint32, symbolCount),
		Centroids:   make([]float32, symbolCount),
		Chunks:      make([]uint64, committed),
	}
	off := headerSize
	for i := range s.Frequencies {
		s.Frequencies[i] = binary.LittleEndian.Uint32(buf[off:])
		off += 4
	}
	off = alignUp(off)
	for i := range s.Centroids {
		s.Centroids[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
	}
	off = alignUp(off)
	for i := range s.Chunks {
		s.Chunks[i] = binary.LittleEndian.Uint64(buf[off:])
		off += 8
	}
	s.Current = binary.LittleEndian.Uint64(buf[off:])
	s.BitCount = buf[off+8]
	if s.BitCount >= chunkBits {
		return nil, errors.Wrapf(ErrCorruptStream, "partial chunk bit count %d", s.BitCount)
	}
	return s, nil
}
