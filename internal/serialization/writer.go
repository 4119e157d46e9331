package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/born-ml/fsequant/internal/quant"
)

// Version is the fsequant release recorded in Header.Producer.
const Version = "0.1.0"

const producer = "fsequant/" + Version

// Writer writes weights in .born format.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a new .born file writer.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &Writer{file: file}, nil
}

// WriteWeights writes weights to the file in the given order.
func (w *Writer) WriteWeights(weights []*quant.Weight, modelType string, metadata map[string]string) error {
	if w.closed {
		return ErrClosed
	}
	return WriteTo(w.file, weights, Header{ModelType: modelType, Metadata: metadata})
}

// Close closes the writer and the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// WriteTo writes weights to an io.Writer. FormatVersion, Producer, CreatedAt
// and Tensors of header are filled in; the other fields are kept.
func WriteTo(out io.Writer, weights []*quant.Weight, header Header) error {
	header.FormatVersion = FormatVersion
	header.Producer = producer
	header.CreatedAt = time.Now().UTC()
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Calculate tensor offsets and collect tensor data
	header.Tensors = make([]TensorMeta, 0, len(weights))
	var dataBuf []byte
	flags := uint32(0)
	for _, wt := range weights {
		meta, payload, err := describe(wt)
		if err != nil {
			return err
		}
		if meta.Compression != nil {
			flags |= FlagCompressed
		}
		meta.Offset = int64(len(dataBuf))
		header.Tensors = append(header.Tensors, meta)

		dataBuf = append(dataBuf, payload...)
		if pad := alignUp(int64(len(dataBuf))) - int64(len(dataBuf)); pad > 0 {
			dataBuf = append(dataBuf, make([]byte, pad)...)
		}
	}
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	if err := ValidateHeader(&header, int64(len(dataBuf)), ValidationStrict); err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}

	checksum := ComputeChecksum(dataBuf)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	fixedHeader := make([]byte, FixedHeaderSize)
	// 0x00-0x03: Magic bytes "BORN"
	copy(fixedHeader[0:4], MagicBytes)
	// 0x04-0x07: Version
	binary.LittleEndian.PutUint32(fixedHeader[4:8], uint32(FormatVersion))
	// 0x08-0x0B: Flags
	binary.LittleEndian.PutUint32(fixedHeader[8:12], flags)
	// 0x0C-0x0F: Reserved
	// 0x10-0x17: Header size
	binary.LittleEndian.PutUint64(fixedHeader[16:24], uint64(len(headerJSON)))
	// 0x18-0x1F: Data size
	binary.LittleEndian.PutUint64(fixedHeader[24:32], uint64(len(dataBuf)))
	// 0x20-0x3F: SHA-256 checksum
	copy(fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := out.Write(fixedHeader); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := out.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	currentPos := int64(FixedHeaderSize) + int64(len(headerJSON))
	if padding := alignUp(currentPos) - currentPos; padding > 0 {
		if _, err := out.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := out.Write(dataBuf); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// describe builds the metadata of a weight and returns its stored bytes.
func describe(w *quant.Weight) (TensorMeta, []byte, error) {
	if w == nil || w.Payload == nil {
		return TensorMeta{}, nil, fmt.Errorf("nil weight")
	}
	meta := TensorMeta{
		Name:  w.Name,
		DType: w.Payload.DType().String(),
		Shape: []int(w.Payload.Shape().Clone()),
		Quant: w.Params,
	}

	var data []byte
	switch p := w.Payload.(type) {
	case quant.Raw:
		data = p.Tensor.Data()
	case quant.Compressed:
		data = p.Data
		meta.Compression = &Compression{
			Codec:       CodecFSE,
			TableLog:    p.TableLog,
			SymbolCount: p.SymbolCount,
			SourceDType: p.Source.String(),
			Hash:        PayloadHash(p.Data),
		}
	default:
		return TensorMeta{}, nil, fmt.Errorf("tensor %s: unsupported payload %T", w.Name, p)
	}
	meta.Size = int64(len(data))
	return meta, data, nil
}
