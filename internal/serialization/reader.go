package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/fsequant/internal/quant"
	"github.com/born-ml/fsequant/internal/tensor"
)

// Reader reads weights from .born format.
type Reader struct {
	src        io.ReaderAt
	closer     io.Closer
	header     Header
	flags      uint32
	dataOffset int64    // Offset where tensor data starts
	dataSize   int64    // Size of the data section
	checksum   [32]byte // SHA-256 checksum of the data section
	opts       ReaderOptions
	closed     bool
}

// ReaderOptions configures the behavior of Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum and payload hash validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// DefaultReaderOptions returns strict options.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{ValidationLevel: ValidationStrict}
}

// NewReader opens a .born file with default options (strict validation).
func NewReader(path string) (*Reader, error) {
	return NewReaderWithOptions(path, DefaultReaderOptions())
}

// NewReaderWithOptions opens a .born file with custom options.
func NewReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	reader, err := newReader(file, fileInfo.Size(), opts)
	if err != nil {
		_ = file.Close() // Best effort close on error
		return nil, err
	}
	reader.closer = file
	return reader, nil
}

// ReadFrom reads a whole .born stream and returns its weights and header.
// This is useful for reading from buffers or network connections.
func ReadFrom(in io.Reader, opts ReaderOptions) ([]*quant.Weight, Header, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to read stream: %w", err)
	}
	reader, err := newReader(bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return nil, Header{}, err
	}
	weights, err := reader.ReadWeights()
	if err != nil {
		return nil, Header{}, err
	}
	return weights, reader.header, nil
}

func newReader(src io.ReaderAt, size int64, opts ReaderOptions) (*Reader, error) {
	reader := &Reader{src: src, opts: opts}
	if err := reader.parseHeader(size); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	if err := ValidateHeader(&reader.header, reader.dataSize, opts.ValidationLevel); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return reader, nil
}

// parseHeader reads and parses the fixed header and the JSON header.
func (r *Reader) parseHeader(size int64) error {
	fixedHeader := make([]byte, FixedHeaderSize)
	if _, err := r.src.ReadAt(fixedHeader, 0); err != nil {
		return fmt.Errorf("failed to read fixed header: %w", err)
	}

	// 0x00-0x03: magic
	if string(fixedHeader[0:4]) != MagicBytes {
		return ErrInvalidMagic
	}

	// 0x04-0x07: version
	version := binary.LittleEndian.Uint32(fixedHeader[4:8])
	if version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	// 0x08-0x0B: flags
	r.flags = binary.LittleEndian.Uint32(fixedHeader[8:12])

	// 0x10-0x17: header size
	headerSize := binary.LittleEndian.Uint64(fixedHeader[16:24])

	// 0x18-0x1F: data size
	dataSize := binary.LittleEndian.Uint64(fixedHeader[24:32])

	// 0x20-0x3F: SHA-256 checksum
	copy(r.checksum[:], fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := r.src.ReadAt(headerBytes, FixedHeaderSize); err != nil {
		return fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	r.dataOffset = alignUp(int64(FixedHeaderSize) + int64(headerSize))
	//nolint:gosec // G115: checked against the file size below
	r.dataSize = int64(dataSize)
	if r.dataSize < 0 || r.dataOffset+r.dataSize > size {
		return fmt.Errorf("data section of %d bytes at %d exceeds file size %d", dataSize, r.dataOffset, size)
	}

	if !r.opts.SkipChecksumValidation {
		computed, err := ComputeChecksumReader(io.NewSectionReader(r.src, r.dataOffset, r.dataSize))
		if err != nil {
			return fmt.Errorf("failed to read tensor data for checksum: %w", err)
		}
		if err := ValidateChecksum(computed, r.checksum); err != nil {
			return err
		}
	}

	return nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Flags returns the flags of the fixed header.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns a list of all tensor names in the file.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for _, meta := range r.header.Tensors {
		if meta.Name == name {
			return &meta, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
}

// ReadTensorData reads the stored bytes of a tensor.
func (r *Reader) ReadTensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	return r.readData(meta)
}

func (r *Reader) readData(meta *TensorMeta) ([]byte, error) {
	data := make([]byte, meta.Size)
	if _, err := r.src.ReadAt(data, r.dataOffset+meta.Offset); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	return data, nil
}

// ReadWeight loads a single weight from the file.
func (r *Reader) ReadWeight(name string) (*quant.Weight, error) {
	if r.closed {
		return nil, ErrClosed
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape for tensor %s: %w", name, err)
	}
	dtype, ok := tensor.ParseDataType(meta.DType)
	if !ok {
		return nil, fmt.Errorf("tensor %s: %w %q", name, ErrUnknownDType, meta.DType)
	}

	data, err := r.readData(meta)
	if err != nil {
		return nil, err
	}

	w := &quant.Weight{Name: meta.Name, Params: meta.Quant}
	if dtype != tensor.FSE {
		raw, err := tensor.FromBytes(shape, dtype, data)
		if err != nil {
			return nil, fmt.Errorf("failed to create tensor %s: %w", name, err)
		}
		w.Payload = quant.Raw{Tensor: raw}
		return w, nil
	}

	c := meta.Compression
	if c == nil {
		return nil, fmt.Errorf("tensor %s: fse payload without compression metadata", name)
	}
	source, ok := tensor.ParseDataType(c.SourceDType)
	if !ok {
		return nil, fmt.Errorf("tensor %s: %w %q", name, ErrUnknownDType, c.SourceDType)
	}
	if !r.opts.SkipChecksumValidation && PayloadHash(data) != c.Hash {
		return nil, fmt.Errorf("tensor %s: %w", name, ErrPayloadHash)
	}
	w.Payload = quant.Compressed{
		Data:        data,
		TensorShape: shape.Clone(),
		Source:      source,
		TableLog:    c.TableLog,
		SymbolCount: c.SymbolCount,
	}
	return w, nil
}

// ReadWeights reads all weights in file order.
func (r *Reader) ReadWeights() ([]*quant.Weight, error) {
	if r.closed {
		return nil, ErrClosed
	}

	weights := make([]*quant.Weight, 0, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		w, err := r.ReadWeight(meta.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load tensor %s: %w", meta.Name, err)
		}
		weights = append(weights, w)
	}
	return weights, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

