package serialization

import (
	"time"

	"github.com/born-ml/fsequant/internal/quant"
)

// Format constants.
const (
	MagicBytes      = "BORN"
	FormatVersion   = 2    // With SHA-256 checksum of the data section
	HeaderAlignment = 64   // Align tensor data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Codec names for TensorMeta.Compression.
const (
	CodecFSE = "fse"
)

// Flags for the .born format.
const (
	FlagCompressed  uint32 = 1 << 0 // bit 0: at least one tensor is entropy coded
	FlagHasMetadata uint32 = 1 << 2 // bit 2: custom metadata included
)

// Header represents the JSON header in a .born file.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the .born format
	Producer      string            `json:"producer"`       // Tool and version that wrote the file
	ModelType     string            `json:"model_type"`     // Free-form model description
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	Tensors       []TensorMeta      `json:"tensors"`        // Tensor metadata
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
}

// TensorMeta describes a tensor in the .born file.
type TensorMeta struct {
	Name        string        `json:"name"`                  // Tensor name (e.g., "layer.0.weight")
	DType       string        `json:"dtype"`                 // Stored data type (e.g., "int8", "fse")
	Shape       []int         `json:"shape"`                 // Logical tensor shape
	Offset      int64         `json:"offset"`                // Offset in the data section
	Size        int64         `json:"size"`                  // Size in bytes
	Quant       []quant.Param `json:"quant,omitempty"`       // Per-tensor or per-channel parameters
	Compression *Compression  `json:"compression,omitempty"` // Set for entropy coded tensors
}

// Compression describes an entropy coded payload.
type Compression struct {
	Codec       string `json:"codec"`        // Always CodecFSE
	TableLog    int    `json:"table_log"`    // log2 of the coding table size
	SymbolCount int    `json:"symbol_count"` // Alphabet size
	SourceDType string `json:"source_dtype"` // Element type before compression
	Hash        uint64 `json:"hash"`         // xxh3-64 of the payload
}

// alignUp rounds n up to HeaderAlignment.
func alignUp(n int64) int64 {
	return (n + HeaderAlignment - 1) / HeaderAlignment * HeaderAlignment
}
