package quant

import "github.com/born-ml/fsequant/internal/tensor"

// Payload is the stored content of a weight: Raw or Compressed.
type Payload interface {
	// Size returns the stored size in bytes.
	Size() int
	// Shape returns the logical shape of the weight.
	Shape() tensor.Shape
	// DType returns the stored data type.
	DType() tensor.DataType

	isPayload()
}

// Raw is an uncompressed tensor.
type Raw struct {
	Tensor *tensor.RawTensor
}

// Size implements Payload.
func (p Raw) Size() int { return p.Tensor.ByteSize() }

// Shape implements Payload.
func (p Raw) Shape() tensor.Shape { return p.Tensor.Shape() }

// DType implements Payload.
func (p Raw) DType() tensor.DataType { return p.Tensor.DType() }

func (Raw) isPayload() {}

// Compressed is an FSE coded tensor. Data is the serialized stream;
// decoding it yields Shape.NumElements() symbols.
type Compressed struct {
	Data        []byte
	TensorShape tensor.Shape
	Source      tensor.DataType // element type before compression
	TableLog    int
	SymbolCount int
}

// Size implements Payload.
func (p Compressed) Size() int { return len(p.Data) }

// Shape implements Payload.
func (p Compressed) Shape() tensor.Shape { return p.TensorShape }

// DType implements Payload.
func (Compressed) DType() tensor.DataType { return tensor.FSE }

func (Compressed) isPayload() {}
