package quant

import (
	"github.com/pkg/errors"

	"github.com/born-ml/fsequant/internal/fse"
	"github.com/born-ml/fsequant/internal/tensor"
)

// Weight is a named model parameter together with its quantization parameters.
type Weight struct {
	Name    string
	Params  []Param
	Payload Payload
}

// NewWeight wraps a raw tensor.
func NewWeight(name string, raw *tensor.RawTensor, params []Param) *Weight {
	return &Weight{Name: name, Params: params, Payload: Raw{Tensor: raw}}
}

// Compressed reports whether the payload is FSE coded.
func (w *Weight) Compressed() bool {
	_, ok := w.Payload.(Compressed)
	return ok
}

// checkWeight validates the parameter layout of w against its shape.
func checkWeight(w *Weight) error {
	if w == nil || w.Payload == nil {
		return errors.Wrap(fse.ErrNullInput, "nil weight")
	}
	shape := w.Payload.Shape()
	if len(w.Params) != 1 && len(w.Params) != shape.Channels() {
		return errors.Wrapf(ErrInvalidParams, "%s: %d parameters for shape %v", w.Name, len(w.Params), shape)
	}
	return nil
}
