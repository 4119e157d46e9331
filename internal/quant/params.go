package quant

import (
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidParams is returned when quantization parameters do not match a weight.
var ErrInvalidParams = errors.New("quant: invalid quantization parameters")

// Param is an affine quantization parameter: real = Scale * (q - ZeroPoint).
type Param struct {
	Scale     float64 `json:"scale"`
	ZeroPoint int32   `json:"zero_point"`
}

// Dequantize maps a quantized value to its real value.
func (p Param) Dequantize(q int32) float32 {
	return float32(p.Scale * float64(q-p.ZeroPoint))
}

// checkParams validates params for a weight of n elements. A single parameter
// applies to the whole tensor; otherwise there is one per output channel and
// the elements of a channel are contiguous.
func checkParams(params []Param, n int) (perChannel int, err error) {
	if len(params) == 0 {
		return 0, errors.Wrap(ErrInvalidParams, "no parameters")
	}
	if n%len(params) != 0 {
		return 0, errors.Wrapf(ErrInvalidParams, "%d elements do not split into %d channels", n, len(params))
	}
	for i, p := range params {
		if p.Scale <= 0 || math.IsInf(p.Scale, 0) || math.IsNaN(p.Scale) {
			return 0, errors.Wrapf(ErrInvalidParams, "channel %d: scale %v", i, p.Scale)
		}
	}
	return n / len(params), nil
}
