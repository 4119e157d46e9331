package quant

import (
	"log/slog"
	"runtime"

	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/born-ml/fsequant/internal/fse"
	"github.com/born-ml/fsequant/internal/parallel"
	"github.com/born-ml/fsequant/internal/tensor"
)

// ErrNotProfitable is returned when compression does not reach Options.MinRatio.
var ErrNotProfitable = errors.New("quant: compression ratio below minimum")

// Options configures a Compressor.
type Options struct {
	// MinRatio rejects results whose original/compressed size ratio is
	// below it. Zero accepts any result that fits in the original size.
	MinRatio float64
	// Workers bounds the number of weights compressed concurrently by CompressAll.
	Workers int
	Logger  *slog.Logger
}

// DefaultOptions returns options that accept every result and use all CPUs.
func DefaultOptions() Options {
	return Options{
		Workers: runtime.GOMAXPROCS(0),
		Logger:  slog.Default(),
	}
}

// Compressor replaces quantized weight payloads with FSE coded ones.
type Compressor struct {
	opts Options
}

// NewCompressor creates a compressor. Zero fields of opts take their defaults.
func NewCompressor(opts Options) *Compressor {
	def := DefaultOptions()
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.Logger == nil {
		opts.Logger = def.Logger
	}
	return &Compressor{opts: opts}
}

// Options returns the effective options.
func (c *Compressor) Options() Options { return c.opts }

// Compress encodes the raw payload of w and replaces it on success. On
// failure w is left unchanged.
func (c *Compressor) Compress(w *Weight) error {
	if err := checkWeight(w); err != nil {
		return err
	}
	raw, ok := w.Payload.(Raw)
	if !ok {
		return errors.Wrapf(fse.ErrUnsupportedType, "%s: already compressed", w.Name)
	}

	var (
		sq  *Squeezed
		err error
	)
	switch raw.Tensor.DType() {
	case tensor.Int8:
		sq, err = Squeeze(raw.Tensor.AsInt8(), w.Params)
	case tensor.Int16:
		sq, err = Squeeze(raw.Tensor.AsInt16(), w.Params)
	default:
		return errors.Wrapf(fse.ErrUnsupportedType, "%s: dtype %s", w.Name, raw.Tensor.DType())
	}
	if err != nil {
		return errors.WithMessagef(err, "%s: squeeze", w.Name)
	}

	origin := raw.Tensor.ByteSize()
	res, err := fse.Compress(sq.Symbols, sq.Counts, sq.Centroids, origin)
	if err != nil {
		return errors.WithMessagef(err, "%s: compress", w.Name)
	}
	ratio := float64(origin) / float64(len(res.Data))
	if c.opts.MinRatio > 0 && ratio < c.opts.MinRatio {
		return errors.Wrapf(ErrNotProfitable, "%s: ratio %.3f < %.3f", w.Name, ratio, c.opts.MinRatio)
	}

	w.Payload = Compressed{
		Data:        res.Data,
		TensorShape: raw.Tensor.Shape().Clone(),
		Source:      raw.Tensor.DType(),
		TableLog:    res.TableLog,
		SymbolCount: res.SymbolCount,
	}
	c.opts.Logger.Info("compressed weight",
		"name", w.Name,
		"origin", origin,
		"compressed", len(res.Data),
		"ratio", ratio,
		"table_log", res.TableLog,
		"symbols", res.SymbolCount)
	return nil
}

// Decompress returns the dequantized values of w, whatever its payload.
func Decompress(w *Weight) ([]float32, error) {
	if w == nil || w.Payload == nil {
		return nil, errors.Wrap(fse.ErrNullInput, "nil weight")
	}
	switch p := w.Payload.(type) {
	case Compressed:
		symbols, centroids, err := fse.Decompress(p.Data, p.TensorShape.NumElements())
		if err != nil {
			return nil, errors.WithMessagef(err, "%s: decompress", w.Name)
		}
		out := make([]float32, len(symbols))
		parallel.Range(len(symbols), parallel.DefaultConfig(), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				out[i] = centroids[symbols[i]]
			}
		})
		return out, nil
	case Raw:
		return dequantizeRaw(w.Name, p.Tensor, w.Params)
	default:
		return nil, errors.Wrapf(fse.ErrUnsupportedType, "%s: payload %T", w.Name, p)
	}
}

// DecompressHalf is Decompress followed by conversion to IEEE half precision.
func DecompressHalf(w *Weight) ([]float16.Float16, error) {
	values, err := Decompress(w)
	if err != nil {
		return nil, err
	}
	out := make([]float16.Float16, len(values))
	for i, v := range values {
		out[i] = float16.Fromfloat32(v)
	}
	return out, nil
}

func dequantizeRaw(name string, t *tensor.RawTensor, params []Param) ([]float32, error) {
	switch t.DType() {
	case tensor.Float32:
		return append([]float32(nil), t.AsFloat32()...), nil
	case tensor.Int8:
		return dequantize(t.AsInt8(), params)
	case tensor.Int16:
		return dequantize(t.AsInt16(), params)
	default:
		return nil, errors.Wrapf(fse.ErrUnsupportedType, "%s: dtype %s", name, t.DType())
	}
}

func dequantize[T Quantized](values []T, params []Param) ([]float32, error) {
	perChannel, err := checkParams(params, len(values))
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(values))
	parallel.Range(len(values), parallel.DefaultConfig(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = params[i/perChannel].Dequantize(int32(values[i]))
		}
	})
	return out, nil
}
