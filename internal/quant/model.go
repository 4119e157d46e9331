package quant

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/fsequant/internal/fse"
)

// Failure records a weight that kept its raw payload.
type Failure struct {
	Name string
	Err  error
}

// Report summarizes a CompressAll run.
type Report struct {
	Compressed int
	Skipped    int // already compressed on entry
	Failed     []Failure
	OriginSize int
	FinalSize  int
}

// Ratio returns the overall original/final size ratio.
func (r *Report) Ratio() float64 {
	if r.FinalSize == 0 {
		return 0
	}
	return float64(r.OriginSize) / float64(r.FinalSize)
}

// CompressAll compresses every weight concurrently. Weights that cannot be
// compressed keep their raw payload and are listed in the report. The
// returned error is non-nil only if ctx is done.
func (c *Compressor) CompressAll(ctx context.Context, weights []*Weight) (*Report, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	var (
		mu  sync.Mutex
		rep Report
	)
	for _, w := range weights {
		if w == nil {
			continue
		}
		if w.Compressed() {
			mu.Lock()
			rep.Skipped++
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			origin := w.Payload.Size()
			err := c.Compress(w)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed = append(rep.Failed, Failure{Name: w.Name, Err: err})
				level := c.opts.Logger.Warn
				if errors.Is(err, fse.ErrUnsupportedType) {
					level = c.opts.Logger.Debug
				}
				level("weight left uncompressed", "name", w.Name, "err", err)
				return nil
			}
			rep.Compressed++
			rep.OriginSize += origin
			rep.FinalSize += w.Payload.Size()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.WithMessage(err, "compress weights")
	}
	slices.SortFunc(rep.Failed, func(a, b Failure) int { return strings.Compare(a.Name, b.Name) })
	c.opts.Logger.Info("compressed model",
		"compressed", rep.Compressed,
		"skipped", rep.Skipped,
		"failed", len(rep.Failed),
		"ratio", rep.Ratio())
	return &rep, nil
}
