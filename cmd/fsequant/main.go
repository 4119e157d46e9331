// Package main provides the fsequant CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/born-ml/fsequant/internal/quant"
	"github.com/born-ml/fsequant/internal/serialization"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: fsequant <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  compress [-min-ratio r] [-workers n] [-v] <in.born> <out.born>")
	fmt.Fprintln(w, "  inspect <file.born>")
	fmt.Fprintln(w, "  version")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "compress":
		err = compress(ctx, args[1:], stderr)
	case "inspect":
		err = inspect(args[1:], stdout)
	case "version":
		fmt.Fprintf(stdout, "fsequant %s\n", serialization.Version)
	default:
		usage(stderr)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "fsequant %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func compress(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("compress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	minRatio := fs.Float64("min-ratio", 0, "Leave weights whose compression ratio is below this uncompressed (0 = accept all)")
	workers := fs.Int("workers", 0, "Weights compressed concurrently (0 = GOMAXPROCS)")
	verbose := fs.Bool("v", false, "Log per-weight decisions at debug level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("expected <in.born> <out.born>, got %d arguments", fs.NArg())
	}
	in, out := fs.Arg(0), fs.Arg(1)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	reader, err := serialization.NewReader(in)
	if err != nil {
		return err
	}
	header := reader.Header()
	weights, err := reader.ReadWeights()
	_ = reader.Close()
	if err != nil {
		return err
	}

	c := quant.NewCompressor(quant.Options{MinRatio: *minRatio, Workers: *workers, Logger: logger})
	report, err := c.CompressAll(ctx, weights)
	if err != nil {
		return err
	}

	writer, err := serialization.NewWriter(out)
	if err != nil {
		return err
	}
	if err := writer.WriteWeights(weights, header.ModelType, header.Metadata); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	logger.Info("wrote model",
		"path", out,
		"weights", len(weights),
		"compressed", report.Compressed,
		"uncompressed", len(report.Failed),
		"ratio", report.Ratio())
	return nil
}

func inspect(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("expected <file.born>, got %d arguments", len(args))
	}
	reader, err := serialization.NewReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	h := reader.Header()
	fmt.Fprintf(stdout, "format v%d  producer %s  model %q  tensors %d\n",
		h.FormatVersion, h.Producer, h.ModelType, len(h.Tensors))

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDTYPE\tSHAPE\tSIZE\tSOURCE\tTABLE LOG\tSYMBOLS\tDECODE")
	var failed int
	for _, t := range h.Tensors {
		source, tableLog, symbols, decode := "-", "-", "-", "-"
		if c := t.Compression; c != nil {
			source = c.SourceDType
			tableLog = fmt.Sprint(c.TableLog)
			symbols = fmt.Sprint(c.SymbolCount)
			decode = "ok"
			if err := verify(reader, t.Name); err != nil {
				decode = err.Error()
				failed++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\t%s\t%s\t%s\n", t.Name, t.DType, t.Shape, t.Size, source, tableLog, symbols, decode)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d tensors failed to decode", failed)
	}
	return nil
}

// verify loads a compressed tensor, checking its payload hash, and decodes it.
func verify(reader *serialization.Reader, name string) error {
	w, err := reader.ReadWeight(name)
	if err != nil {
		return err
	}
	_, err = quant.Decompress(w)
	return err
}
