// Command shoco is a CLI driver over the shoco codec, trainer, and header
// packages. It contains no codec logic of its own: every subcommand is a
// thin wrapper that reads bytes from stdin or a named file, calls into the
// library, and writes bytes to stdout or a named file.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/ulikunitz/xz/lzma"

	"github.com/dsnet/shoco/header"
	"github.com/dsnet/shoco/shoco"
	"github.com/dsnet/shoco/trainer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "encode":
		err = cmdEncode(os.Args[2:])
	case "decode":
		err = cmdDecode(os.Args[2:])
	case "train":
		err = cmdTrain(os.Args[2:])
	case "dump-header":
		err = cmdDumpHeader(os.Args[2:])
	case "compare":
		err = cmdCompare(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "shoco %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: shoco <encode|decode|train|dump-header|compare> [flags]")
}

// loadModel returns the model named by path (C-header text), or the shipped
// reference model if path is empty.
func loadModel(path string) (*shoco.Model, error) {
	if path == "" {
		return header.Reference()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return header.Parse(f)
}

func openIn(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOut(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func cmdEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	model := fs.String("model", "", "C-header model file (default: shipped reference model)")
	in := fs.String("in", "-", "input file, - for stdin")
	out := fs.String("out", "-", "output file, - for stdout")
	fs.Parse(args)

	m, err := loadModel(*model)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	r, err := openIn(*in)
	if err != nil {
		return err
	}
	defer r.Close()
	src, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	w, err := openOut(*out)
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = w.Write(m.Encode(nil, src))
	return err
}

func cmdDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	model := fs.String("model", "", "C-header model file (default: shipped reference model)")
	in := fs.String("in", "-", "input file, - for stdin")
	out := fs.String("out", "-", "output file, - for stdout")
	fs.Parse(args)

	m, err := loadModel(*model)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	r, err := openIn(*in)
	if err != nil {
		return err
	}
	defer r.Close()
	src, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	dec, err := m.Decode(nil, src)
	if err != nil {
		return err
	}
	w, err := openOut(*out)
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = w.Write(dec)
	return err
}

func cmdTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	corpus := fs.String("corpus", "-", "training corpus file, - for stdin")
	out := fs.String("out", "-", "output C-header file, - for stdout")
	leadBits := fs.Uint("lead-bits", 5, "MaxLeadingBits (C = 2^lead-bits)")
	succBits := fs.Uint("succ-bits", 4, "MaxSuccessorBits (S = 2^succ-bits)")
	encTypes := fs.Int("encoding-types", 3, "number of canonical pack schemes (1-3)")
	optimize := fs.Bool("optimize", false, "search for pack schemes instead of using the canonical defaults")
	dedup := fs.Bool("dedup", false, "skip exact-duplicate corpus segments")
	concurrency := fs.Int("concurrency", 0, "candidate-scoring concurrency for -optimize (0 = unbounded)")
	fs.Parse(args)

	r, err := openIn(*corpus)
	if err != nil {
		return err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	mb := trainer.NewModelBuilder(trainer.Options{
		MaxLeadingBits:   *leadBits,
		MaxSuccessorBits: *succBits,
		EncodingTypes:    *encTypes,
		OptimizeEncoding: *optimize,
		Dedup:            *dedup,
		Concurrency:      *concurrency,
	})
	m, err := mb.Build(data)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	w, err := openOut(*out)
	if err != nil {
		return err
	}
	defer w.Close()
	return header.Write(w, m)
}

func cmdDumpHeader(args []string) error {
	fs := flag.NewFlagSet("dump-header", flag.ExitOnError)
	model := fs.String("model", "", "C-header model file (default: shipped reference model)")
	out := fs.String("out", "-", "output C-header file, - for stdout")
	fs.Parse(args)

	m, err := loadModel(*model)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	w, err := openOut(*out)
	if err != nil {
		return err
	}
	defer w.Close()
	return header.Write(w, m)
}

// cmdCompare reads stdin a line at a time and reports, per line and in
// aggregate, the output size shoco achieves against two general-purpose
// block compressors (klauspost/compress/flate, ulikunitz/xz/lzma) run over
// the same bytes. It exists to make the claim that block compressors give
// negative compression on short inputs checkable instead of merely
// asserted.
func cmdCompare(args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	model := fs.String("model", "", "C-header model file (default: shipped reference model)")
	in := fs.String("in", "-", "input file of newline-separated strings, - for stdin")
	fs.Parse(args)

	m, err := loadModel(*model)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	r, err := openIn(*in)
	if err != nil {
		return err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var totalIn, totalShoco, totalFlate, totalLZMA int
	fmt.Printf("%-40s %8s %8s %8s %8s\n", "line", "raw", "shoco", "flate", "lzma")
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		sh := len(m.Encode(nil, line))
		fl, err := flateSize(line)
		if err != nil {
			return err
		}
		lz, err := lzmaSize(line)
		if err != nil {
			return err
		}
		totalIn += len(line)
		totalShoco += sh
		totalFlate += fl
		totalLZMA += lz
		fmt.Printf("%-40s %8d %8d %8d %8d\n", truncate(string(line), 40), len(line), sh, fl, lz)
	}
	fmt.Printf("%-40s %8d %8d %8d %8d\n", "TOTAL", totalIn, totalShoco, totalFlate, totalLZMA)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func flateSize(b []byte) (int, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(b); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

func lzmaSize(b []byte) (int, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(b); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}
