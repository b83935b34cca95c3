package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/quic-go/quic-ldpc/fec"
)

type decodeFlags struct {
	implementation string
	puncturing     string
	maxIterations  int
	workers        int
	batch          int
	f32            bool
	full           bool
}

func decodeCommand() *command {
	var f decodeFlags
	return &command{
		name:    "decode",
		summary: "Decode frames of little-endian LLRs",
		usage:   "decode [flags] <code.alist> <llrs.bin> <bits.bin>",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			fs.StringVarP(&f.implementation, "implementation", "i", "sum-product", "check node rule")
			fs.StringVarP(&f.puncturing, "puncturing", "p", "", "puncturing pattern (mask:, indices: or blocks:)")
			fs.IntVarP(&f.maxIterations, "max-iterations", "n", 50, "iteration budget per frame")
			fs.IntVar(&f.workers, "workers", 1, "goroutines per decoding pass")
			fs.IntVar(&f.batch, "batch", 256, "frames decoded concurrently")
			fs.BoolVar(&f.f32, "f32", false, "LLRs are float32 instead of float64")
			fs.BoolVar(&f.full, "full", false, "write all n codeword bits instead of the transmitted ones")
			return fs
		},
		run: func(_ *pflag.FlagSet, args []string) error {
			if err := requireArgs("decode", args, "<code.alist>", "<llrs.bin>", "<bits.bin>"); err != nil {
				return err
			}
			if f.maxIterations < 0 || f.batch <= 0 {
				return fmt.Errorf("decode: --max-iterations must be >= 0 and --batch > 0")
			}
			g, err := fec.ReadAlistFile(args[0])
			if err != nil {
				return err
			}
			p, err := fec.ParsePuncturing(f.puncturing, g.NumVariables())
			if err != nil {
				return err
			}
			dec, err := fec.NewDecoder(g, f.implementation, p, fec.DecoderOptions{Workers: f.workers})
			if err != nil {
				return err
			}
			var st decodeStats
			if f.f32 {
				st, err = decodeFile[float32](dec, f, args[1], args[2])
			} else {
				st, err = decodeFile[float64](dec, f, args[1], args[2])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "frames=%d failures=%d iterations=%d\n", st.frames, st.failures, st.iterations)
			return nil
		},
	}
}

type decodeStats struct {
	frames     int
	failures   int
	iterations int
}

func decodeFile[T fec.Float](dec *fec.Decoder, f decodeFlags, inPath, outPath string) (decodeStats, error) {
	var st decodeStats
	in, err := os.Open(inPath)
	if err != nil {
		return st, err
	}
	defer in.Close()
	out, err := os.Create(outPath)
	if err != nil {
		return st, err
	}
	defer out.Close()

	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)
	outLen := dec.TransmittedLength()
	if f.full {
		outLen = dec.CodewordLength()
	}
	for {
		llrs, err := readFrames[T](r, f.batch, dec.TransmittedLength())
		if err != nil {
			return st, fmt.Errorf("%s: frame %d: %w", inPath, st.frames, err)
		}
		if len(llrs) == 0 {
			break
		}
		bits := make([][]uint8, len(llrs))
		for i := range bits {
			bits[i] = make([]uint8, outLen)
		}
		res, err := fec.DecodeBatch(dec, bits, llrs, f.maxIterations)
		if err != nil {
			return st, err
		}
		for i, rr := range res {
			switch {
			case errors.Is(rr.Err, fec.ErrDecodeFailure):
				st.failures++
			case rr.Err != nil:
				return st, rr.Err
			}
			st.iterations += rr.Iterations
			if _, err := w.Write(bits[i]); err != nil {
				return st, err
			}
		}
		st.frames += len(llrs)
	}
	log.Info("decoded",
		zap.Int("frames", st.frames),
		zap.Int("failures", st.failures),
		zap.Stringer("implementation", dec.Implementation()),
	)
	if err := w.Flush(); err != nil {
		return st, err
	}
	return st, out.Close()
}

// readFrames reads up to count frames of n values. It returns no frames at
// a clean end of input.
func readFrames[T fec.Float](r io.Reader, count, n int) ([][]T, error) {
	var frames [][]T
	for len(frames) < count {
		frame := make([]T, n)
		if err := binary.Read(r, binary.LittleEndian, frame); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, errors.New("trailing partial frame")
			}
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
