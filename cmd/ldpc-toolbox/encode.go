package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/quic-go/quic-ldpc/fec"
)

func encodeCommand() *command {
	var puncturing string
	return &command{
		name:    "encode",
		summary: "Encode information words read as raw 0/1 bytes",
		usage:   "encode [--puncturing pattern] <code.alist> <info.bin> <codewords.bin>",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("encode", pflag.ContinueOnError)
			fs.StringVarP(&puncturing, "puncturing", "p", "", "puncturing pattern (mask:, indices: or blocks:)")
			return fs
		},
		run: func(_ *pflag.FlagSet, args []string) error {
			if err := requireArgs("encode", args, "<code.alist>", "<info.bin>", "<codewords.bin>"); err != nil {
				return err
			}
			g, err := fec.ReadAlistFile(args[0])
			if err != nil {
				return err
			}
			p, err := fec.ParsePuncturing(puncturing, g.NumVariables())
			if err != nil {
				return err
			}
			enc, err := fec.NewEncoder(g, p, fec.EncoderOptions{})
			if err != nil {
				return err
			}
			return encodeFile(enc, args[1], args[2])
		},
	}
}

func encodeFile(enc *fec.Encoder, inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)
	info := make([]uint8, enc.InfoLength())
	words := 0
	for {
		if _, err := io.ReadFull(r, info); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%s: trailing partial word after %d words", inPath, words)
			}
			return err
		}
		for i, b := range info {
			if b > 1 {
				return fmt.Errorf("%s: word %d: byte %d is %d, want 0 or 1", inPath, words, i, b)
			}
		}
		cw, err := enc.Encode(info)
		if err != nil {
			return err
		}
		if _, err := w.Write(cw); err != nil {
			return err
		}
		words++
	}
	log.Info("encoded", zap.Int("words", words), zap.Int("k", enc.InfoLength()), zap.Int("n", enc.TransmittedLength()))
	if err := w.Flush(); err != nil {
		return err
	}
	return out.Close()
}
