package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/quic-go/quic-ldpc/fec"
)

var stdout io.Writer = os.Stdout

func alistCommand() *command {
	var (
		out     string
		padding bool
	)
	return &command{
		name:    "alist",
		summary: "Validate an alist file and print its parameters",
		usage:   "alist [--out file] [--padding] <code.alist>",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("alist", pflag.ContinueOnError)
			fs.StringVarP(&out, "out", "o", "", "re-emit the parity check matrix to this file (- for stdout)")
			fs.BoolVar(&padding, "padding", false, "pad adjacency lists with zeros to the maximum weight")
			return fs
		},
		run: func(_ *pflag.FlagSet, args []string) error {
			if err := requireArgs("alist", args, "<code.alist>"); err != nil {
				return err
			}
			g, err := fec.ReadAlistFile(args[0])
			if err != nil {
				return err
			}
			printSummary(stdout, g)
			if out == "" {
				return nil
			}
			return writeAlist(out, g, padding)
		},
	}
}

func printSummary(w io.Writer, g *fec.TannerGraph) {
	maxVar, maxCheck := 0, 0
	for v := 0; v < g.NumVariables(); v++ {
		maxVar = max(maxVar, g.VariableDegree(v))
	}
	for c := 0; c < g.NumChecks(); c++ {
		maxCheck = max(maxCheck, g.CheckDegree(c))
	}
	fmt.Fprintf(w, "n=%d m=%d edges=%d\n", g.NumVariables(), g.NumChecks(), g.NumEdges())
	fmt.Fprintf(w, "max variable degree=%d max check degree=%d\n", maxVar, maxCheck)
}

func writeAlist(path string, g *fec.TannerGraph, padding bool) error {
	if path == "-" {
		return g.WriteAlist(stdout, padding)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.WriteAlist(f, padding); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
