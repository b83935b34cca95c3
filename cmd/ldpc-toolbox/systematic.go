package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/quic-go/quic-ldpc/fec"
)

func systematicCommand() *command {
	var out string
	return &command{
		name:    "systematic",
		summary: "Print the systematic column permutation of a code",
		usage:   "systematic [--out file] <code.alist>",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("systematic", pflag.ContinueOnError)
			fs.StringVarP(&out, "out", "o", "", "write the permuted (systematic order) alist to this file")
			return fs
		},
		run: func(_ *pflag.FlagSet, args []string) error {
			if err := requireArgs("systematic", args, "<code.alist>"); err != nil {
				return err
			}
			g, err := fec.ReadAlistFile(args[0])
			if err != nil {
				return err
			}
			gen, err := fec.NewGenerator(g)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "n=%d k=%d identity=%t\n", gen.CodewordLength(), gen.InfoLength(), gen.IsIdentityPermutation())
			fmt.Fprintf(stdout, "info columns: %s\n", joinInts(gen.InfoColumns()))
			fmt.Fprintf(stdout, "parity columns: %s\n", joinInts(gen.ParityColumns()))
			if out == "" {
				return nil
			}
			pg, err := gen.PermuteGraph(g)
			if err != nil {
				return err
			}
			return writeAlist(out, pg, false)
		},
	}
}

func joinInts(xs []int) string {
	s := make([]string, len(xs))
	for i, x := range xs {
		s[i] = fmt.Sprint(x)
	}
	return strings.Join(s, " ")
}
