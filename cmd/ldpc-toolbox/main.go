// Command ldpc-toolbox inspects alist codes, encodes and decodes frames from
// raw files, and serves codes over gRPC.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/quic-go/quic-ldpc/fec"
)

var log = zap.NewNop()

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func commands() []*command {
	return []*command{
		alistCommand(),
		systematicCommand(),
		encodeCommand(),
		decodeCommand(),
		serveCommand(),
	}
}

func run(args []string, stderr io.Writer) error {
	global := pflag.NewFlagSet("ldpc-toolbox", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(stderr)
	verbose := global.BoolP("verbose", "v", false, "debug logging")
	if err := global.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printUsage(stderr, commands())
			return nil
		}
		return err
	}

	l, err := newLogger(*verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer l.Sync() //nolint:errcheck
	log = l
	fec.SetLogger(l.Named("fec"))

	return dispatch(commands(), global.Args())
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
