package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// command is one ldpc-toolbox subcommand.
type command struct {
	name    string
	summary string
	usage   string
	flags   func() *pflag.FlagSet
	run     func(fs *pflag.FlagSet, args []string) error
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

func (c *command) execute(args []string) error {
	fs := pflag.NewFlagSet(c.name, pflag.ContinueOnError)
	if c.flags != nil {
		fs = c.flags()
	}
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			c.printHelp(os.Stderr, fs)
			return nil
		}
		return fmt.Errorf("%s: %w\n\nRun 'ldpc-toolbox %s --help' for usage.", c.name, err, c.name)
	}
	return c.run(fs, fs.Args())
}

func (c *command) printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "%s\n\nUsage:\n  ldpc-toolbox %s\n", c.summary, c.usage)
	if usages := fs.FlagUsages(); usages != "" {
		fmt.Fprintf(w, "\nFlags:\n%s", usages)
	}
}

func dispatch(cmds []*command, args []string) error {
	if len(args) == 0 || isHelpFlag(args[0]) {
		printUsage(os.Stderr, cmds)
		if len(args) == 0 {
			return fmt.Errorf("subcommand required")
		}
		return nil
	}
	for _, c := range cmds {
		if c.name == args[0] {
			return c.execute(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'ldpc-toolbox --help' for usage.", args[0])
}

func printUsage(w io.Writer, cmds []*command) {
	fmt.Fprintln(w, "ldpc-toolbox: LDPC encoding and decoding tools")
	fmt.Fprintln(w, "\nUsage:\n  ldpc-toolbox [--verbose] <command> [flags] [args]\n\nCommands:")
	width := 0
	for _, c := range cmds {
		width = max(width, len(c.name))
	}
	for _, c := range cmds {
		fmt.Fprintf(w, "  %s%s  %s\n", c.name, strings.Repeat(" ", width-len(c.name)), c.summary)
	}
}

// requireArgs checks the positional argument count.
func requireArgs(name string, args []string, want ...string) error {
	if len(args) != len(want) {
		return fmt.Errorf("%s: expected %s, got %d argument(s)", name, strings.Join(want, " "), len(args))
	}
	return nil
}
