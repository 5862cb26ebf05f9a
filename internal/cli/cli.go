// Package cli dispatches ratpm's fixed subcommand table, in the manual
// flag.FlagSet-per-command idiom grounded on golang-dep's main.go: a
// Command interface, one flag.FlagSet per invocation, and an error path
// that unwraps to errs.Kind for the process exit code.
package cli

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/errs"
	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/rtctx"
)

// Command is one ratpm subcommand.
type Command interface {
	Name() string
	Args() string
	ShortHelp() string
	LongHelp() string
	Register(*flag.FlagSet)
	Run(ctx *rtctx.Context, out *output.Printer, args []string) error
}

// Commands is the fixed subcommand table.
func Commands() []Command {
	return []Command{
		&installCommand{},
		&removeCommand{},
		&updateCommand{},
		&upgradeCommand{},
		&searchCommand{},
		&infoCommand{},
		&listCommand{},
		&syncCommand{},
		&doctorCommand{},
		&historyCommand{},
	}
}

// Dispatch parses argv[0] as a subcommand name, runs it, and returns the
// process exit code: 0 on success, else errs.Kind.ExitCode() for a known
// error, else 1.
func Dispatch(argv []string, ctx *rtctx.Context, out *output.Printer) int {
	commands := Commands()

	usage := func() {
		fmt.Fprintln(os.Stderr, "Usage: ratpm <command> [flags] [args]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr)
		w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
		for _, c := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", c.Name(), c.ShortHelp())
		}
		w.Flush()
		fmt.Fprintln(os.Stderr)
	}

	if len(argv) == 0 || strings.EqualFold(argv[0], "help") || argv[0] == "-h" || argv[0] == "--help" {
		usage()
		return 1
	}

	for _, c := range commands {
		if c.Name() != argv[0] {
			continue
		}

		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.Register(fs)
		resetUsage(fs, c.Name(), c.Args(), c.LongHelp())

		if err := fs.Parse(argv[1:]); err != nil {
			return 1
		}

		if err := c.Run(ctx, out, fs.Args()); err != nil {
			return reportError(out, err)
		}
		return 0
	}

	fmt.Fprintf(os.Stderr, "ratpm: no such command: %s\n", argv[0])
	usage()
	return 1
}

// reportError writes "Error: <message>" to stderr and returns the exit
// code for the unwrapped cause, per spec §7 propagation rules.
func reportError(out *output.Printer, err error) int {
	out.Error("Error: " + errors.Cause(err).Error())
	if rerr, ok := errors.Cause(err).(*errs.Error); ok {
		return rerr.ExitCode()
	}
	return 1
}

func resetUsage(fs *flag.FlagSet, name, args, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		defValue := f.DefValue
		if defValue == "" {
			defValue = "<none>"
		}
		fmt.Fprintf(flagWriter, "\t-%s\t%s (default: %s)\n", f.Name, f.Usage, defValue)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ratpm %s %s\n", name, args)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, strings.TrimSpace(longHelp))
		fmt.Fprintln(os.Stderr)
		if hasFlags {
			fmt.Fprintln(os.Stderr, "Flags:")
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, flagBlock.String())
		}
	}
}
