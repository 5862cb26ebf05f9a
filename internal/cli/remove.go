package cli

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/resolver"
	"github.com/ratpm/ratpm/internal/rtctx"
)

type removeCommand struct{}

func (*removeCommand) Name() string      { return "remove" }
func (*removeCommand) Args() string      { return "<package> [package...]" }
func (*removeCommand) ShortHelp() string { return "Remove packages" }
func (*removeCommand) LongHelp() string {
	return "Remove the named packages, failing if any is still required by another installed package."
}
func (*removeCommand) Register(*flag.FlagSet) {}

func (*removeCommand) Run(ctx *rtctx.Context, out *output.Printer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no packages specified")
	}

	if err := ctx.RequireRoot(); err != nil {
		return errors.Wrap(err, "root privileges required for package removal")
	}

	guard, err := ctx.AcquireLock()
	if err != nil {
		return errors.Wrap(err, "failed to acquire package manager lock")
	}
	defer guard.Release()

	r := resolver.New(ctx.Backend.Catalog, ctx.Backend.InstalledDB)
	txn, err := r.ResolveRemove(args)
	if err != nil {
		return errors.Wrap(err, "failed to resolve removal")
	}

	return runTransaction(ctx, out, txn, "Transaction completed successfully")
}
