package cli

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/resolver"
	"github.com/ratpm/ratpm/internal/rtctx"
)

type installCommand struct{}

func (*installCommand) Name() string      { return "install" }
func (*installCommand) Args() string      { return "<package> [package...]" }
func (*installCommand) ShortHelp() string { return "Install packages" }
func (*installCommand) LongHelp() string {
	return "Resolve and install the named packages along with their dependencies."
}
func (*installCommand) Register(*flag.FlagSet) {}

func (*installCommand) Run(ctx *rtctx.Context, out *output.Printer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no packages specified")
	}

	if err := ctx.RequireRoot(); err != nil {
		return errors.Wrap(err, "root privileges required for package installation")
	}

	guard, err := ctx.AcquireLock()
	if err != nil {
		return errors.Wrap(err, "failed to acquire package manager lock")
	}
	defer guard.Release()

	r := resolver.New(ctx.Backend.Catalog, ctx.Backend.InstalledDB)
	txn, err := r.ResolveInstall(args)
	if err != nil {
		return errors.Wrap(err, "failed to resolve dependencies")
	}

	return runTransaction(ctx, out, txn, "Transaction completed successfully")
}
