package cli

import (
	"flag"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/rtctx"
)

type updateCommand struct{}

func (*updateCommand) Name() string      { return "update" }
func (*updateCommand) Args() string      { return "" }
func (*updateCommand) ShortHelp() string { return "Update repository metadata" }
func (*updateCommand) LongHelp() string  { return "Refresh cached metadata for every configured repository." }
func (*updateCommand) Register(*flag.FlagSet) {}

func (*updateCommand) Run(ctx *rtctx.Context, out *output.Printer, args []string) error {
	if err := ctx.RequireRoot(); err != nil {
		return errors.Wrap(err, "root privileges required for repository update")
	}

	guard, err := ctx.AcquireLock()
	if err != nil {
		return errors.Wrap(err, "failed to acquire package manager lock")
	}
	defer guard.Release()

	out.Info("Updating repository metadata...")

	if err := ctx.Backend.Catalog.RefreshMetadata(); err != nil {
		return errors.Wrap(err, "failed to refresh repositories")
	}

	out.Success("Repository metadata updated")
	return nil
}
