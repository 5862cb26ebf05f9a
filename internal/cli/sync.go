package cli

import (
	"flag"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/rtctx"
)

type syncCommand struct{}

func (*syncCommand) Name() string      { return "sync" }
func (*syncCommand) Args() string      { return "" }
func (*syncCommand) ShortHelp() string { return "Synchronize package databases" }
func (*syncCommand) LongHelp() string  { return "Refresh repository metadata and verify the installed database's integrity." }
func (*syncCommand) Register(*flag.FlagSet) {}

func (*syncCommand) Run(ctx *rtctx.Context, out *output.Printer, args []string) error {
	if err := ctx.RequireRoot(); err != nil {
		return errors.Wrap(err, "root privileges required for sync operation")
	}

	guard, err := ctx.AcquireLock()
	if err != nil {
		return errors.Wrap(err, "failed to acquire package manager lock")
	}
	defer guard.Release()

	out.Info("Synchronizing package databases...")

	if err := ctx.Backend.Catalog.RefreshMetadata(); err != nil {
		return errors.Wrap(err, "failed to synchronize databases")
	}
	if err := ctx.Backend.InstalledDB.VerifyIntegrity(); err != nil {
		return errors.Wrap(err, "failed to synchronize databases")
	}

	out.Success("Databases synchronized")
	return nil
}
