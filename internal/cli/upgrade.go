package cli

import (
	"flag"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/model"
	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/resolver"
	"github.com/ratpm/ratpm/internal/rtctx"
)

type upgradeCommand struct{}

func (*upgradeCommand) Name() string      { return "upgrade" }
func (*upgradeCommand) Args() string      { return "[package...]" }
func (*upgradeCommand) ShortHelp() string { return "Upgrade installed packages" }
func (*upgradeCommand) LongHelp() string {
	return "Upgrade every installed package with a newer catalog version, or just the named ones."
}
func (*upgradeCommand) Register(*flag.FlagSet) {}

func (*upgradeCommand) Run(ctx *rtctx.Context, out *output.Printer, args []string) error {
	if err := ctx.RequireRoot(); err != nil {
		return errors.Wrap(err, "root privileges required for system upgrade")
	}

	guard, err := ctx.AcquireLock()
	if err != nil {
		return errors.Wrap(err, "failed to acquire package manager lock")
	}
	defer guard.Release()

	r := resolver.New(ctx.Backend.Catalog, ctx.Backend.InstalledDB)

	var txn *model.Transaction
	if len(args) > 0 {
		txn, err = r.ResolveUpgradePackages(args)
	} else {
		txn, err = r.ResolveUpgrade()
	}
	if err != nil {
		return errors.Wrap(err, "failed to resolve upgrade")
	}

	return runTransaction(ctx, out, txn, "Upgrade completed successfully")
}
