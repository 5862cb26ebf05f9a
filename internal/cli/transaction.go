package cli

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/executor"
	"github.com/ratpm/ratpm/internal/model"
	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/rtctx"
)

// runTransaction is the shared tail of install/remove/upgrade: print the
// summary, confirm, execute, report. Callers have already acquired the
// lock and resolved txn.
func runTransaction(ctx *rtctx.Context, out *output.Printer, txn *model.Transaction, successMessage string) error {
	if txn.IsEmpty() {
		out.Info("Nothing to do")
		return nil
	}

	out.TransactionSummary(txn)

	if !ctx.ConfirmTransaction() {
		out.Info("Operation cancelled")
		return nil
	}

	exec := executor.New(ctx.Backend.Catalog, ctx.Backend.InstalledDB, ctx.Config.System.CacheDir, ctx.Config.Transaction.VerifySignatures)
	if err := exec.Execute(context.Background(), txn); err != nil {
		return errors.Wrap(err, "transaction failed")
	}

	out.Success(successMessage)
	return nil
}
