package cli

import (
	"flag"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/rtctx"
)

const defaultHistoryLimit = 20

type historyCommand struct {
	limit int
}

func (*historyCommand) Name() string      { return "history" }
func (*historyCommand) Args() string      { return "[-n N]" }
func (*historyCommand) ShortHelp() string { return "Show transaction history" }
func (*historyCommand) LongHelp() string  { return "Print the most recent N transaction-log entries." }

func (c *historyCommand) Register(fs *flag.FlagSet) {
	fs.IntVar(&c.limit, "n", defaultHistoryLimit, "number of entries to show")
}

func (c *historyCommand) Run(ctx *rtctx.Context, out *output.Printer, args []string) error {
	limit := c.limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := ctx.Backend.InstalledDB.GetTransactionHistory(limit)
	if err != nil {
		return errors.Wrap(err, "history failed")
	}

	if len(entries) == 0 {
		out.Info("No transaction history")
		return nil
	}

	out.History(entries)
	return nil
}
