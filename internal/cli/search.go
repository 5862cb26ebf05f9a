package cli

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/rtctx"
)

type searchCommand struct{}

func (*searchCommand) Name() string      { return "search" }
func (*searchCommand) Args() string      { return "<query>" }
func (*searchCommand) ShortHelp() string { return "Search for packages" }
func (*searchCommand) LongHelp() string  { return "Case-insensitive substring search over name and summary." }
func (*searchCommand) Register(*flag.FlagSet) {}

func (*searchCommand) Run(ctx *rtctx.Context, out *output.Printer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("search requires exactly one query argument")
	}
	query := args[0]

	results, err := ctx.Backend.Catalog.Search(query)
	if err != nil {
		return errors.Wrap(err, "search failed")
	}

	if len(results) == 0 {
		out.Info(fmt.Sprintf("No packages found matching '%s'", query))
		return nil
	}

	out.PackageList(results)
	return nil
}
