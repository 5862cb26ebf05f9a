package cli

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/rtctx"
)

type infoCommand struct{}

func (*infoCommand) Name() string      { return "info" }
func (*infoCommand) Args() string      { return "<package>" }
func (*infoCommand) ShortHelp() string { return "Show package information" }
func (*infoCommand) LongHelp() string  { return "Print the full catalog record for one package." }
func (*infoCommand) Register(*flag.FlagSet) {}

func (*infoCommand) Run(ctx *rtctx.Context, out *output.Printer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("info requires exactly one package argument")
	}

	pkg, err := ctx.Backend.Catalog.GetPackageInfo(args[0])
	if err != nil {
		return errors.Wrap(err, "info failed")
	}

	out.PackageInfo(pkg)
	return nil
}
