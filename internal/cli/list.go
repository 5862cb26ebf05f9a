package cli

import (
	"flag"
	"sort"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/model"
	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/rtctx"
)

type listCommand struct {
	installed bool
	available bool
}

func (*listCommand) Name() string      { return "list" }
func (*listCommand) Args() string      { return "[--installed] [--available]" }
func (*listCommand) ShortHelp() string { return "List packages" }
func (*listCommand) LongHelp() string {
	return "List packages. With neither flag, both installed and available packages are shown."
}

func (c *listCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&c.installed, "installed", false, "list only installed packages")
	fs.BoolVar(&c.available, "available", false, "list only available packages")
}

func (c *listCommand) Run(ctx *rtctx.Context, out *output.Printer, args []string) error {
	showInstalled := c.installed || !c.available
	showAvailable := c.available || !c.installed

	var results []model.Package
	if showInstalled {
		installed, err := ctx.Backend.InstalledDB.ListAll()
		if err != nil {
			return errors.Wrap(err, "list failed")
		}
		results = append(results, installed...)
	}
	if showAvailable {
		available, err := ctx.Backend.Catalog.ListAvailable()
		if err != nil {
			return errors.Wrap(err, "list failed")
		}
		results = append(results, available...)
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		return a.Architecture < b.Architecture
	})

	out.PackageList(results)
	return nil
}
