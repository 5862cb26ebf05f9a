package cli

import (
	"flag"

	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/model"
	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/rtctx"
)

type doctorCommand struct{}

func (*doctorCommand) Name() string      { return "doctor" }
func (*doctorCommand) Args() string      { return "" }
func (*doctorCommand) ShortHelp() string { return "Run system diagnostics" }
func (*doctorCommand) LongHelp() string  { return "Report catalog and installed-database health findings." }
func (*doctorCommand) Register(*flag.FlagSet) {}

func (*doctorCommand) Run(ctx *rtctx.Context, out *output.Printer, args []string) error {
	out.Info("Running system diagnostics...")

	issues, err := ctx.Backend.Catalog.CheckHealth()
	if err != nil {
		return errors.Wrap(err, "diagnostics failed")
	}

	if err := ctx.Backend.InstalledDB.VerifyIntegrity(); err != nil {
		issues = append(issues, model.DiagnosticIssue{
			Severity: "error",
			Message:  err.Error(),
		})
	}

	if len(issues) == 0 {
		out.Success("No issues found")
		return nil
	}

	out.DiagnosticIssues(issues)
	return nil
}
