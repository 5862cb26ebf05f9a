// Package output renders transaction summaries, package listings, and
// diagnostics to the terminal. Grounded on
// original_source/src/cli/output.rs, using charmbracelet/log for leveled
// messages and dustin/go-humanize for byte-size formatting in place of the
// original's hand-rolled format_size.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/ratpm/ratpm/internal/model"
)

// Printer renders output to a pair of streams, honoring a color policy
// for the bits that use ANSI styling directly (transaction/listing
// output); Info/Error/Warning go through a charmbracelet/log.Logger,
// which handles its own color detection.
type Printer struct {
	out    io.Writer
	logger *log.Logger
	color  bool
}

// New constructs a Printer writing to out, logging through logger, with
// color controlled independently of the logger's own styling: color
// switches only the ANSI styling this Printer applies itself; it does not
// change the logger's styling, which follows the logger's own terminal
// detection.
func New(out io.Writer, logger *log.Logger, color bool) *Printer {
	return &Printer{out: out, logger: logger, color: color}
}

func (p *Printer) Info(message string)    { p.logger.Info(message) }
func (p *Printer) Success(message string) { p.logger.Info(message) }
func (p *Printer) Error(message string)   { p.logger.Error(message) }
func (p *Printer) Warning(message string) { p.logger.Warn(message) }

const (
	colorReset  = "\x1b[0m"
	colorGreen  = "\x1b[32m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
	colorBold   = "\x1b[1m"
)

func (p *Printer) styled(code, text string) string {
	if !p.color {
		return text
	}
	return code + text + colorReset
}

func formatSize(bytes uint64) string {
	return humanize.Bytes(bytes)
}

// TransactionSummary renders an install/remove/upgrade breakdown plus the
// aggregate download/disk-space accounting.
func (p *Printer) TransactionSummary(txn *model.Transaction) {
	if len(txn.Install) > 0 {
		fmt.Fprintln(p.out, p.styled(colorBold+colorGreen, "Installing:"))
		for _, pkg := range txn.Install {
			fmt.Fprintf(p.out, "  %s\n", pkg.NEVRA())
		}
		fmt.Fprintln(p.out)
	}

	if len(txn.Remove) > 0 {
		fmt.Fprintln(p.out, p.styled(colorBold+colorRed, "Removing:"))
		for _, pkg := range txn.Remove {
			fmt.Fprintf(p.out, "  %s\n", pkg.NEVRA())
		}
		fmt.Fprintln(p.out)
	}

	if len(txn.Upgrade) > 0 {
		fmt.Fprintln(p.out, p.styled(colorBold+colorBlue, "Upgrading:"))
		for _, pair := range txn.Upgrade {
			fmt.Fprintf(p.out, "  %s: %s.%s -> %s.%s\n",
				pair.Old.Name, pair.Old.Version, pair.Old.Architecture, pair.New.Version, pair.New.Architecture)
		}
		fmt.Fprintln(p.out)
	}

	fmt.Fprintln(p.out, "Transaction Summary:")
	fmt.Fprintf(p.out, "  Install:  %d packages\n", len(txn.Install))
	fmt.Fprintf(p.out, "  Remove:   %d packages\n", len(txn.Remove))
	fmt.Fprintf(p.out, "  Upgrade:  %d packages\n", len(txn.Upgrade))
	fmt.Fprintf(p.out, "  Download: %s\n", formatSize(txn.DownloadSize))

	switch {
	case txn.InstallSize > 0:
		fmt.Fprintf(p.out, "  Disk space required: %s\n", formatSize(uint64(txn.InstallSize)))
	case txn.InstallSize < 0:
		fmt.Fprintf(p.out, "  Disk space freed: %s\n", formatSize(uint64(-txn.InstallSize)))
	}
	fmt.Fprintln(p.out)
}

// PackageList renders search/list results.
func (p *Printer) PackageList(packages []model.Package) {
	for _, pkg := range packages {
		fmt.Fprintf(p.out, "%s-%s.%s\n", p.styled(colorBold, pkg.Name), pkg.Version, pkg.Architecture)
		if pkg.Summary != "" {
			fmt.Fprintf(p.out, "  %s\n", pkg.Summary)
		}
	}
}

// PackageInfo renders the full detail record for one package.
func (p *Printer) PackageInfo(info model.PackageInfo) {
	field := func(label, value string) {
		fmt.Fprintf(p.out, "%s: %s\n", p.styled(colorBold, fmt.Sprintf("%-12s", label)), value)
	}

	field("Name", info.Name)
	field("Version", info.Version)
	field("Arch", info.Architecture)
	field("Repository", info.Origin)
	field("Size", formatSize(info.Size))
	field("Summary", info.Summary)

	if info.Description != "" {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, "Description:")
		fmt.Fprintln(p.out, info.Description)
	}
	if info.URL != "" {
		fmt.Fprintln(p.out)
		field("URL", info.URL)
	}
	if info.License != "" {
		field("License", info.License)
	}
}

// DiagnosticIssues renders doctor's findings.
func (p *Printer) DiagnosticIssues(issues []model.DiagnosticIssue) {
	for _, issue := range issues {
		code := colorBlue
		switch issue.Severity {
		case "error":
			code = colorRed
		case "warning":
			code = colorYellow
		}
		fmt.Fprintf(p.out, "%s %s\n", p.styled(colorBold+code, "["+strings.ToUpper(issue.Severity)+"]"), issue.Message)
		if issue.Suggestion != "" {
			fmt.Fprintf(p.out, "  Suggestion: %s\n", issue.Suggestion)
		}
		fmt.Fprintln(p.out)
	}
}

// History renders transaction-log entries, most-recent-first as supplied.
func (p *Printer) History(entries []model.HistoryEntry) {
	for _, entry := range entries {
		fmt.Fprintf(p.out, "%s | %s | %s\n", p.styled(colorBold, "ID "+entry.ID), entry.Timestamp, entry.Command)
		for _, action := range entry.Actions {
			fmt.Fprintf(p.out, "  %s\n", action)
		}
	}
}
