package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/ratpm/ratpm/internal/model"
)

func newTestPrinter() (*Printer, *strings.Builder) {
	var buf strings.Builder
	logger := log.New(&buf)
	return New(&buf, logger, false), &buf
}

func TestTransactionSummaryInstall(t *testing.T) {
	p, buf := newTestPrinter()
	txn := model.New()
	txn.AddInstall(model.PackageSpec{Name: "vim", Version: "9.0.0", Architecture: "x86_64", Origin: "fedora"}, 5_000_000)

	p.TransactionSummary(txn)

	out := buf.String()
	assert.Contains(t, out, "Installing:")
	assert.Contains(t, out, "vim-9.0.0.x86_64")
	assert.Contains(t, out, "Install:  1 packages")
	assert.Contains(t, out, "Disk space required:")
}

func TestTransactionSummaryRemoveShowsFreedSpace(t *testing.T) {
	p, buf := newTestPrinter()
	txn := model.New()
	txn.AddRemove(model.PackageSpec{Name: "vim", Version: "9.0.0", Architecture: "x86_64"}, 5_000_000)

	p.TransactionSummary(txn)

	assert.Contains(t, buf.String(), "Disk space freed:")
}

func TestPackageListShowsSummary(t *testing.T) {
	p, buf := newTestPrinter()
	p.PackageList([]model.Package{
		{PackageSpec: model.PackageSpec{Name: "vim", Version: "9.0.0", Architecture: "x86_64"}, Summary: "editor"},
	})

	out := buf.String()
	assert.Contains(t, out, "vim-9.0.0.x86_64")
	assert.Contains(t, out, "editor")
}

func TestDiagnosticIssuesRenderSeverity(t *testing.T) {
	p, buf := newTestPrinter()
	p.DiagnosticIssues([]model.DiagnosticIssue{
		{Severity: "warning", Message: "no cached metadata", Suggestion: "run sync"},
	})

	out := buf.String()
	assert.Contains(t, out, "[WARNING]")
	assert.Contains(t, out, "no cached metadata")
	assert.Contains(t, out, "Suggestion: run sync")
}

func TestHistoryRendersActions(t *testing.T) {
	p, buf := newTestPrinter()
	p.History([]model.HistoryEntry{
		{ID: "abc", Timestamp: "2026-01-01 00:00:00", Command: "ratpm install vim", Actions: []string{"Installed vim-9.0.0.x86_64"}},
	})

	out := buf.String()
	assert.Contains(t, out, "ID abc")
	assert.Contains(t, out, "ratpm install vim")
	assert.Contains(t, out, "Installed vim-9.0.0.x86_64")
}
