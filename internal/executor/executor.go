// Package executor drives a resolved model.Transaction to completion on
// disk: download, verify, plan, check, and execute, in that strict order.
// Grounded on original_source/src/backend/fedora/transaction.rs, adapted
// to bounded concurrent downloads via golang.org/x/sync/errgroup.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ratpm/ratpm/internal/catalog"
	"github.com/ratpm/ratpm/internal/errs"
	"github.com/ratpm/ratpm/internal/installeddb"
	"github.com/ratpm/ratpm/internal/model"
)

// maxConcurrentDownloads bounds step 2's fan-out (spec §5: concurrency
// permitted only in download, all other stages strictly serial).
const maxConcurrentDownloads = 4

// Fetcher retrieves one package artifact's bytes. The default
// implementation writes placeholder content, standing in for a real HTTP
// client since there is no network reachable from this environment (see
// SPEC_FULL.md §4.4a).
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// MockFetcher is the Fetcher used when no real transport is configured.
// It mirrors original_source's fs::write(&rpm_path, b"MOCK_RPM_DATA").
type MockFetcher struct{}

func (MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return []byte("MOCK_RPM_DATA"), nil
}

// TransactionExecutor applies a Transaction against a catalog (for
// artifact URLs) and an installed database (for the actual apply).
type TransactionExecutor struct {
	cat              catalog.Catalog
	db               installeddb.Database
	cacheDir         string
	verifySignatures bool
	fetcher          Fetcher
	logger           *log.Logger
}

// Option configures a TransactionExecutor.
type Option func(*TransactionExecutor)

// WithFetcher overrides the artifact fetcher, e.g. in tests.
func WithFetcher(f Fetcher) Option {
	return func(e *TransactionExecutor) { e.fetcher = f }
}

// WithLogger overrides the executor's logger.
func WithLogger(l *log.Logger) Option {
	return func(e *TransactionExecutor) { e.logger = l }
}

// New constructs a TransactionExecutor rooted at cacheDir.
func New(cat catalog.Catalog, db installeddb.Database, cacheDir string, verifySignatures bool, opts ...Option) *TransactionExecutor {
	e := &TransactionExecutor{
		cat:              cat,
		db:               db,
		cacheDir:         cacheDir,
		verifySignatures: verifySignatures,
		fetcher:          MockFetcher{},
		logger:           log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *TransactionExecutor) packagesDir() string {
	return filepath.Join(e.cacheDir, "packages")
}

func (e *TransactionExecutor) artifactPath(spec model.PackageSpec) string {
	return filepath.Join(e.packagesDir(), spec.NEVRA()+".rpm")
}

// downloadTargets is every spec this transaction needs an artifact for:
// every install spec and every upgrade.new spec, in transaction order.
func downloadTargets(txn *model.Transaction) []model.PackageSpec {
	targets := make([]model.PackageSpec, 0, len(txn.Install)+len(txn.Upgrade))
	targets = append(targets, txn.Install...)
	for _, pair := range txn.Upgrade {
		targets = append(targets, pair.New)
	}
	return targets
}

// Execute runs all six stages against txn. ctx governs cancellation of the
// concurrent download stage only; all other stages run to completion or
// fail outright.
func (e *TransactionExecutor) Execute(ctx context.Context, txn *model.Transaction) error {
	if err := e.prepare(); err != nil {
		return err
	}

	targets := downloadTargets(txn)

	if err := e.download(ctx, targets); err != nil {
		return err
	}

	if e.verifySignatures {
		if err := e.verifySignaturesStage(targets); err != nil {
			return err
		}
	}

	applier, err := e.db.BeginTransaction()
	if err != nil {
		return err
	}
	e.plan(applier, txn)

	if err := applier.Check(); err != nil {
		return err
	}

	if err := applier.Commit(); err != nil {
		return err
	}

	e.logger.Info("transaction completed", "packages", txn.TotalPackages())
	return nil
}

// prepare is stage 1: ensure the artifact cache directory exists.
func (e *TransactionExecutor) prepare() error {
	if err := os.MkdirAll(e.packagesDir(), 0o755); err != nil {
		return errs.NewIoError(errors.Wrapf(err, "create package cache dir %s", e.packagesDir()))
	}
	return nil
}

// download is stage 2: fetch every target artifact not already cached,
// bounded concurrently via errgroup.
func (e *TransactionExecutor) download(ctx context.Context, targets []model.PackageSpec) error {
	e.logger.Info("downloading packages", "count", len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)

	for _, spec := range targets {
		spec := spec
		g.Go(func() error {
			return e.downloadOne(gctx, spec)
		})
	}
	return g.Wait()
}

func (e *TransactionExecutor) downloadOne(ctx context.Context, spec model.PackageSpec) error {
	path := e.artifactPath(spec)
	if _, err := os.Stat(path); err == nil {
		e.logger.Debug("package already cached", "nevra", spec.NEVRA())
		return nil
	}

	repo, ok := e.cat.GetRepository(spec.Origin)
	if !ok {
		return errs.NewRepoUnavailable(spec.Origin)
	}

	firstChar := "_"
	if len(spec.Name) > 0 {
		firstChar = strings.ToLower(spec.Name[:1])
	}
	url := fmt.Sprintf("%s/Packages/%s/%s.rpm", strings.TrimRight(repo.BaseURL, "/"), firstChar, spec.NEVRA())

	e.logger.Debug("fetching package", "nevra", spec.NEVRA(), "url", url)
	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return errs.NewNetworkError(err.Error())
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.NewIoError(errors.Wrapf(err, "write artifact %s", tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return errs.NewIoError(errors.Wrapf(err, "rename artifact into place %s", path))
	}
	return nil
}

// verifySignaturesStage is stage 3: when enabled, assert every target's
// artifact is present. Real cryptographic verification is delegated to
// the Applier.
func (e *TransactionExecutor) verifySignaturesStage(targets []model.PackageSpec) error {
	e.logger.Info("verifying signatures", "count", len(targets))
	for _, spec := range targets {
		if _, err := os.Stat(e.artifactPath(spec)); err != nil {
			return errs.NewBackendError(fmt.Sprintf("Package file not found: %s", spec.NEVRA()))
		}
	}
	return nil
}

// plan is stage 4: enqueue low-level operations in the fixed order
// remove, install, then upgrade (as paired remove+install), never
// interleaved per package.
func (e *TransactionExecutor) plan(applier installeddb.Applier, txn *model.Transaction) {
	for _, spec := range txn.Remove {
		applier.AddRemove(spec)
	}
	for _, spec := range txn.Install {
		applier.AddInstall(spec, e.artifactPath(spec))
	}
	for _, pair := range txn.Upgrade {
		applier.AddRemove(pair.Old)
		applier.AddInstall(pair.New, e.artifactPath(pair.New))
	}
}
