// Package fedora implements catalog.Catalog against a directory of .repo
// files plus an in-memory seed table standing in for real repository
// metadata (primary.xml/sqlite) — there is no network mirror to query in
// this environment. See SPEC_FULL.md §4.4a.
package fedora

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/catalog"
	"github.com/ratpm/ratpm/internal/errs"
	"github.com/ratpm/ratpm/internal/model"
	"github.com/ratpm/ratpm/internal/vercmp"
)

// seedEntry is one package available from a named repository.
type seedEntry struct {
	repo string
	info model.PackageInfo
}

// defaultSeed mirrors the small sample catalog the Rust prototype this was
// distilled from used (backend/fedora/repos.rs), extended with per-package
// sizes/metadata so the resolver and executor have real numbers to
// account against.
func defaultSeed() []seedEntry {
	mk := func(repo, name, version, summary string, size uint64, deps ...string) seedEntry {
		return seedEntry{
			repo: repo,
			info: model.PackageInfo{
				PackageSpec: model.PackageSpec{Name: name, Version: version, Architecture: "x86_64", Origin: repo},
				Size:        size,
				Summary:     summary,
				Description: summary,
				License:     "GPLv2+",
			},
		}
	}
	return []seedEntry{
		mk("fedora", "vim", "9.0.2190", "The improved version of the vi editor", 5_000_000),
		mk("fedora", "neovim", "0.9.5", "Vim-fork focused on extensibility and usability", 7_200_000),
		mk("fedora", "emacs", "29.1", "GNU Emacs text editor", 42_000_000),
		mk("fedora", "bash", "5.2.26", "The GNU Bourne Again shell", 1_800_000),
		mk("fedora", "coreutils", "9.5", "GNU core utilities", 6_100_000),
		mk("fedora", "glibc", "2.39", "The GNU libc libraries", 18_400_000),
		mk("updates", "vim", "9.1.0", "The improved version of the vi editor", 5_100_000),
		mk("updates", "openssl", "3.2.2", "Utilities from the general purpose cryptography library", 3_300_000),
	}
}

// dependsOn is a tiny static dependency table: package -> direct deps. A
// real backend would derive this from RPM Requires/Provides metadata.
var dependsOn = map[string][]string{
	"neovim": {"glibc"},
	"vim":    {"glibc"},
	"emacs":  {"glibc"},
}

// Catalog is the fedora backend's catalog.Catalog implementation.
type Catalog struct {
	repoDir        string
	cacheDir       string
	globalGPGCheck bool

	mu    sync.RWMutex
	repos map[string]model.RepositoryMetadata
	warn  map[string]string
	seed  []seedEntry
}

var _ catalog.Catalog = (*Catalog)(nil)

// New constructs a Catalog and performs the initial repo-directory load.
// Parse failures for individual files are non-fatal (spec §7): they are
// logged as warnings and the rest of the directory is still loaded.
func New(repoDir, cacheDir string, globalGPGCheck bool) (*Catalog, error) {
	c := &Catalog{
		repoDir:        repoDir,
		cacheDir:       cacheDir,
		globalGPGCheck: globalGPGCheck,
		repos:          map[string]model.RepositoryMetadata{},
		warn:           map[string]string{},
		seed:           defaultSeed(),
	}
	if err := c.loadRepositories(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) loadRepositories() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.repoDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errs.NewIoError(errors.Wrapf(err, "read repo directory %s", c.repoDir))
	}

	repos := map[string]model.RepositoryMetadata{}
	warn := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".repo") {
			continue
		}
		path := filepath.Join(c.repoDir, entry.Name())
		parsed, err := catalog.ParseRepoFile(path, c.globalGPGCheck)
		if err != nil {
			// Non-fatal: this file is skipped, the rest of the directory
			// continues to load (spec §7).
			log.Warn("skipping unreadable repo file", "path", path, "err", err)
			continue
		}
		for _, p := range parsed {
			if p.Dropped {
				continue
			}
			repos[p.Metadata.Name] = p.Metadata
			if p.Warning != "" {
				warn[p.Metadata.Name] = p.Warning
			}
		}
	}

	c.repos = repos
	c.warn = warn
	return nil
}

// Search performs a case-insensitive substring match on name or summary.
func (c *Catalog) Search(query string) ([]model.Package, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q := strings.ToLower(query)
	var results []model.Package
	for _, e := range c.seed {
		if _, ok := c.repos[e.repo]; !ok {
			continue
		}
		if strings.Contains(strings.ToLower(e.info.Name), q) || strings.Contains(strings.ToLower(e.info.Summary), q) {
			results = append(results, model.Package{PackageSpec: e.info.PackageSpec, Summary: e.info.Summary})
		}
	}
	return sortAndDedupe(results), nil
}

// GetPackageInfo returns the full record for name, preferring the
// highest-versioned entry across enabled repositories.
func (c *Catalog) GetPackageInfo(name string) (model.PackageInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var best *model.PackageInfo
	for i := range c.seed {
		e := c.seed[i]
		if e.info.Name != name {
			continue
		}
		if _, ok := c.repos[e.repo]; !ok {
			continue
		}
		if best == nil || vercmp.Greater(e.info.Version, best.Version) {
			info := e.info
			best = &info
		}
	}
	if best == nil {
		return model.PackageInfo{}, errs.NewPackageNotFound(name)
	}
	return *best, nil
}

// ListAvailable returns every package visible across enabled repositories.
func (c *Catalog) ListAvailable() ([]model.Package, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var results []model.Package
	for _, e := range c.seed {
		if _, ok := c.repos[e.repo]; !ok {
			continue
		}
		results = append(results, model.Package{PackageSpec: e.info.PackageSpec, Summary: e.info.Summary})
	}
	return sortAndDedupe(results), nil
}

// RefreshMetadata re-reads the repo directory and stamps a last-refresh
// marker file per enabled repository.
func (c *Catalog) RefreshMetadata() error {
	if err := c.loadRepositories(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().Unix()
	for name, repo := range c.repos {
		dir := filepath.Join(c.cacheDir, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.NewIoError(errors.Wrapf(err, "create cache dir for repo %s", name))
		}
		marker := filepath.Join(dir, "last-refresh")
		if err := os.WriteFile(marker, []byte(time.Now().UTC().Format(time.RFC3339)), 0o644); err != nil {
			return errs.NewIoError(errors.Wrapf(err, "stamp refresh marker for repo %s", name))
		}
		repo.LastRefresh = &now
		c.repos[name] = repo
	}
	return nil
}

// GetRepository returns the loaded metadata for a named repository.
func (c *Catalog) GetRepository(name string) (model.RepositoryMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.repos[name]
	return r, ok
}

// CheckHealth reports one warning per enabled repository with no cached
// metadata, plus any load-time warnings (e.g. metalink-only repos).
func (c *Catalog) CheckHealth() ([]model.DiagnosticIssue, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var issues []model.DiagnosticIssue
	names := make([]string, 0, len(c.repos))
	for name := range c.repos {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		repo := c.repos[name]
		marker := filepath.Join(c.cacheDir, name, "last-refresh")
		if _, err := os.Stat(marker); os.IsNotExist(err) {
			issues = append(issues, model.DiagnosticIssue{
				Severity:   "warning",
				Message:    "repository '" + name + "' has no cached metadata",
				Suggestion: "run 'ratpm sync' to refresh repository metadata",
			})
		}
		if w, ok := c.warn[name]; ok {
			issues = append(issues, model.DiagnosticIssue{Severity: "warning", Message: w})
		}
		_ = repo
	}
	return issues, nil
}

// DependenciesOf returns the direct dependency names of a catalog package.
func (c *Catalog) DependenciesOf(name string) []string {
	return dependsOn[name]
}

func sortAndDedupe(pkgs []model.Package) []model.Package {
	sort.Slice(pkgs, func(i, j int) bool {
		a, b := pkgs[i], pkgs[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		return a.Architecture < b.Architecture
	})

	var out []model.Package
	for _, p := range pkgs {
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.Name == p.Name && last.Version == p.Version && last.Architecture == p.Architecture {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
