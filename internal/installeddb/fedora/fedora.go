// Package fedora implements installeddb.Database against an in-memory
// seeded installed set plus whatever operations an Applier commits during
// the process's lifetime — there is no real RPM database to bind to in
// this environment. See SPEC_FULL.md §4.5a.
package fedora

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/errs"
	"github.com/ratpm/ratpm/internal/installeddb"
	"github.com/ratpm/ratpm/internal/model"
)

func seedInstalled() []model.PackageInfo {
	mk := func(name, version string, size uint64, summary string) model.PackageInfo {
		return model.PackageInfo{
			PackageSpec: model.PackageSpec{Name: name, Version: version, Architecture: "x86_64", Origin: model.SystemOrigin},
			Size:        size,
			Summary:     summary,
		}
	}
	return []model.PackageInfo{
		mk("bash", "5.2.21", 1_750_000, "The GNU Bourne Again shell"),
		mk("coreutils", "9.4", 5_900_000, "GNU core utilities"),
		mk("glibc", "2.38", 18_100_000, "The GNU libc libraries"),
	}
}

// reverseDepends is a static table of the installed consumers of a given
// package, used by resolve_remove's conflict scan. It is maintained
// separately from catalog/fedora's dependsOn table and is not derived
// from it.
var reverseDepends = map[string][]string{
	"glibc": {"bash", "coreutils"},
}

// Database is the fedora backend's installeddb.Database implementation.
type Database struct {
	dbDir string

	mu        sync.RWMutex
	installed map[string]model.PackageInfo
	history   []model.HistoryEntry
}

var _ installeddb.Database = (*Database)(nil)

// New constructs a Database rooted at dbDir (the "rpm database" stand-in
// directory; cmd/ratpm passes /var/lib/ratpm/installed), creating the
// directory and its Packages marker file if absent.
func New(dbDir string) (*Database, error) {
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, errs.NewIoError(errors.Wrapf(err, "create installed-db directory %s", dbDir))
	}
	marker, err := os.OpenFile(PackagesFile(dbDir), os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, errs.NewIoError(errors.Wrapf(err, "create Packages marker under %s", dbDir))
	}
	marker.Close()

	installed := map[string]model.PackageInfo{}
	for _, p := range seedInstalled() {
		installed[p.Name] = p
	}

	return &Database{
		dbDir:     dbDir,
		installed: installed,
		history: []model.HistoryEntry{
			{
				Seq:       1,
				ID:        uuid.NewString(),
				Timestamp: "2025-01-25 10:30:00",
				Command:   "ratpm install bash",
				Actions:   []string{"Installed bash-5.2.21.x86_64"},
			},
		},
	}, nil
}

// IsInstalled reports whether name is present in the installed set.
func (d *Database) IsInstalled(name string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.installed[name]
	return ok, nil
}

// GetPackageInfo returns the installed record for name.
func (d *Database) GetPackageInfo(name string) (model.PackageInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info, ok := d.installed[name]
	if !ok {
		return model.PackageInfo{}, errs.NewPackageNotFound(name)
	}
	return info, nil
}

// ListAll returns every installed package.
func (d *Database) ListAll() ([]model.Package, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.installed))
	for name := range d.installed {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]model.Package, 0, len(names))
	for _, name := range names {
		info := d.installed[name]
		out = append(out, model.Package{PackageSpec: info.PackageSpec, Summary: info.Summary})
	}
	return out, nil
}

// ReverseDependents returns the packages listed as depending on name in
// the static reverse-dependency table.
func (d *Database) ReverseDependents(name string) []string {
	return reverseDepends[name]
}

// VerifyIntegrity asserts the backing store exists: the database
// directory itself, and the Packages marker file within it (mirroring the
// real RPM database layout this backend stands in for).
func (d *Database) VerifyIntegrity() error {
	info, err := os.Stat(d.dbDir)
	if err != nil || !info.IsDir() {
		return errs.NewRpmDbError(fmt.Sprintf("RPM database does not exist at %s", d.dbDir))
	}
	if _, err := os.Stat(PackagesFile(d.dbDir)); err != nil {
		return errs.NewRpmDbError("RPM Packages database file is missing")
	}
	return nil
}

// GetTransactionHistory returns up to limit history entries, most recent
// first.
func (d *Database) GetTransactionHistory(limit int) ([]model.HistoryEntry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := len(d.history)
	if limit < n {
		n = limit
	}
	out := make([]model.HistoryEntry, n)
	for i := 0; i < n; i++ {
		out[i] = d.history[len(d.history)-1-i]
	}
	return out, nil
}

// BeginTransaction returns a fresh Applier bound to this database.
func (d *Database) BeginTransaction() (installeddb.Applier, error) {
	return &applier{db: d}, nil
}

func (d *Database) recordHistory(command string, actions []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = append(d.history, model.HistoryEntry{
		Seq:       len(d.history) + 1,
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format("2006-01-02 15:04:05"),
		Command:   command,
		Actions:   actions,
	})
}

type operation struct {
	isRemove bool
	spec     model.PackageSpec
	artifact string
}

// applier implements installeddb.Applier by staging install/remove
// operations and then, on Commit, applying them in order to the in-memory
// installed set and recording one history entry. No scriptlets are run.
type applier struct {
	db  *Database
	ops []operation
}

func (a *applier) AddInstall(spec model.PackageSpec, artifactPath string) {
	a.ops = append(a.ops, operation{spec: spec, artifact: artifactPath})
}

func (a *applier) AddRemove(spec model.PackageSpec) {
	a.ops = append(a.ops, operation{isRemove: true, spec: spec})
}

// Check verifies every install operation's artifact exists on disk. It
// performs no filesystem mutation.
func (a *applier) Check() error {
	for _, op := range a.ops {
		if op.isRemove {
			continue
		}
		if _, err := os.Stat(op.artifact); err != nil {
			return errs.NewTransactionCheckFailed(fmt.Sprintf("RPM file not found for %s", op.spec.NEVRA()))
		}
	}
	return nil
}

// Commit applies operations in order, stopping at the first failure.
func (a *applier) Commit() error {
	var actions []string
	for _, op := range a.ops {
		if op.isRemove {
			if err := a.db.removePackage(op.spec); err != nil {
				return errs.NewTransactionFailed(fmt.Sprintf("%s: %s", op.spec.NEVRA(), err))
			}
			actions = append(actions, "Removed "+op.spec.NEVRA())
			continue
		}
		if err := a.db.installPackage(op.spec, op.artifact); err != nil {
			return errs.NewTransactionFailed(fmt.Sprintf("%s: %s", op.spec.NEVRA(), err))
		}
		actions = append(actions, "Installed "+op.spec.NEVRA())
	}
	a.db.recordHistory("ratpm transaction", actions)
	return nil
}

func (d *Database) installPackage(spec model.PackageSpec, artifactPath string) error {
	if _, err := os.Stat(artifactPath); err != nil {
		return fmt.Errorf("RPM file does not exist: %s", artifactPath)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.installed[spec.Name] = model.PackageInfo{PackageSpec: model.PackageSpec{
		Name: spec.Name, Version: spec.Version, Architecture: spec.Architecture, Origin: model.SystemOrigin,
	}}
	return nil
}

func (d *Database) removePackage(spec model.PackageSpec) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.installed, spec.Name)
	return nil
}

// PackagesFile returns the marker file path beneath dbDir standing in for
// /var/lib/rpm/Packages.
func PackagesFile(dbDir string) string {
	return filepath.Join(dbDir, "Packages")
}
