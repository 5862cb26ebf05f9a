package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratpm/ratpm/internal/errs"
	"github.com/ratpm/ratpm/internal/installeddb"
	"github.com/ratpm/ratpm/internal/model"
)

// fakeCatalog and fakeDB are minimal in-package test doubles; the real
// backends live in internal/catalog/fedora and internal/installeddb/fedora
// and are exercised by their own package tests.

type fakeCatalog struct {
	pkgs map[string]model.PackageInfo
	deps map[string][]string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{pkgs: map[string]model.PackageInfo{}, deps: map[string][]string{}}
}

func (c *fakeCatalog) add(name, version string, size uint64, deps ...string) {
	c.pkgs[name] = model.PackageInfo{
		PackageSpec: model.PackageSpec{Name: name, Version: version, Architecture: "x86_64", Origin: "fedora"},
		Size:        size,
	}
	if len(deps) > 0 {
		c.deps[name] = deps
	}
}

func (c *fakeCatalog) Search(string) ([]model.Package, error) { return nil, nil }

func (c *fakeCatalog) GetPackageInfo(name string) (model.PackageInfo, error) {
	info, ok := c.pkgs[name]
	if !ok {
		return model.PackageInfo{}, errs.NewPackageNotFound(name)
	}
	return info, nil
}

func (c *fakeCatalog) ListAvailable() ([]model.Package, error)                  { return nil, nil }
func (c *fakeCatalog) RefreshMetadata() error                                   { return nil }
func (c *fakeCatalog) GetRepository(string) (model.RepositoryMetadata, bool)    { return model.RepositoryMetadata{}, false }
func (c *fakeCatalog) CheckHealth() ([]model.DiagnosticIssue, error)            { return nil, nil }
func (c *fakeCatalog) DependenciesOf(name string) []string                     { return c.deps[name] }

type fakeDB struct {
	installed map[string]model.PackageInfo
	reverse   map[string][]string
}

func newFakeDB() *fakeDB {
	return &fakeDB{installed: map[string]model.PackageInfo{}, reverse: map[string][]string{}}
}

func (d *fakeDB) add(name, version string, size uint64) {
	d.installed[name] = model.PackageInfo{
		PackageSpec: model.PackageSpec{Name: name, Version: version, Architecture: "x86_64", Origin: model.SystemOrigin},
		Size:        size,
	}
}

func (d *fakeDB) IsInstalled(name string) (bool, error) {
	_, ok := d.installed[name]
	return ok, nil
}

func (d *fakeDB) GetPackageInfo(name string) (model.PackageInfo, error) {
	info, ok := d.installed[name]
	if !ok {
		return model.PackageInfo{}, errs.NewPackageNotFound(name)
	}
	return info, nil
}

func (d *fakeDB) ListAll() ([]model.Package, error) {
	var out []model.Package
	for _, p := range d.installed {
		out = append(out, model.Package{PackageSpec: p.PackageSpec, Summary: p.Summary})
	}
	return out, nil
}

func (d *fakeDB) VerifyIntegrity() error { return nil }

func (d *fakeDB) GetTransactionHistory(int) ([]model.HistoryEntry, error) { return nil, nil }

func (d *fakeDB) BeginTransaction() (installeddb.Applier, error) { return nil, nil }

func (d *fakeDB) ReverseDependents(name string) []string { return d.reverse[name] }

func TestResolveInstallSimple(t *testing.T) {
	cat := newFakeCatalog()
	cat.add("vim", "9.0.0", 5_000_000)
	db := newFakeDB()

	r := New(cat, db)
	txn, err := r.ResolveInstall([]string{"vim"})
	require.NoError(t, err)

	assert.Equal(t, 1, txn.TotalPackages())
	assert.EqualValues(t, 5_000_000, txn.DownloadSize)
	assert.EqualValues(t, 5_000_000, txn.InstallSize)
	assert.False(t, txn.IsEmpty())
}

func TestResolveInstallNotFound(t *testing.T) {
	r := New(newFakeCatalog(), newFakeDB())
	_, err := r.ResolveInstall([]string{"nonexistent"})
	require.Error(t, err)
	assert.Equal(t, errs.PackageNotFound, err.(*errs.Error).Kind)
}

func TestResolveInstallAlreadyInstalled(t *testing.T) {
	cat := newFakeCatalog()
	cat.add("vim", "9.0.0", 5_000_000)
	db := newFakeDB()
	db.add("vim", "8.2.0", 4_500_000)

	r := New(cat, db)
	_, err := r.ResolveInstall([]string{"vim"})
	require.Error(t, err)
	assert.Equal(t, errs.PackageAlreadyInstalled, err.(*errs.Error).Kind)
}

func TestResolveInstallPullsTransitiveDeps(t *testing.T) {
	cat := newFakeCatalog()
	cat.add("neovim", "0.9.5", 7_200_000, "glibc")
	cat.add("glibc", "2.39", 18_400_000)
	db := newFakeDB()

	r := New(cat, db)
	txn, err := r.ResolveInstall([]string{"neovim"})
	require.NoError(t, err)

	assert.Len(t, txn.Install, 2)
	names := []string{txn.Install[0].Name, txn.Install[1].Name}
	assert.ElementsMatch(t, []string{"neovim", "glibc"}, names)
}

func TestResolveInstallSkipsAlreadyInstalledDeps(t *testing.T) {
	cat := newFakeCatalog()
	cat.add("neovim", "0.9.5", 7_200_000, "glibc")
	cat.add("glibc", "2.39", 18_400_000)
	db := newFakeDB()
	db.add("glibc", "2.39", 18_400_000)

	r := New(cat, db)
	txn, err := r.ResolveInstall([]string{"neovim"})
	require.NoError(t, err)
	require.Len(t, txn.Install, 1)
	assert.Equal(t, "neovim", txn.Install[0].Name)
}

func TestResolveRemoveSimple(t *testing.T) {
	db := newFakeDB()
	db.add("vim", "9.0.0", 5_000_000)
	r := New(newFakeCatalog(), db)

	txn, err := r.ResolveRemove([]string{"vim"})
	require.NoError(t, err)
	assert.Len(t, txn.Remove, 1)
	assert.EqualValues(t, -5_000_000, txn.InstallSize)
}

func TestResolveRemoveNotInstalled(t *testing.T) {
	r := New(newFakeCatalog(), newFakeDB())
	_, err := r.ResolveRemove([]string{"vim"})
	require.Error(t, err)
	assert.Equal(t, errs.PackageNotInstalled, err.(*errs.Error).Kind)
}

func TestResolveRemoveConflict(t *testing.T) {
	db := newFakeDB()
	db.add("glibc", "2.39", 18_400_000)
	db.add("bash", "5.2.26", 1_800_000)
	db.reverse["glibc"] = []string{"bash"}

	r := New(newFakeCatalog(), db)
	_, err := r.ResolveRemove([]string{"glibc"})
	require.Error(t, err)
	rerr := err.(*errs.Error)
	assert.Equal(t, errs.DependencyConflict, rerr.Kind)
	assert.Contains(t, rerr.Message, "bash")
}

func TestResolveRemoveConflictOmittedWhenDependentAlsoRemoved(t *testing.T) {
	db := newFakeDB()
	db.add("glibc", "2.39", 18_400_000)
	db.add("bash", "5.2.26", 1_800_000)
	db.reverse["glibc"] = []string{"bash"}

	r := New(newFakeCatalog(), db)
	txn, err := r.ResolveRemove([]string{"bash", "glibc"})
	require.NoError(t, err)
	assert.Len(t, txn.Remove, 2)
}

func TestResolveUpgradeOnlyStrictlyNewer(t *testing.T) {
	cat := newFakeCatalog()
	cat.add("vim", "9.1.0", 5_100_000)
	cat.add("bash", "5.2.26", 1_800_000)
	db := newFakeDB()
	db.add("vim", "9.0.0", 5_000_000)
	db.add("bash", "5.2.26", 1_800_000)

	r := New(cat, db)
	txn, err := r.ResolveUpgrade()
	require.NoError(t, err)
	require.Len(t, txn.Upgrade, 1)
	assert.Equal(t, "vim", txn.Upgrade[0].New.Name)
	assert.EqualValues(t, 100_000, txn.InstallSize)
}

func TestResolveUpgradeNoNewerIsEmptyNoOp(t *testing.T) {
	cat := newFakeCatalog()
	cat.add("bash", "5.2.26", 1_800_000)
	db := newFakeDB()
	db.add("bash", "5.2.26", 1_800_000)

	r := New(cat, db)
	txn, err := r.ResolveUpgrade()
	require.NoError(t, err)
	assert.True(t, txn.IsEmpty())
}

func TestResolveUpgradePackagesUnknownNameFails(t *testing.T) {
	r := New(newFakeCatalog(), newFakeDB())
	_, err := r.ResolveUpgradePackages([]string{"vim"})
	require.Error(t, err)
	assert.Equal(t, errs.PackageNotInstalled, err.(*errs.Error).Kind)
}

func TestDependencyGraphTopologicalSort(t *testing.T) {
	g := NewDependencyGraph()
	g.AddPackage(model.PackageSpec{Name: "neovim"})
	g.AddPackage(model.PackageSpec{Name: "glibc"})
	g.AddDependency("neovim", "glibc")

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, "glibc", order[0].Name)
	assert.Equal(t, "neovim", order[1].Name)
}

func TestDependencyGraphDetectsCycle(t *testing.T) {
	g := NewDependencyGraph()
	g.AddPackage(model.PackageSpec{Name: "a"})
	g.AddPackage(model.PackageSpec{Name: "b"})
	g.AddPackage(model.PackageSpec{Name: "c"})
	g.AddDependency("a", "b")
	g.AddDependency("b", "c")
	g.AddDependency("c", "a")

	_, err := g.TopologicalSort()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Circular dependency detected")
}

func TestDependencyGraphFindConflicts(t *testing.T) {
	g := NewDependencyGraph()
	g.AddPackage(model.PackageSpec{Name: "vim", Version: "9.0.0"})
	g.AddPackage(model.PackageSpec{Name: "vim", Version: "9.1.0"})

	conflicts := g.FindConflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, "vim", conflicts[0].A.Name)
}

func TestDependencyGraphNoConflictsForSameVersion(t *testing.T) {
	g := NewDependencyGraph()
	g.AddPackage(model.PackageSpec{Name: "vim", Version: "9.0.0"})
	g.AddPackage(model.PackageSpec{Name: "vim", Version: "9.0.0"})

	assert.Empty(t, g.FindConflicts())
}
