// Package resolver builds a resolved model.Transaction from a user request
// against the active catalog and installed database. Its algorithmic
// contract (spec §4.2) is stated abstractly enough that this
// transitive-closure implementation is one of several valid strategies;
// the core only depends on the contract, not this strategy.
package resolver

import (
	"strings"

	"github.com/ratpm/ratpm/internal/catalog"
	"github.com/ratpm/ratpm/internal/errs"
	"github.com/ratpm/ratpm/internal/installeddb"
	"github.com/ratpm/ratpm/internal/model"
	"github.com/ratpm/ratpm/internal/vercmp"
)

// DependencyProvider exposes direct dependency names for a catalog
// package. The fedora catalog backend implements this in addition to
// catalog.Catalog; it is kept as a separate, narrower interface so the
// resolver does not depend on backend-specific surface beyond what it
// needs.
type DependencyProvider interface {
	DependenciesOf(name string) []string
}

// ReverseDependentProvider exposes, for an installed package, the other
// installed packages that depend on it.
type ReverseDependentProvider interface {
	ReverseDependents(name string) []string
}

// Resolver builds Transactions from a catalog and an installed database.
type Resolver struct {
	cat catalog.Catalog
	db  installeddb.Database
}

// New constructs a Resolver bound to the given catalog and installed
// database.
func New(cat catalog.Catalog, db installeddb.Database) *Resolver {
	return &Resolver{cat: cat, db: db}
}

// ResolveInstall builds a Transaction that installs every named package
// plus the transitive closure of its not-yet-staged, not-already-installed
// dependencies.
func (r *Resolver) ResolveInstall(names []string) (*model.Transaction, error) {
	txn := model.New()
	staged := map[string]bool{}

	for _, name := range names {
		info, err := r.cat.GetPackageInfo(name)
		if err != nil {
			return nil, err
		}
		if installed, err := r.db.IsInstalled(name); err != nil {
			return nil, err
		} else if installed {
			return nil, errs.NewPackageAlreadyInstalled(name)
		}
		if staged[name] {
			continue
		}
		txn.AddInstall(info.PackageSpec, info.Size)
		staged[name] = true

		if err := r.addDependencyClosure(txn, staged, name); err != nil {
			return nil, err
		}
	}
	return txn, nil
}

// addDependencyClosure walks the transitive dependency set of name,
// adding to txn every dependency that is neither already installed nor
// already staged in this transaction. Deduplication is by package name via
// the staged set.
func (r *Resolver) addDependencyClosure(txn *model.Transaction, staged map[string]bool, name string) error {
	provider, ok := r.cat.(DependencyProvider)
	if !ok {
		return nil
	}

	queue := provider.DependenciesOf(name)
	for len(queue) > 0 {
		dep := queue[0]
		queue = queue[1:]

		if staged[dep] {
			continue
		}
		installed, err := r.db.IsInstalled(dep)
		if err != nil {
			return err
		}
		if installed {
			continue
		}
		info, err := r.cat.GetPackageInfo(dep)
		if err != nil {
			return err
		}
		txn.AddInstall(info.PackageSpec, info.Size)
		staged[dep] = true

		queue = append(queue, provider.DependenciesOf(dep)...)
	}
	return nil
}

// ResolveRemove builds a Transaction that removes every named package,
// failing fast with DependencyConflict if any has an installed reverse
// dependent that is not itself in the removal set.
func (r *Resolver) ResolveRemove(names []string) (*model.Transaction, error) {
	txn := model.New()
	requested := map[string]bool{}
	for _, name := range names {
		requested[name] = true
	}

	provider, hasReverse := r.db.(ReverseDependentProvider)

	for _, name := range names {
		installed, err := r.db.IsInstalled(name)
		if err != nil {
			return nil, err
		}
		if !installed {
			return nil, errs.NewPackageNotInstalled(name)
		}

		if hasReverse {
			var blocking []string
			for _, dependent := range provider.ReverseDependents(name) {
				if requested[dependent] {
					continue
				}
				if installed, err := r.db.IsInstalled(dependent); err == nil && installed {
					blocking = append(blocking, dependent)
				}
			}
			if len(blocking) > 0 {
				return nil, errs.NewDependencyConflict(
					"'" + name + "' is required by: " + strings.Join(blocking, ", "))
			}
		}

		info, err := r.db.GetPackageInfo(name)
		if err != nil {
			return nil, err
		}
		txn.AddRemove(info.PackageSpec, info.Size)
	}
	return txn, nil
}

// ResolveUpgrade builds a Transaction upgrading every installed package
// whose catalog version strictly exceeds its installed version.
func (r *Resolver) ResolveUpgrade() (*model.Transaction, error) {
	installed, err := r.db.ListAll()
	if err != nil {
		return nil, err
	}

	txn := model.New()
	for _, pkg := range installed {
		if err := r.addUpgradeIfNewer(txn, pkg.Name); err != nil {
			if e, ok := err.(*errs.Error); ok && e.Kind == errs.PackageNotFound {
				continue
			}
			return nil, err
		}
	}
	return txn, nil
}

// ResolveUpgradePackages restricts ResolveUpgrade to the named set;
// unknown (not-installed) names fail with PackageNotInstalled, names with
// no newer catalog version are silently omitted.
func (r *Resolver) ResolveUpgradePackages(names []string) (*model.Transaction, error) {
	txn := model.New()
	for _, name := range names {
		installed, err := r.db.IsInstalled(name)
		if err != nil {
			return nil, err
		}
		if !installed {
			return nil, errs.NewPackageNotInstalled(name)
		}
		if err := r.addUpgradeIfNewer(txn, name); err != nil {
			if e, ok := err.(*errs.Error); ok && e.Kind == errs.PackageNotFound {
				continue
			}
			return nil, err
		}
	}
	return txn, nil
}

func (r *Resolver) addUpgradeIfNewer(txn *model.Transaction, name string) error {
	current, err := r.db.GetPackageInfo(name)
	if err != nil {
		return err
	}
	candidate, err := r.cat.GetPackageInfo(name)
	if err != nil {
		return err
	}
	if !vercmp.Greater(candidate.Version, current.Version) {
		return nil
	}
	txn.AddUpgrade(current.PackageSpec, candidate.PackageSpec, current.Size, candidate.Size)
	return nil
}
