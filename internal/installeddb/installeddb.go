// Package installeddb defines the InstalledDatabase contract the resolver
// and executor consume over the set of packages already present on the
// host, plus the Applier interface used to mutate it.
package installeddb

import "github.com/ratpm/ratpm/internal/model"

// Database is the query surface over installed packages.
type Database interface {
	IsInstalled(name string) (bool, error)
	GetPackageInfo(name string) (model.PackageInfo, error)
	ListAll() ([]model.Package, error)
	VerifyIntegrity() error
	GetTransactionHistory(limit int) ([]model.HistoryEntry, error)
	BeginTransaction() (Applier, error)
}

// Applier is the low-level component that realizes a resolved plan against
// the host's package database: unpacking artifacts and running pre/post
// hooks. TransactionExecutor drives it through Check then Commit.
type Applier interface {
	AddInstall(spec model.PackageSpec, artifactPath string)
	AddRemove(spec model.PackageSpec)
	// Check performs a dry-run validation of the enqueued operations
	// without mutating the filesystem: every install artifact must exist.
	Check() error
	// Commit applies the enqueued operations in order. On failure it
	// returns the NEVRA of the operation that failed; operations after
	// the failure are not attempted.
	Commit() error
}
