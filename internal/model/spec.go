// Package model holds the immutable value types shared across ratpm's core:
// package identity, transaction plans, and the small structured records the
// catalog and installed-database backends hand back to the resolver and
// executor.
package model

import "fmt"

// SystemOrigin is the sentinel Origin value meaning "already installed",
// as opposed to the name of a repository a package can be fetched from.
const SystemOrigin = "@System"

// PackageSpec is the identity of one package version in one origin.
// Two specs are equal iff all four fields match structurally.
type PackageSpec struct {
	Name         string
	Version      string
	Architecture string
	Origin       string
}

// NEVRA returns the canonical "<name>-<version>.<arch>" textual form.
func (p PackageSpec) NEVRA() string {
	return fmt.Sprintf("%s-%s.%s", p.Name, p.Version, p.Architecture)
}

// String implements fmt.Stringer as the NEVRA form.
func (p PackageSpec) String() string {
	return p.NEVRA()
}

// IsSystem reports whether this spec's origin is the installed set.
func (p PackageSpec) IsSystem() bool {
	return p.Origin == SystemOrigin
}

// PackageInfo is a PackageSpec plus display/accounting fields, as returned
// by catalog or installed-database queries. Never mutated after creation.
type PackageInfo struct {
	PackageSpec
	Size        uint64
	Summary     string
	Description string
	URL         string
	License     string
}

// Package is the lightweight listing row returned by search/list queries,
// before a caller drills in with GetPackageInfo.
type Package struct {
	PackageSpec
	Summary string
}

// RepositoryMetadata is per-repository configuration loaded from a
// repo-definition file.
type RepositoryMetadata struct {
	Name        string
	BaseURL     string
	Enabled     bool
	GPGCheck    bool
	GPGKey      []string
	LastRefresh *int64 // unix seconds; nil means never refreshed
}

// DiagnosticIssue is a structured finding surfaced by the doctor command.
type DiagnosticIssue struct {
	Severity   string // "info", "warning", "error"
	Message    string
	Suggestion string
}

// HistoryEntry is one row of the installed-database's transaction log.
type HistoryEntry struct {
	Seq       int
	ID        string // uuid, stamped at apply time
	Timestamp string
	Command   string
	Actions   []string
}
