package model

import "math"

// UpgradePair is one (old installed spec, new catalog spec) upgrade entry.
type UpgradePair struct {
	Old PackageSpec
	New PackageSpec
}

// TransactionState is one phase of an in-flight Transaction.
type TransactionState int

const (
	StatePending TransactionState = iota
	StateResolving
	StateDownloading
	StateVerifying
	StateTesting
	StateExecuting
	StateComplete
	StateFailed
	StateCancelled
)

func (s TransactionState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateResolving:
		return "Resolving"
	case StateDownloading:
		return "Downloading"
	case StateVerifying:
		return "Verifying"
	case StateTesting:
		return "Testing"
	case StateExecuting:
		return "Executing"
	case StateComplete:
		return "Complete"
	case StateFailed:
		return "Failed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Transaction is the resolved, accounting-complete plan of installs,
// removes, and upgrades that the executor consumes. Every mutating method
// keeps DownloadSize and InstallSize consistent with spec §3.
type Transaction struct {
	Install []PackageSpec
	Remove  []PackageSpec
	Upgrade []UpgradePair

	DownloadSize uint64
	InstallSize  int64
}

// New returns an empty Transaction.
func New() *Transaction {
	return &Transaction{}
}

// IsEmpty reports whether the transaction has no work at all.
func (t *Transaction) IsEmpty() bool {
	return len(t.Install) == 0 && len(t.Remove) == 0 && len(t.Upgrade) == 0
}

// TotalPackages returns the number of distinct package operations staged.
func (t *Transaction) TotalPackages() int {
	return len(t.Install) + len(t.Remove) + len(t.Upgrade)
}

// saturatingAddSize adds a uint64 byte count (clamped into i64 range) to a
// running signed total, saturating at math.MaxInt64 rather than wrapping.
func saturatingAddSize(base int64, size uint64) int64 {
	delta := clampToI64(size)
	if delta > 0 && base > math.MaxInt64-delta {
		return math.MaxInt64
	}
	return base + delta
}

// saturatingSubSize subtracts a uint64 byte count (clamped into i64 range)
// from a running signed total, saturating at math.MinInt64.
func saturatingSubSize(base int64, size uint64) int64 {
	delta := clampToI64(size)
	if delta > 0 && base < math.MinInt64+delta {
		return math.MinInt64
	}
	return base - delta
}

func clampToI64(size uint64) int64 {
	if size > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(size)
}

// AddInstall stages an install of spec with the given fetch/disk size.
func (t *Transaction) AddInstall(spec PackageSpec, size uint64) {
	t.DownloadSize += size
	t.InstallSize = saturatingAddSize(t.InstallSize, size)
	t.Install = append(t.Install, spec)
}

// AddRemove stages a removal of spec with the given on-disk size.
func (t *Transaction) AddRemove(spec PackageSpec, size uint64) {
	t.InstallSize = saturatingSubSize(t.InstallSize, size)
	t.Remove = append(t.Remove, spec)
}

// AddUpgrade stages an upgrade from old to new, net-accounting the size
// delta in one step so a paired remove is never separately subtracted
// (see SPEC_FULL.md §9, the install_size double-counting open question).
func (t *Transaction) AddUpgrade(old, new PackageSpec, oldSize, newSize uint64) {
	t.DownloadSize += newSize
	t.InstallSize = saturatingAddSize(t.InstallSize, newSize)
	t.InstallSize = saturatingSubSize(t.InstallSize, oldSize)
	t.Upgrade = append(t.Upgrade, UpgradePair{Old: old, New: new})
}

// TransactionProgress is observable execution state for a running
// Transaction.
type TransactionProgress struct {
	State             TransactionState
	CurrentPackage    string
	PackagesProcessed int
	TotalPackages     int
	BytesDownloaded   uint64
	TotalBytes        uint64
}

// NewProgress returns a Pending progress tracker for a transaction with the
// given total package count and byte count.
func NewProgress(totalPackages int, totalBytes uint64) *TransactionProgress {
	return &TransactionProgress{
		State:         StatePending,
		TotalPackages: totalPackages,
		TotalBytes:    totalBytes,
	}
}

// Percentage returns PackagesProcessed/TotalPackages*100, or 0 when
// TotalPackages is 0.
func (p *TransactionProgress) Percentage() float64 {
	if p.TotalPackages == 0 {
		return 0
	}
	return float64(p.PackagesProcessed) / float64(p.TotalPackages) * 100
}
