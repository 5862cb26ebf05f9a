// Package errs defines the closed error taxonomy that drives ratpm's exit
// codes. Every error the core surfaces to the command layer is, once
// unwrapped, one of the Kind values below.
package errs

import "fmt"

// Kind identifies one of the fixed failure modes the core can produce.
type Kind int

const (
	_ Kind = iota
	PermissionDenied
	LockHeld
	LockTimeout
	RepoUnavailable
	RepoGpgFailed
	DependencyConflict
	PackageNotFound
	PackageAlreadyInstalled
	PackageNotInstalled
	TransactionCheckFailed
	TransactionFailed
	NetworkError
	ConfigError
	RpmDbError
	BackendError
	IoError
	InvalidPackageSpec
	InsufficientDiskSpace
	ScriptletFailed
)

// ExitCode maps a Kind to the process exit code documented in spec §6.
func (k Kind) ExitCode() int {
	switch k {
	case PermissionDenied:
		return 13
	case LockHeld, LockTimeout:
		return 14
	case DependencyConflict:
		return 2
	case TransactionCheckFailed:
		return 3
	case TransactionFailed:
		return 4
	case NetworkError:
		return 5
	case RepoUnavailable, RepoGpgFailed:
		return 6
	case InsufficientDiskSpace:
		return 7
	case ConfigError:
		return 8
	case RpmDbError:
		return 9
	case ScriptletFailed:
		return 10
	default:
		return 1
	}
}

// Error is a structured ratpm error: a closed Kind plus whatever detail
// (a package name, a pid, a byte count) the call site attached.
type Error struct {
	Kind    Kind
	Message string

	// Optional structured detail, populated by the constructors below.
	PID         string
	Name        string
	Need        uint64
	Available   uint64
	Package     string
	Details     string
}

func (e *Error) Error() string {
	return e.Message
}

// ExitCode satisfies the same contract as Kind.ExitCode for convenience at
// the command-handler boundary.
func (e *Error) ExitCode() int {
	return e.Kind.ExitCode()
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

func NewPermissionDenied() *Error {
	return New(PermissionDenied, "Permission denied: operation requires root privileges")
}

func NewLockHeld(pid string) *Error {
	return &Error{
		Kind:    LockHeld,
		Message: fmt.Sprintf("Package manager lock is held by another process (PID: %s)", pid),
		PID:     pid,
	}
}

func NewLockTimeout() *Error {
	return New(LockTimeout, "Lock acquisition timed out")
}

func NewRepoUnavailable(name string) *Error {
	return &Error{
		Kind:    RepoUnavailable,
		Message: fmt.Sprintf("Repository '%s' is unavailable", name),
		Name:    name,
	}
}

func NewRepoGpgFailed(name string) *Error {
	return &Error{
		Kind:    RepoGpgFailed,
		Message: fmt.Sprintf("Repository '%s' failed GPG verification", name),
		Name:    name,
	}
}

func NewDependencyConflict(message string) *Error {
	return New(DependencyConflict, fmt.Sprintf("Dependency conflict: %s", message))
}

func NewPackageNotFound(name string) *Error {
	return &Error{
		Kind:    PackageNotFound,
		Message: fmt.Sprintf("Package '%s' not found", name),
		Name:    name,
	}
}

func NewPackageAlreadyInstalled(name string) *Error {
	return &Error{
		Kind:    PackageAlreadyInstalled,
		Message: fmt.Sprintf("Package '%s' is already installed", name),
		Name:    name,
	}
}

func NewPackageNotInstalled(name string) *Error {
	return &Error{
		Kind:    PackageNotInstalled,
		Message: fmt.Sprintf("Package '%s' is not installed", name),
		Name:    name,
	}
}

func NewTransactionCheckFailed(message string) *Error {
	return New(TransactionCheckFailed, fmt.Sprintf("Transaction check failed: %s", message))
}

func NewTransactionFailed(message string) *Error {
	return New(TransactionFailed, fmt.Sprintf("Transaction execution failed: %s", message))
}

func NewNetworkError(message string) *Error {
	return New(NetworkError, fmt.Sprintf("Network error: %s", message))
}

func NewConfigError(message string) *Error {
	return New(ConfigError, fmt.Sprintf("Configuration error: %s", message))
}

func NewRpmDbError(message string) *Error {
	return New(RpmDbError, fmt.Sprintf("RPM database error: %s", message))
}

func NewBackendError(message string) *Error {
	return New(BackendError, fmt.Sprintf("Backend error: %s", message))
}

func NewIoError(cause error) *Error {
	return New(IoError, fmt.Sprintf("I/O error: %s", cause))
}

func NewInvalidPackageSpec(message string) *Error {
	return New(InvalidPackageSpec, fmt.Sprintf("Invalid package specification: %s", message))
}

func NewInsufficientDiskSpace(need, available uint64) *Error {
	return &Error{
		Kind:      InsufficientDiskSpace,
		Message:   fmt.Sprintf("Disk space insufficient: need %d bytes, have %d bytes", need, available),
		Need:      need,
		Available: available,
	}
}

func NewScriptletFailed(pkg, details string) *Error {
	return &Error{
		Kind:    ScriptletFailed,
		Message: fmt.Sprintf("Scriptlet execution failed for package '%s': %s", pkg, details),
		Package: pkg,
		Details: details,
	}
}
