// Package lock implements ratpm's exclusive inter-process lock: at most one
// mutating invocation of the tool may run against a host at a time, and a
// lock file orphaned by a crashed holder is reclaimed automatically.
package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/errs"
)

const (
	timeout      = 30 * time.Second
	pollInterval = 100 * time.Millisecond
)

// Manager acquires ratpm's single global mutex at a fixed path.
type Manager struct {
	path string
}

// NewManager returns a Manager for the lock file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Guard is a held lock. Release must be called exactly once, normally via
// defer immediately after a successful Acquire.
type Guard struct {
	fl   *flock.Flock
	path string
}

// Acquire takes the exclusive lock, recovering from a stale holder and
// retrying on contention, up to a 30s wall-clock budget. On success it
// truncates the lock file and writes the current PID as decimal text.
func (m *Manager) Acquire() (*Guard, error) {
	if err := m.ensureLockFileExists(); err != nil {
		return nil, errs.NewIoError(errors.Wrap(err, "ensure lock file exists"))
	}

	deadline := time.Now().Add(timeout)
	first := true

	for {
		if !first {
			m.reapStaleHolder()
		}
		first = false

		fl := flock.New(m.path)
		locked, err := fl.TryLock()
		if err != nil {
			return nil, errs.NewIoError(errors.Wrap(err, "attempt advisory lock"))
		}

		if locked {
			if err := m.writeHolderPID(); err != nil {
				fl.Unlock()
				return nil, errs.NewIoError(errors.Wrap(err, "write lock holder pid"))
			}
			return &Guard{fl: fl, path: m.path}, nil
		}

		if time.Now().After(deadline) {
			if pid, ok := m.readHolderPID(); ok {
				return nil, errs.NewLockHeld(pid)
			}
			return nil, errs.NewLockTimeout()
		}

		time.Sleep(pollInterval)
	}
}

// Release unlocks and closes the underlying descriptor. The lock file
// itself is deliberately left in place for the next waiter.
func (g *Guard) Release() error {
	if g == nil || g.fl == nil {
		return nil
	}
	return g.fl.Unlock()
}

func (m *Manager) ensureLockFileExists() error {
	if dir := filepath.Dir(m.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// writeHolderPID records the current process's PID as decimal text in the
// lock file, via a fresh handle independent of the one flock holds the
// advisory lock on — the lock is already exclusive to this process, so a
// second writer handle on the same inode is safe.
func (m *Manager) writeHolderPID() error {
	f, err := os.OpenFile(m.path, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		return err
	}
	return f.Sync()
}

// readHolderPID best-effort reads the decimal PID currently recorded in the
// lock file.
func (m *Manager) readHolderPID() (string, bool) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return "", false
	}
	pid := strings.TrimSpace(string(data))
	if pid == "" {
		return "", false
	}
	if _, err := strconv.Atoi(pid); err != nil {
		return "", false
	}
	return pid, true
}

// reapStaleHolder removes the lock file if the PID recorded in it belongs
// to no live process. Failure to unlink is not fatal: the next iteration
// simply retries the lock attempt normally.
func (m *Manager) reapStaleHolder() {
	pidStr, ok := m.readHolderPID()
	if !ok {
		return
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return
	}
	if processAlive(pid) {
		return
	}
	if err := os.Remove(m.path); err != nil {
		return
	}
	_ = m.ensureLockFileExists()
}

// processAlive reports whether pid refers to a live process. On POSIX
// systems os.FindProcess always succeeds, so liveness is determined by
// signalling it with signal 0.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil
}
