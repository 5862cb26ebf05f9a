// Package rtctx binds one CLI invocation's configuration, lock manager,
// active backend, and interactive policy into the single Context value
// every command handler operates against. Grounded on
// original_source/src/core/context.go and, in golang-dep's idiom, the
// teacher's context.go Ctx type.
package rtctx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ratpm/ratpm/internal/catalog"
	"github.com/ratpm/ratpm/internal/config"
	"github.com/ratpm/ratpm/internal/errs"
	"github.com/ratpm/ratpm/internal/installeddb"
	"github.com/ratpm/ratpm/internal/lock"
)

// Backend bundles the catalog and installed-database handles one backend
// implementation (currently only "fedora") provides. The Context owns
// exactly one for the whole invocation.
type Backend struct {
	Catalog     catalog.Catalog
	InstalledDB installeddb.Database
}

// Context is created once per invocation and passed to the command
// handler. Config is cloned in and never mutated; AssumeYes and Color are
// interactive policy that lives here, not on Config.
type Context struct {
	Config    config.Config
	Lock      *lock.Manager
	Backend   Backend
	AssumeYes bool
	Color     bool
	IsRoot    bool

	in  io.Reader
	out io.Writer
	err io.Writer
}

// New constructs a Context. isRoot is taken from the caller (typically
// os.Geteuid() == 0) rather than computed here, so tests can exercise
// both branches of RequireRoot without actual privilege.
func New(cfg config.Config, backend Backend, isRoot bool) *Context {
	return &Context{
		Config:    cfg,
		Lock:      lock.NewManager(cfg.System.LockFile),
		Backend:   backend,
		AssumeYes: cfg.System.AssumeYes,
		Color:     cfg.System.Color,
		IsRoot:    isRoot,
		in:        os.Stdin,
		out:       os.Stdout,
		err:       os.Stderr,
	}
}

// RequireRoot fails with PermissionDenied unless the context was
// constructed with IsRoot true.
func (c *Context) RequireRoot() error {
	if !c.IsRoot {
		return errs.NewPermissionDenied()
	}
	return nil
}

// AcquireLock blocks (up to the manager's timeout) to acquire the process
// lock, returning a Guard the caller must Release on every exit path.
func (c *Context) AcquireLock() (*lock.Guard, error) {
	return c.Lock.Acquire()
}

// ConfirmTransaction returns true immediately when AssumeYes is set.
// Otherwise it writes a [y/N] prompt to stderr and reads one line from
// stdin, returning true iff the first non-whitespace character is
// case-insensitively 'y'.
func (c *Context) ConfirmTransaction() bool {
	if c.AssumeYes {
		return true
	}

	fmt.Fprint(c.err, "Proceed? [y/N] ")

	reader := bufio.NewReader(c.in)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	return strings.ToLower(line[:1]) == "y"
}
