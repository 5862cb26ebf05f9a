package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempLockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ratpm.lock")
}

// property 9: acquire, release, acquire again in the same process succeeds
// both times.
func TestAcquireReleaseReacquire(t *testing.T) {
	path := tempLockPath(t)
	m := NewManager(path)

	g1, err := m.Acquire()
	require.NoError(t, err)
	require.NoError(t, g1.Release())

	g2, err := m.Acquire()
	require.NoError(t, err)
	require.NoError(t, g2.Release())
}

func TestAcquireWritesPID(t *testing.T) {
	path := tempLockPath(t)
	m := NewManager(path)

	g, err := m.Acquire()
	require.NoError(t, err)
	defer g.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(string(data))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

// property 13: a lock file whose recorded PID belongs to no live process
// is reclaimed on the next acquisition attempt.
func TestStaleLockIsReclaimed(t *testing.T) {
	path := tempLockPath(t)
	require.NoError(t, os.WriteFile(path, []byte("999999999"), 0o644))

	m := NewManager(path)
	g, err := m.Acquire()
	require.NoError(t, err)
	defer g.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestEnsureLockFileCreatesParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dirs")
	path := filepath.Join(dir, "ratpm.lock")

	m := NewManager(path)
	g, err := m.Acquire()
	require.NoError(t, err)
	defer g.Release()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLockHeldReportsHolderPID(t *testing.T) {
	path := tempLockPath(t)
	m := NewManager(path)

	g, err := m.Acquire()
	require.NoError(t, err)
	defer g.Release()

	// A concurrent manager contending for the same path, with the holder
	// alive, must eventually surface LockHeld naming that PID. We cannot
	// wait out the real 30s timeout in a unit test, so this only exercises
	// the PID-reading helper directly.
	pid, ok := m.readHolderPID()
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(os.Getpid()), pid)
}
