package fedora

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratpm/ratpm/internal/errs"
)

func setupRepoDir(t *testing.T, content string) (repoDir, cacheDir string) {
	t.Helper()
	repoDir = t.TempDir()
	cacheDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "fedora.repo"), []byte(content), 0o644))
	return
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	repoDir, cacheDir := setupRepoDir(t, "[fedora]\nbaseurl = https://example.test/fedora\n")
	cat, err := New(repoDir, cacheDir, true)
	require.NoError(t, err)

	results, err := cat.Search("VIM")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "neovim", results[0].Name)
	assert.Equal(t, "vim", results[1].Name)
}

func TestListAvailableSortedAndDeduped(t *testing.T) {
	repoDir, cacheDir := setupRepoDir(t, "[fedora]\nbaseurl = https://a.test\n[updates]\nbaseurl = https://b.test\n")
	cat, err := New(repoDir, cacheDir, true)
	require.NoError(t, err)

	results, err := cat.ListAvailable()
	require.NoError(t, err)
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		less := prev.Name < cur.Name ||
			(prev.Name == cur.Name && prev.Version < cur.Version) ||
			(prev.Name == cur.Name && prev.Version == cur.Version && prev.Architecture < cur.Architecture)
		assert.True(t, less, "results not sorted: %+v then %+v", prev, cur)
	}
}

func TestGetPackageInfoPrefersHighestVersion(t *testing.T) {
	repoDir, cacheDir := setupRepoDir(t, "[fedora]\nbaseurl = https://a.test\n[updates]\nbaseurl = https://b.test\n")
	cat, err := New(repoDir, cacheDir, true)
	require.NoError(t, err)

	info, err := cat.GetPackageInfo("vim")
	require.NoError(t, err)
	assert.Equal(t, "9.1.0", info.Version)
	assert.Equal(t, "updates", info.Origin)
}

func TestGetPackageInfoNotFound(t *testing.T) {
	repoDir, cacheDir := setupRepoDir(t, "[fedora]\nbaseurl = https://a.test\n")
	cat, err := New(repoDir, cacheDir, true)
	require.NoError(t, err)

	_, err = cat.GetPackageInfo("nonexistent")
	require.Error(t, err)
	rerr := err.(*errs.Error)
	assert.Equal(t, errs.PackageNotFound, rerr.Kind)
}

func TestRepoDisabledExcludesItsPackages(t *testing.T) {
	repoDir, cacheDir := setupRepoDir(t, "[fedora]\nbaseurl = https://a.test\nenabled = 0\n")
	cat, err := New(repoDir, cacheDir, true)
	require.NoError(t, err)

	results, err := cat.ListAvailable()
	require.NoError(t, err)
	assert.Empty(t, results)
}

// spec §4.4: check_health -> one warning issue per enabled repo with no
// cached metadata.
func TestCheckHealthWarnsOnMissingCache(t *testing.T) {
	repoDir, cacheDir := setupRepoDir(t, "[fedora]\nbaseurl = https://a.test\n")
	cat, err := New(repoDir, cacheDir, true)
	require.NoError(t, err)

	issues, err := cat.CheckHealth()
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "warning", issues[0].Severity)
}

func TestRefreshMetadataClearsHealthWarning(t *testing.T) {
	repoDir, cacheDir := setupRepoDir(t, "[fedora]\nbaseurl = https://a.test\n")
	cat, err := New(repoDir, cacheDir, true)
	require.NoError(t, err)

	require.NoError(t, cat.RefreshMetadata())

	issues, err := cat.CheckHealth()
	require.NoError(t, err)
	assert.Empty(t, issues)

	repo, ok := cat.GetRepository("fedora")
	require.True(t, ok)
	require.NotNil(t, repo.LastRefresh)
}
