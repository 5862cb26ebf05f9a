package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRepoFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "example.repo")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseRepoFileBasic(t *testing.T) {
	path := writeRepoFile(t, `
# a comment
[fedora]
name = fedora
baseurl = https://example.test/fedora
enabled = 1
gpgcheck = 1
gpgkey = https://example.test/key1 https://example.test/key2
`)
	repos, err := ParseRepoFile(path, true)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	r := repos[0]
	assert.False(t, r.Dropped)
	assert.Equal(t, "fedora", r.Metadata.Name)
	assert.Equal(t, "https://example.test/fedora", r.Metadata.BaseURL)
	assert.True(t, r.Metadata.GPGCheck)
	assert.Equal(t, []string{"https://example.test/key1", "https://example.test/key2"}, r.Metadata.GPGKey)
}

func TestParseRepoFileDisabledIsDropped(t *testing.T) {
	path := writeRepoFile(t, "[fedora]\nbaseurl = https://example.test\nenabled = 0\n")
	repos, err := ParseRepoFile(path, true)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.True(t, repos[0].Dropped)
}

func TestParseRepoFileNoURLIsDropped(t *testing.T) {
	path := writeRepoFile(t, "[fedora]\nenabled = 1\n")
	repos, err := ParseRepoFile(path, true)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.True(t, repos[0].Dropped)
}

func TestParseRepoFileGPGCheckDefaultsToGlobal(t *testing.T) {
	path := writeRepoFile(t, "[fedora]\nbaseurl = https://example.test\n")
	repos, err := ParseRepoFile(path, false)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.False(t, repos[0].Metadata.GPGCheck)
}

func TestParseRepoFileMetalinkOnlyWarns(t *testing.T) {
	path := writeRepoFile(t, "[fedora]\nmetalink = https://example.test/metalink\n")
	repos, err := ParseRepoFile(path, true)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.False(t, repos[0].Dropped)
	assert.Equal(t, "https://example.test/metalink", repos[0].Metadata.BaseURL)
	assert.NotEmpty(t, repos[0].Warning)
}

func TestParseRepoFileMultipleSections(t *testing.T) {
	path := writeRepoFile(t, `
[fedora]
baseurl = https://a.test
[updates]
baseurl = https://b.test
`)
	repos, err := ParseRepoFile(path, true)
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "fedora", repos[0].Metadata.Name)
	assert.Equal(t, "updates", repos[1].Metadata.Name)
}
