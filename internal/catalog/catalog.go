// Package catalog defines the RepositoryCatalog contract the resolver and
// executor consume, plus the shared repo-definition (.repo) file parser
// every backend implementation uses.
package catalog

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/ratpm/ratpm/internal/model"
)

// Catalog is the query surface the core needs over available packages.
type Catalog interface {
	Search(query string) ([]model.Package, error)
	GetPackageInfo(name string) (model.PackageInfo, error)
	ListAvailable() ([]model.Package, error)
	RefreshMetadata() error
	GetRepository(name string) (model.RepositoryMetadata, bool)
	CheckHealth() ([]model.DiagnosticIssue, error)
}

// ParsedRepo is one [section] block from a repo-definition file, decoded
// into a RepositoryMetadata plus a flag for whether it was dropped (either
// disabled, or lacking any usable URL).
type ParsedRepo struct {
	Metadata model.RepositoryMetadata
	Dropped  bool
	// Warning is set when the entry was kept but deserves a diagnostic,
	// e.g. a metalink/mirrorlist-only repo (see SPEC_FULL.md §9).
	Warning string
}

// ParseRepoFile parses one INI-like repo-definition file per spec §4.4.
// Parse failures are returned to the caller, who is expected to log and
// continue with the rest of the repo directory (spec §7).
func ParseRepoFile(path string, globalGPGCheck bool) ([]ParsedRepo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var results []ParsedRepo
	var name string
	kv := map[string]string{}
	haveSection := false

	flush := func() {
		if !haveSection {
			return
		}
		results = append(results, buildRepo(name, kv, globalGPGCheck))
		kv = map[string]string{}
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			name = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			haveSection = true
			continue
		}
		if !haveSection {
			continue
		}
		if idx := strings.Index(line, "="); idx >= 0 {
			key := strings.TrimSpace(line[:idx])
			val := strings.TrimSpace(line[idx+1:])
			kv[key] = val
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func buildRepo(name string, kv map[string]string, globalGPGCheck bool) ParsedRepo {
	enabled := true
	if v, ok := kv["enabled"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			enabled = n == 1
		}
	}
	if !enabled {
		return ParsedRepo{Metadata: model.RepositoryMetadata{Name: name, Enabled: false}, Dropped: true}
	}

	baseURL := firstNonEmpty(kv["baseurl"], kv["metalink"], kv["mirrorlist"])
	if baseURL == "" {
		return ParsedRepo{Metadata: model.RepositoryMetadata{Name: name, Enabled: true}, Dropped: true}
	}

	warning := ""
	if kv["baseurl"] == "" {
		// Resolved from metalink/mirrorlist only: the executor fetches
		// exclusively from baseurl by convention (spec §4.3 step 2), and
		// this repository has no transport able to turn a metalink or
		// mirrorlist into a concrete one. The repository is kept rather
		// than rejected, but flagged so `doctor` surfaces it.
		warning = "repository '" + name + "' has no baseurl; metalink/mirrorlist is not resolved to a concrete URL"
	}

	gpgcheck := globalGPGCheck
	if v, ok := kv["gpgcheck"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			gpgcheck = n == 1
		}
	}

	var gpgkey []string
	if v, ok := kv["gpgkey"]; ok {
		gpgkey = strings.Fields(v)
	}

	return ParsedRepo{
		Metadata: model.RepositoryMetadata{
			Name:     name,
			BaseURL:  baseURL,
			Enabled:  true,
			GPGCheck: gpgcheck,
			GPGKey:   gpgkey,
		},
		Warning: warning,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
