package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/matzehuels/licensetower/pkg/license"
)

const httpTimeout = 10 * time.Second

// UserAgent identifies licensetower to registries that require one.
const UserAgent = "licensetower/1.0 (https://github.com/matzehuels/licensetower)"

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned for 429 responses.
	ErrRateLimited = errors.New("rate limited")
)

// Fetcher resolves license metadata for one package of an ecosystem.
// An empty version selects the latest release.
type Fetcher interface {
	Ecosystem() license.Ecosystem
	FetchLicense(ctx context.Context, name, version string) (*license.Info, error)
}

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI and other registries.
func NormalizePkgName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"git+ssh://git@github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, and git+ prefixes, and removes .git suffixes.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = repoURLReplacer.Replace(s)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

var githubRepoRE = regexp.MustCompile(`github\.com[/:]([^/\s]+)/([^/\s#?]+)`)

// GitHubRepo extracts owner and repository name from a GitHub URL or a Go
// module path. It reports false for anything not hosted on github.com.
func GitHubRepo(raw string) (owner, repo string, ok bool) {
	m := githubRepoRE.FindStringSubmatch(raw)
	if len(m) < 3 {
		return "", "", false
	}
	return m[1], strings.TrimSuffix(m[2], ".git"), true
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// PathEscape percent-encodes a path segment, keeping "@" for scoped npm
// packages readable. "/" is escaped.
func PathEscape(s string) string { return url.PathEscape(s) }
