package license

import (
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/licensetower/pkg/errors"
)

// Sentinel license values for inconclusive fetches.
const (
	Unknown = "Unknown"
	Timeout = "Timeout"
)

// Ecosystem identifies a package-manager universe. Packages are namespaced by
// ecosystem for cache-key purposes.
type Ecosystem string

// Supported ecosystems.
const (
	Npm    Ecosystem = "npm"
	Crates Ecosystem = "crates"
	Go     Ecosystem = "go"
	PyPI   Ecosystem = "pypi"
	NuGet  Ecosystem = "nuget"
)

// Ecosystems lists every supported ecosystem in display order.
var Ecosystems = []Ecosystem{Npm, Crates, Go, PyPI, NuGet}

// ParseEcosystem resolves an ecosystem name or common alias.
func ParseEcosystem(s string) (Ecosystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "npm", "node", "javascript", "js":
		return Npm, nil
	case "crates", "cargo", "rust":
		return Crates, nil
	case "go", "golang", "goproxy":
		return Go, nil
	case "pypi", "pip", "python":
		return PyPI, nil
	case "nuget", "dotnet", ".net":
		return NuGet, nil
	}
	return "", errors.New(errors.ErrCodeInvalidEcosystem, "unknown ecosystem %q", s)
}

// Info is the license record for one package version.
//
// Zero values: every string field may be empty except License, which is
// always set by a fetcher (to a sentinel if nothing else).
type Info struct {
	Name        string `json:"name"`                  // Package name as reported by the registry
	Version     string `json:"version"`               // Resolved version
	License     string `json:"license"`               // Canonical license string, or a sentinel
	Repository  string `json:"repository,omitempty"`  // Source repository URL
	HomePage    string `json:"homepage,omitempty"`    // Project homepage URL
	Description string `json:"description,omitempty"` // Short summary
	LicenseText string `json:"licenseText,omitempty"` // Full license text when the registry ships it
}

// IsSentinel reports whether l is one of the sentinel values.
func IsSentinel(l string) bool {
	return l == Unknown || l == Timeout
}

// Failed returns a sentinel record for a package whose fetch failed.
func Failed(name, version, sentinel string) *Info {
	return &Info{Name: name, Version: version, License: sentinel}
}

// FromAny converts a registry license field into a single canonical string.
//
// Accepted shapes:
//   - string: trimmed and returned
//   - map with "type", "spdx_id", "name" or "license" key
//   - list of strings or maps: joined with " OR " in input order, duplicates removed
//   - nil or anything else: [Unknown]
func FromAny(v any) string {
	parts := collect(v)
	if len(parts) == 0 {
		return Unknown
	}
	return strings.Join(parts, " OR ")
}

func collect(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	case []string:
		return dedupe(val)
	case map[string]any:
		for _, k := range []string{"type", "spdx_id", "name", "license"} {
			if s, ok := val[k].(string); ok && strings.TrimSpace(s) != "" {
				return []string{strings.TrimSpace(s)}
			}
		}
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, collect(item)...)
		}
		return dedupe(out)
	}
	return nil
}

func dedupe(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

var (
	exceptionRE = regexp.MustCompile(`(?i)\s+WITH\s+[^\s()]+`)
	operatorRE  = regexp.MustCompile(`(?i)\s+(?:OR|AND)\s+|[/(),]`)
)

// Split breaks a compound expression such as "MIT OR Apache-2.0" or
// "(MIT/Apache-2.0)" into its component names. It is a tokenizer, not an
// SPDX evaluator: AND and OR are both separators and WITH exceptions are
// dropped. Multi-word names ("MIT License") stay whole.
func Split(expr string) []string {
	expr = exceptionRE.ReplaceAllString(expr, "")

	var out []string
	for _, part := range operatorRE.Split(expr, -1) {
		part = strings.TrimSpace(part)
		if part != "" && !slices.Contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}
