package manifest

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/matzehuels/licensetower/pkg/integrations"
	"github.com/matzehuels/licensetower/pkg/license"
)

var depNameRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)

// Requirements parses pip requirements files. Only "==" pins carry a
// version; every other specifier resolves to latest.
type Requirements struct{}

func (r *Requirements) Type() string                 { return "requirements.txt" }
func (r *Requirements) Ecosystem() license.Ecosystem { return license.PyPI }

func (r *Requirements) Supports(name string) bool {
	return name == "requirements.txt" ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

func (r *Requirements) Parse(path string) ([]Dependency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := make(map[string]bool)
	var deps []Dependency

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		m := depNameRE.FindStringSubmatch(line)
		if len(m) < 2 {
			continue
		}
		name := integrations.NormalizePkgName(m[1])
		if seen[name] || !valid(name) {
			continue
		}
		seen[name] = true

		deps = append(deps, Dependency{
			Ecosystem: license.PyPI,
			Name:      name,
			Version:   pinned(line[len(m[1]):]),
		})
	}

	return deps, scanner.Err()
}

// pinned returns the version of an "==" or "===" specifier, ignoring extras
// and environment markers.
func pinned(spec string) string {
	spec, _, _ = strings.Cut(spec, ";")
	spec, _, _ = strings.Cut(spec, "#")
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "[") {
		if i := strings.Index(spec, "]"); i >= 0 {
			spec = strings.TrimSpace(spec[i+1:])
		}
	}
	if !strings.HasPrefix(spec, "==") || strings.ContainsAny(spec, ",*") {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(spec, "="))
}
