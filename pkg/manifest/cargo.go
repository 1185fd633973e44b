package manifest

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/licensetower/pkg/license"
)

// CargoToml parses Cargo.toml files. It extracts dependencies,
// dev-dependencies and build-dependencies. Path and git dependencies are
// skipped; "package" renames resolve to the published crate.
type CargoToml struct{}

func (c *CargoToml) Type() string                 { return "Cargo.toml" }
func (c *CargoToml) Ecosystem() license.Ecosystem { return license.Crates }
func (c *CargoToml) Supports(name string) bool    { return strings.EqualFold(name, "cargo.toml") }

func (c *CargoToml) Parse(path string) ([]Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cargo cargoFile
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return nil, err
	}

	var deps []Dependency
	for _, group := range []map[string]any{cargo.Dependencies, cargo.DevDependencies, cargo.BuildDependencies} {
		for name, spec := range group {
			if dep, ok := cargoDep(name, spec); ok {
				deps = append(deps, dep)
			}
		}
	}
	return deps, nil
}

// cargoDep interprets one dependency entry. A bare string is a version
// requirement; a table may carry version, package, path, git or workspace.
func cargoDep(name string, spec any) (Dependency, bool) {
	dep := Dependency{Ecosystem: license.Crates, Name: name}
	switch v := spec.(type) {
	case string:
		dep.Version = Resolve(v)
	case map[string]any:
		if _, ok := v["path"]; ok {
			return dep, false
		}
		if _, ok := v["git"]; ok {
			return dep, false
		}
		if pkg, ok := v["package"].(string); ok && pkg != "" {
			dep.Name = pkg
		}
		if ver, ok := v["version"].(string); ok {
			dep.Version = Resolve(ver)
		}
	default:
		return dep, false
	}
	return dep, valid(dep.Name)
}

type cargoFile struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}
