package manifest

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/matzehuels/licensetower/pkg/license"
)

// PackageJSON parses package.json files. It extracts dependencies,
// devDependencies, and peerDependencies.
type PackageJSON struct{}

func (p *PackageJSON) Type() string                 { return "package.json" }
func (p *PackageJSON) Ecosystem() license.Ecosystem { return license.Npm }
func (p *PackageJSON) Supports(name string) bool    { return strings.EqualFold(name, "package.json") }

func (p *PackageJSON) Parse(path string) ([]Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}

	var deps []Dependency
	for _, group := range []map[string]string{pkg.Dependencies, pkg.DevDependencies, pkg.PeerDependencies} {
		for name, spec := range group {
			if localSpec(spec) {
				continue
			}
			name, version := npmTarget(name, spec)
			if !valid(name) {
				continue
			}
			deps = append(deps, Dependency{Ecosystem: license.Npm, Name: name, Version: version})
		}
	}
	return deps, nil
}

// localSpec reports whether an npm dependency spec points outside the registry.
func localSpec(spec string) bool {
	for _, prefix := range []string{"file:", "link:", "workspace:", "portal:", "git", "http:", "https:"} {
		if strings.HasPrefix(spec, prefix) {
			return true
		}
	}
	return strings.Contains(spec, "/") && !strings.HasPrefix(spec, "npm:")
}

// npmTarget resolves a spec to the published package it installs, following
// "npm:real-name@range" aliases.
func npmTarget(name, spec string) (string, string) {
	rest, ok := strings.CutPrefix(spec, "npm:")
	if !ok {
		return name, Resolve(spec)
	}
	if i := strings.LastIndex(rest, "@"); i > 0 {
		return rest[:i], Resolve(rest[i+1:])
	}
	return rest, ""
}

type packageFile struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}
