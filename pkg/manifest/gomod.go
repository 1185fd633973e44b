package manifest

import (
	"os"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/matzehuels/licensetower/pkg/license"
)

// GoMod parses go.mod files with golang.org/x/mod/modfile. Every require is
// reported, indirect ones included, since they are linked into the build.
// Replace directives are applied; requirements replaced by a local
// directory are skipped.
type GoMod struct{}

func (p *GoMod) Type() string                 { return "go.mod" }
func (p *GoMod) Ecosystem() license.Ecosystem { return license.Go }
func (p *GoMod) Supports(name string) bool    { return name == "go.mod" }

func (p *GoMod) Parse(path string) ([]Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, err
	}

	var deps []Dependency
	for _, req := range f.Require {
		mod, ok := replaced(f.Replace, req.Mod)
		if !ok || !valid(mod.Path) {
			continue
		}
		deps = append(deps, Dependency{Ecosystem: license.Go, Name: mod.Path, Version: mod.Version})
	}
	return deps, nil
}

// replaced applies the first matching replace directive. It reports false
// when the replacement is a filesystem path.
func replaced(replaces []*modfile.Replace, mod module.Version) (module.Version, bool) {
	for _, r := range replaces {
		if r.Old.Path != mod.Path || (r.Old.Version != "" && r.Old.Version != mod.Version) {
			continue
		}
		if r.New.Version == "" {
			return module.Version{}, false
		}
		return r.New, true
	}
	return mod, true
}
