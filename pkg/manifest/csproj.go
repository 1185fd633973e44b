package manifest

import (
	"encoding/xml"
	"os"
	"strings"

	"github.com/matzehuels/licensetower/pkg/license"
)

// CSProj parses MSBuild project files (*.csproj, *.fsproj, *.vbproj) for
// PackageReference items. The version may be an attribute or a child
// element; NuGet range syntax resolves to latest.
type CSProj struct{}

func (p *CSProj) Type() string                 { return "csproj" }
func (p *CSProj) Ecosystem() license.Ecosystem { return license.NuGet }

func (p *CSProj) Supports(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".csproj") ||
		strings.HasSuffix(lower, ".fsproj") ||
		strings.HasSuffix(lower, ".vbproj")
}

func (p *CSProj) Parse(path string) ([]Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj projectFile
	if err := xml.Unmarshal(data, &proj); err != nil {
		return nil, err
	}

	var deps []Dependency
	for _, group := range proj.ItemGroups {
		for _, ref := range group.PackageReferences {
			name := strings.TrimSpace(ref.Include)
			if name == "" || !valid(name) {
				continue
			}
			version := ref.Version
			if version == "" {
				version = ref.VersionElement
			}
			deps = append(deps, Dependency{Ecosystem: license.NuGet, Name: name, Version: nugetVersion(version)})
		}
	}
	return deps, nil
}

// nugetVersion keeps exact versions, including four-part ones, and drops
// ranges ("[1.0,2.0)"), floating versions ("1.*") and MSBuild properties.
func nugetVersion(v string) string {
	v = strings.TrimSpace(v)
	if strings.ContainsAny(v, "[](),*$ ") {
		if inner := strings.Trim(v, "[]"); v != inner && !strings.ContainsAny(inner, ",()*$ ") {
			return inner
		}
		return ""
	}
	return v
}

type projectFile struct {
	ItemGroups []itemGroup `xml:"ItemGroup"`
}

type itemGroup struct {
	PackageReferences []packageReference `xml:"PackageReference"`
}

type packageReference struct {
	Include        string `xml:"Include,attr"`
	Version        string `xml:"Version,attr"`
	VersionElement string `xml:"Version"`
}
