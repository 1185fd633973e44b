package manifest

import (
	"cmp"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/licensetower/pkg/errors"
	"github.com/matzehuels/licensetower/pkg/license"
)

// Dependency is one declared dependency.
type Dependency struct {
	Ecosystem license.Ecosystem `json:"ecosystem"`
	Name      string            `json:"name"`
	Version   string            `json:"version,omitempty"` // Empty means latest
	Manifest  string            `json:"manifest,omitempty"` // Slash-separated path relative to the scan root
}

// Parser reads dependencies from one kind of manifest file.
type Parser interface {
	// Type returns the manifest type identifier (e.g., "package.json").
	Type() string
	// Ecosystem returns the registry universe the manifest's names live in.
	Ecosystem() license.Ecosystem
	// Supports reports whether this parser handles the given filename.
	Supports(filename string) bool
	// Parse reads the manifest at path.
	Parse(path string) ([]Dependency, error)
}

// Parsers returns one parser per supported manifest type.
func Parsers() []Parser {
	return []Parser{&PackageJSON{}, &CargoToml{}, &GoMod{}, &Requirements{}, &CSProj{}}
}

// Detect finds a parser that supports the given file path.
func Detect(path string, parsers ...Parser) (Parser, error) {
	name := filepath.Base(path)
	if err := errors.ValidateManifestFilename(name); err != nil {
		return nil, err
	}
	if len(parsers) == 0 {
		parsers = Parsers()
	}
	for _, p := range parsers {
		if p.Supports(name) {
			return p, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidManifest, "unsupported manifest: %s", name)
}

// ParseFile parses a single manifest, selecting the parser by filename.
func ParseFile(path string) ([]Dependency, error) {
	p, err := Detect(path)
	if err != nil {
		return nil, err
	}
	deps, err := p.Parse(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	name := filepath.Base(path)
	for i := range deps {
		deps[i].Manifest = name
	}
	return deps, nil
}

// Options configures [Scan].
type Options struct {
	Parsers []Parser    // Defaults to Parsers()
	Logger  *log.Logger // Receives skipped-manifest warnings
}

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"vendor":       true,
	"target":       true,
	"bin":          true,
	"obj":          true,
	".venv":        true,
}

// Scan walks root and returns the deduplicated dependencies of every
// recognized manifest, sorted by ecosystem, name and version. Manifests that
// fail to parse are logged and skipped.
func Scan(root string, opts Options) ([]Dependency, error) {
	parsers := opts.Parsers
	if len(parsers) == 0 {
		parsers = Parsers()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scan %s", root)
	}
	if !info.IsDir() {
		return ParseFile(root)
	}

	seen := make(map[string]bool)
	var out []Dependency

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		p := supporting(parsers, d.Name())
		if p == nil {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)

		deps, err := p.Parse(path)
		if err != nil {
			logger.Warn("skip manifest", "path", rel, "err", err)
			return nil
		}
		logger.Debug("manifest", "path", rel, "type", p.Type(), "deps", len(deps))

		for _, dep := range deps {
			dep.Manifest = rel
			k := string(dep.Ecosystem) + "|" + dep.Name + "|" + dep.Version
			if !seen[k] {
				seen[k] = true
				out = append(out, dep)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "scan %s", root)
	}

	slices.SortFunc(out, func(a, b Dependency) int {
		return cmp.Or(
			cmp.Compare(a.Ecosystem, b.Ecosystem),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.Version, b.Version),
		)
	})
	return out, nil
}

func supporting(parsers []Parser, name string) Parser {
	for _, p := range parsers {
		if p.Supports(name) {
			return p
		}
	}
	return nil
}

// valid drops names that could not be sent to a registry.
func valid(name string) bool {
	return errors.ValidatePackageName(name) == nil
}
