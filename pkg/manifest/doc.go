// Package manifest reads dependency declarations from project manifests.
//
// # Overview
//
// [Scan] walks a workspace and collects the dependencies declared by every
// manifest it recognizes:
//
//   - package.json (npm): dependencies, devDependencies, peerDependencies
//   - Cargo.toml (crates): dependencies, dev-dependencies, build-dependencies
//   - go.mod (go): every require, with replace directives applied
//   - requirements*.txt (pypi)
//   - *.csproj (nuget): PackageReference items
//
// Vendored and generated trees (node_modules, .git, vendor, target, bin,
// obj, .venv) are skipped.
//
// # Versions
//
// Manifests declare ranges, registries serve exact versions. [Resolve]
// reduces a range to the version it names when that is a complete semantic
// version ("^1.2.3" → "1.2.3"). Anything looser resolves to "", which the
// registry clients treat as "latest".
//
// Local dependencies (file:, path =, local replace targets) carry no
// registry license and are omitted.
package manifest
