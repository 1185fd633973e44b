// Package pkg holds the licensetower libraries.
//
// # Overview
//
// Licensetower inventories the licenses of a project's dependencies and
// reports which of them can be combined. The pkg directory is organized as:
//
//  1. [manifest] - Workspace scanning (package.json, Cargo.toml, go.mod, ...)
//  2. [integrations] - Registry clients (npm, crates.io, Go proxy, PyPI, NuGet, GitHub)
//  3. [cache] - Two-keyspace TTL cache for license metadata and texts
//  4. [storage] - Snapshot backends (file, SQLite, PostgreSQL, Redis, MongoDB)
//  5. [compat] - License normalization, compatibility matrix and risk
//  6. [analysis] - Concurrent resolution of a dependency set into a report
//  7. [export] - JSON, YAML, CSV, Markdown, HTML, DOT and SVG output
//
// Supporting packages: [config] (viper), [errors] (coded errors and input
// validation), [license] (shared types), [httputil] (retry),
// [observability] (hooks) and [buildinfo].
//
// # Architecture
//
// The typical data flow:
//
//	Workspace
//	    ↓
//	[manifest].Scan          → []Dependency
//	    ↓
//	[analysis].Analyze       → cache lookup, registry fetch on miss, cache store
//	    ↓
//	[compat].Analyze         → matrix, issues, risk, recommendations
//	    ↓
//	[export].Write           → json / yaml / csv / md / html / dot / svg
//
// # Quick Start
//
//	deps, _ := manifest.Scan(".", manifest.Options{})
//
//	c := cache.New(config.New(), cache.Options{})
//	store, _ := storage.Open(ctx, storage.Options{Driver: storage.DriverFile})
//	c.Init(ctx, store)
//	defer c.Close()
//
//	a := analysis.New(analysis.Options{
//	    Cache:    c,
//	    Fetchers: []integrations.Fetcher{npm.NewClient(integrations.Options{})},
//	})
//	report, _ := a.Analyze(ctx, deps)
//	_ = export.Write(ctx, os.Stdout, report, export.FormatMarkdown)
package pkg
