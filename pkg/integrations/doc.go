// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// This package contains low-level API clients for fetching license metadata
// from package registries. Each registry has its own subpackage:
//
//   - [npm]: Node Package Manager
//   - [crates]: Rust crates.io
//   - [goproxy]: Go Module Proxy
//   - [pypi]: Python Package Index
//   - [nuget]: .NET NuGet gallery
//   - [github]: GitHub API for repository licenses and license texts
//
// # Client Pattern
//
// All registry clients implement [Fetcher]:
//
//	client := npm.NewClient(integrations.Options{RateLimit: 20})
//	info, err := client.FetchLicense(ctx, "lodash", "4.17.21")
//	fmt.Println(info.License) // MIT
//
// Clients handle:
//   - HTTP requests with retry and rate limiting
//   - API-specific parsing and license normalization
//
// Results are not cached here; the analysis package consults the metadata
// cache before calling a fetcher.
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality used by all registry
// clients: retries via [httputil.Retry], a token-bucket rate limiter and
// HTTP observability hooks.
//
// # Adding a New Registry
//
// To add support for a new package registry:
//
//  1. Create a subpackage: pkg/integrations/<registry>/
//  2. Define response structs matching the API schema
//  3. Implement a Client with a FetchLicense method
//  4. Use [NewClient] for HTTP with retries
//  5. Register it in the analysis fetcher registry
//
// [npm]: github.com/matzehuels/licensetower/pkg/integrations/npm
// [crates]: github.com/matzehuels/licensetower/pkg/integrations/crates
// [goproxy]: github.com/matzehuels/licensetower/pkg/integrations/goproxy
// [pypi]: github.com/matzehuels/licensetower/pkg/integrations/pypi
// [nuget]: github.com/matzehuels/licensetower/pkg/integrations/nuget
// [github]: github.com/matzehuels/licensetower/pkg/integrations/github
// [httputil.Retry]: github.com/matzehuels/licensetower/pkg/httputil.Retry
package integrations
