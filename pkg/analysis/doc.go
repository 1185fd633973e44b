// Package analysis orchestrates a license scan.
//
// An [Analyzer] takes the dependencies found by [manifest.Scan], resolves
// each one through the metadata cache or, on a miss, through the registry
// fetcher for its ecosystem, and assembles a [Report] with the
// compatibility matrix, risk level and recommendations.
//
// # Fetching
//
// Fetches run concurrently, bounded by Options.Concurrency. Each fetch gets
// Options.Timeout. A fetch that fails is recorded as [license.Unknown], or
// [license.Timeout] when its deadline expired, and the sentinel is stored in
// the cache like any other result so the next scan within the TTL does not
// hit the registry again.
//
// Cancelling the context passed to [Analyzer.Analyze] aborts the scan.
//
// # License Text
//
// [Analyzer.LicenseText] serves license texts from the cache's text keyspace
// and falls back to a [TextSource], storing what it finds.
//
// [manifest.Scan]: https://pkg.go.dev/github.com/matzehuels/licensetower/pkg/manifest#Scan
package analysis
