// Package license defines the license record shared by the registry
// clients, the metadata cache and the analysis orchestrator.
//
// Registries report licenses in many shapes: a bare string, an object with a
// "type" field, a list of either, a free-text classifier, or nothing at all.
// [FromAny] collapses every shape into a single canonical string at the
// fetcher boundary so nothing downstream ever branches on the shape of a
// license value.
//
// Two sentinel values stand in for a failed lookup: [Unknown] when the
// registry did not report a license (or the fetch failed) and [Timeout] when
// the shared fetch deadline expired. Sentinels are cached like any other
// result.
package license
