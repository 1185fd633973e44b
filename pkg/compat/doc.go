// Package compat decides whether the licenses found in a project can be
// combined, and summarizes the project's licensing exposure.
//
// The engine is a pure function library over license-name strings and a
// fixed [KnowledgeBase]. It performs no I/O and holds no mutable state, so a
// single [Engine] can be shared by any number of goroutines.
//
// # Compatibility
//
// [Engine.Check] normalizes both names with [Engine.Normalize] and then
// requires BOTH adjacency lists to name the other license. A license missing
// from the table is treated as unknown and therefore incompatible; this is
// never an error.
//
// # Project analysis
//
// [Engine.Analyze] builds a square [Matrix] over the distinct normalized
// licenses and lists every incompatible pair once. [Engine.RiskLevel] and
// [Engine.Recommendations] derive a coarse low/medium/high classification and
// advisory text from the same license set.
//
// The knowledge base is a curated table, not a legal proof. Use
// [KnowledgeBase.Asymmetries] after editing it to find entries that are only
// listed in one direction.
package compat
