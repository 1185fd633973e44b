// Package crates provides an HTTP client for the crates.io API.
//
// # Overview
//
// This package fetches license metadata from crates.io (https://crates.io),
// the Rust community's package registry.
//
// # Usage
//
//	client := crates.NewClient(integrations.Options{})
//	info, err := client.FetchLicense(ctx, "serde", "1.0.193")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.License) // "MIT OR Apache-2.0"
//
// # Version Selection
//
// License fields are per version on crates.io. A requested version is looked
// up in the crate's version list, then through the single-version endpoint.
// An empty version selects max_stable_version, falling back to max_version.
//
// # User-Agent
//
// The client includes a User-Agent header as requested by crates.io policy.
package crates
