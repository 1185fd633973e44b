// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches license metadata from the npm registry
// (https://registry.npmjs.org), the package manager for JavaScript.
//
// # Usage
//
//	client := npm.NewClient(integrations.Options{})
//	info, err := client.FetchLicense(ctx, "express", "4.18.2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.Name, info.Version, info.License)
//
// # License Field
//
// Packages declare licenses in several shapes over the registry's history:
// an SPDX string ("MIT"), an object ({"type": "MIT", "url": ...}), or a
// legacy "licenses" array of such objects. All are normalized to a single
// string; arrays are joined with " OR ".
//
// # Version Selection
//
// An empty version selects the version tagged "latest" in dist-tags. A
// version missing from the packument is reported as not found.
package npm
