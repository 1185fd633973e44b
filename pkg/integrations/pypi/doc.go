// Package pypi provides an HTTP client for the Python Package Index API.
//
// # Overview
//
// This package fetches license metadata from PyPI (https://pypi.org), the
// official repository for Python packages.
//
// # Usage
//
//	client := pypi.NewClient(integrations.Options{})
//	info, err := client.FetchLicense(ctx, "requests", "2.31.0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.License)
//
// # License Selection
//
// PyPI metadata carries license information in three places. They are
// consulted in this order:
//
//  1. license_expression (PEP 639 SPDX expression)
//  2. "License ::" trove classifiers, using the last segment of each
//  3. the free-form license field, when it is short enough to be a name
//
// Multiple classifiers are joined with " OR ".
//
// Package names are normalized following PEP 503.
package pypi
