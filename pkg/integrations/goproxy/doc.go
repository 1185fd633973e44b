// Package goproxy provides an HTTP client for the Go Module Proxy.
//
// # Overview
//
// This package resolves module versions through the Go Module Proxy
// (https://proxy.golang.org). The proxy protocol carries no license
// metadata, so licenses are looked up on the hosting forge through a
// [LicenseResolver], typically a [github.Client].
//
// # Usage
//
//	gh := github.NewClient(token, integrations.Options{})
//	client := goproxy.NewClient(gh, integrations.Options{})
//	info, err := client.FetchLicense(ctx, "github.com/spf13/cobra", "v1.8.0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.License) // "Apache-2.0"
//
// # Version Resolution
//
// An empty version is resolved through the @latest endpoint. A given version
// is confirmed through @v/{version}.info, which also canonicalizes it.
//
// # Hosting
//
// Modules under github.com resolve directly. Modules under golang.org/x/
// resolve to their github.com/golang mirrors. Everything else reports
// [license.Unknown].
//
// # Path Escaping
//
// Module paths with uppercase letters are escaped per the Go module proxy
// protocol (uppercase becomes !lowercase) using golang.org/x/mod/module.
//
// [github.Client]: https://pkg.go.dev/github.com/matzehuels/licensetower/pkg/integrations/github#Client
package goproxy
