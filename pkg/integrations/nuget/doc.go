// Package nuget provides an HTTP client for the NuGet V3 registration API.
//
// # Overview
//
// This package fetches license metadata from nuget.org, the package
// repository for .NET.
//
// # Usage
//
//	client := nuget.NewClient(integrations.Options{})
//	info, err := client.FetchLicense(ctx, "Newtonsoft.Json", "13.0.3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.License) // "MIT"
//
// # Registration Pages
//
// The registration index inlines catalog entries for small packages. Large
// packages only link to their pages; those are fetched on demand until the
// requested version is found.
//
// # License Selection
//
// The catalog entry's licenseExpression is used when present. Older packages
// only publish a licenseUrl; when it points at licenses.nuget.org the
// expression is recovered from the URL. Anything else reports
// [license.Unknown].
package nuget
