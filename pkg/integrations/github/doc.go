// Package github provides a GitHub API client for license data.
//
// Two endpoints are used:
//
//   - GET /repos/{owner}/{repo}/license reports the SPDX identifier GitHub
//     detected for a repository. The goproxy client uses it for modules
//     hosted on github.com, since the Go module proxy carries no license
//     metadata.
//   - GET /licenses/{key} returns the full text of a well-known license.
//     It feeds the text keyspace of the metadata cache.
//
// # Authentication
//
// Unauthenticated requests are limited to 60 per hour. Pass a token to
// [NewClient] (configured as github.token or LICENSETOWER_GITHUB_TOKEN) to
// raise the limit.
//
// # Usage
//
//	client := github.NewClient(token, integrations.Options{})
//	spdx, err := client.RepoLicense(ctx, "spf13", "cobra")
//	text, source, err := client.FetchText(ctx, "Apache-2.0")
package github
