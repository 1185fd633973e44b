package npm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/licensetower/pkg/integrations"
	"github.com/matzehuels/licensetower/pkg/license"
)

// Client provides access to the npm registry API.
// It handles HTTP requests with automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an npm registry client.
func NewClient(opts integrations.Options) *Client {
	return &Client{
		Client:  integrations.NewClient(opts),
		baseURL: "https://registry.npmjs.org",
	}
}

// Ecosystem implements [integrations.Fetcher].
func (c *Client) Ecosystem() license.Ecosystem { return license.Npm }

// FetchLicense retrieves license metadata for a package version.
// Package names are case-insensitive; scoped names ("@types/node") are
// supported.
func (c *Client) FetchLicense(ctx context.Context, pkg, version string) (*license.Info, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))

	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.PathEscape(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return nil, err
	}

	if version == "" {
		version = data.DistTags.Latest
	}
	v, ok := data.Versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: npm package %s version %s", integrations.ErrNotFound, pkg, version)
	}

	lic := v.License
	if lic == nil {
		lic = v.Licenses
	}
	if lic == nil {
		lic = data.License
	}

	return &license.Info{
		Name:        data.Name,
		Version:     version,
		License:     license.FromAny(lic),
		Description: v.Description,
		Repository:  integrations.NormalizeRepoURL(extractField(v.Repository, "url")),
		HomePage:    v.HomePage,
	}, nil
}

func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

type registryResponse struct {
	Name     string                    `json:"name"`
	License  any                       `json:"license"`
	DistTags distTags                  `json:"dist-tags"`
	Versions map[string]versionDetails `json:"versions"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Description string `json:"description"`
	License     any    `json:"license"`
	Licenses    any    `json:"licenses"`
	Repository  any    `json:"repository"`
	HomePage    string `json:"homepage"`
}

var _ integrations.Fetcher = (*Client)(nil)
