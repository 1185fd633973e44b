package crates

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/licensetower/pkg/integrations"
	"github.com/matzehuels/licensetower/pkg/license"
)

// Client provides access to the crates.io package registry API.
// It handles HTTP requests with automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
//
// Note: crates.io requires a User-Agent header; this client sets one automatically.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client. A User-Agent header is added to
// opts.Headers unless one is already set.
func NewClient(opts integrations.Options) *Client {
	headers := map[string]string{"User-Agent": integrations.UserAgent}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	opts.Headers = headers
	return &Client{
		Client:  integrations.NewClient(opts),
		baseURL: "https://crates.io/api/v1",
	}
}

// Ecosystem implements [integrations.Fetcher].
func (c *Client) Ecosystem() license.Ecosystem { return license.Crates }

// FetchLicense retrieves license metadata for a crate version.
//
// The crate parameter is case-sensitive and must match the published crate
// name exactly.
func (c *Client) FetchLicense(ctx context.Context, crate, version string) (*license.Info, error) {
	var data crateResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, integrations.PathEscape(crate)), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: crate %s", err, crate)
		}
		return nil, err
	}

	if version == "" {
		version = data.Crate.MaxStableVersion
	}
	if version == "" {
		version = data.Crate.MaxVersion
	}

	v, err := c.findVersion(ctx, crate, version, data.Versions)
	if err != nil {
		return nil, err
	}

	lic := v.License
	if lic == "" {
		lic = license.Unknown
	}
	return &license.Info{
		Name:        data.Crate.Name,
		Version:     version,
		License:     lic,
		Description: data.Crate.Description,
		Repository:  integrations.NormalizeRepoURL(data.Crate.Repository),
		HomePage:    data.Crate.HomePage,
	}, nil
}

// findVersion returns the requested version from the listing, or fetches it
// directly when the listing is truncated.
func (c *Client) findVersion(ctx context.Context, crate, version string, versions []crateVersion) (crateVersion, error) {
	for _, v := range versions {
		if v.Num == version {
			return v, nil
		}
	}

	var data versionResponse
	url := fmt.Sprintf("%s/crates/%s/%s", c.baseURL, integrations.PathEscape(crate), integrations.PathEscape(version))
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return crateVersion{}, fmt.Errorf("%w: crate %s version %s", err, crate, version)
		}
		return crateVersion{}, err
	}
	return data.Version, nil
}

type crateResponse struct {
	Crate struct {
		Name             string `json:"name"`
		MaxVersion       string `json:"max_version"`
		MaxStableVersion string `json:"max_stable_version"`
		Description      string `json:"description"`
		Repository       string `json:"repository"`
		HomePage         string `json:"homepage"`
	} `json:"crate"`
	Versions []crateVersion `json:"versions"`
}

type crateVersion struct {
	Num     string `json:"num"`
	License string `json:"license"`
	Yanked  bool   `json:"yanked"`
}

type versionResponse struct {
	Version crateVersion `json:"version"`
}

var _ integrations.Fetcher = (*Client)(nil)
