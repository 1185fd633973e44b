package github

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/matzehuels/licensetower/pkg/errors"
	"github.com/matzehuels/licensetower/pkg/integrations"
	"github.com/matzehuels/licensetower/pkg/license"
)

// SourceName labels license texts fetched by this client in the cache.
const SourceName = "github"

// noAssertion is the SPDX identifier GitHub reports for unrecognized licenses.
const noAssertion = "NOASSERTION"

// Client provides access to the GitHub API for license lookups.
// It handles HTTP requests with automatic retries and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate limits).
func NewClient(token string, opts integrations.Options) *Client {
	headers := map[string]string{
		"Accept":     "application/vnd.github+json",
		"User-Agent": integrations.UserAgent,
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	opts.Headers = headers

	return &Client{
		Client:  integrations.NewClient(opts),
		baseURL: "https://api.github.com",
	}
}

// RepoLicense returns the SPDX identifier GitHub detected for a repository.
// Repositories without a recognized license yield [license.Unknown].
func (c *Client) RepoLicense(ctx context.Context, owner, repo string) (string, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", err
	}

	var data repoLicenseResponse
	url := fmt.Sprintf("%s/repos/%s/%s/license", c.baseURL, owner, repo)
	if err := c.Get(ctx, url, &data); err != nil {
		if stderrors.Is(err, integrations.ErrNotFound) {
			return "", fmt.Errorf("%w: github license for %s/%s", err, owner, repo)
		}
		return "", err
	}

	switch spdx := data.License.SPDXID; spdx {
	case "", noAssertion:
		return license.Unknown, nil
	default:
		return spdx, nil
	}
}

// LicenseText fetches the text of a well-known license by name or key.
func (c *Client) LicenseText(ctx context.Context, name string) (*LicenseText, error) {
	key, err := LicenseKey(name)
	if err != nil {
		return nil, err
	}

	var data licenseResponse
	if err := c.Get(ctx, c.baseURL+"/licenses/"+key, &data); err != nil {
		if stderrors.Is(err, integrations.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrCodeLicenseNotFound, err, "license %s", name)
		}
		return nil, err
	}

	return &LicenseText{
		Key:    data.Key,
		SPDXID: data.SPDXID,
		Name:   data.Name,
		Body:   data.Body,
		URL:    data.HTMLURL,
	}, nil
}

// FetchText returns the text of a license and the source label to store
// with it.
func (c *Client) FetchText(ctx context.Context, name string) (text, source string, err error) {
	lt, err := c.LicenseText(ctx, name)
	if err != nil {
		return "", "", err
	}
	return lt.Body, SourceName, nil
}
