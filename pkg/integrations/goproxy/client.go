package goproxy

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"golang.org/x/mod/module"

	"github.com/matzehuels/licensetower/pkg/errors"
	"github.com/matzehuels/licensetower/pkg/integrations"
	"github.com/matzehuels/licensetower/pkg/license"
)

// LicenseResolver looks up the license of a hosted repository.
// [github.Client] satisfies this interface.
type LicenseResolver interface {
	RepoLicense(ctx context.Context, owner, repo string) (string, error)
}

// Client provides access to the Go module proxy API.
// It handles HTTP requests with automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL  string
	resolver LicenseResolver
}

// NewClient creates a Go module proxy client. A nil resolver reports every
// module as [license.Unknown].
func NewClient(resolver LicenseResolver, opts integrations.Options) *Client {
	return &Client{
		Client:   integrations.NewClient(opts),
		baseURL:  "https://proxy.golang.org",
		resolver: resolver,
	}
}

// Ecosystem implements [integrations.Fetcher].
func (c *Client) Ecosystem() license.Ecosystem { return license.Go }

// FetchLicense resolves a module version and looks up its license.
func (c *Client) FetchLicense(ctx context.Context, mod, version string) (*license.Info, error) {
	mod = strings.TrimSpace(mod)
	escaped, err := module.EscapePath(mod)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "module path %q", mod)
	}

	resolved, err := c.resolveVersion(ctx, mod, escaped, version)
	if err != nil {
		return nil, err
	}

	info := &license.Info{
		Name:    mod,
		Version: resolved,
		License: license.Unknown,
	}

	owner, repo, ok := hostedRepo(mod)
	if !ok {
		return info, nil
	}
	info.Repository = "https://github.com/" + owner + "/" + repo
	if c.resolver == nil {
		return info, nil
	}

	lic, err := c.resolver.RepoLicense(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	info.License = lic
	return info, nil
}

func (c *Client) resolveVersion(ctx context.Context, mod, escaped, version string) (string, error) {
	url := fmt.Sprintf("%s/%s/@latest", c.baseURL, escaped)
	if version != "" {
		ev, err := module.EscapeVersion(version)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "module version %q", version)
		}
		url = fmt.Sprintf("%s/%s/@v/%s.info", c.baseURL, escaped, ev)
	}

	var data versionInfo
	if err := c.Get(ctx, url, &data); err != nil {
		if stderrors.Is(err, integrations.ErrNotFound) {
			return "", fmt.Errorf("%w: go module %s", err, mod)
		}
		return "", err
	}
	if data.Version == "" {
		return version, nil
	}
	return data.Version, nil
}

// hostedRepo maps a module path to its GitHub repository.
func hostedRepo(mod string) (owner, repo string, ok bool) {
	if rest, found := strings.CutPrefix(mod, "golang.org/x/"); found {
		name, _, _ := strings.Cut(rest, "/")
		return "golang", name, name != ""
	}
	if !strings.HasPrefix(mod, "github.com/") {
		return "", "", false
	}
	return integrations.GitHubRepo(mod)
}

type versionInfo struct {
	Version string `json:"Version"`
	Time    string `json:"Time"`
}

var _ integrations.Fetcher = (*Client)(nil)
