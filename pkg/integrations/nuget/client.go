package nuget

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/matzehuels/licensetower/pkg/integrations"
	"github.com/matzehuels/licensetower/pkg/license"
)

// Client provides access to the NuGet registration API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a NuGet client.
func NewClient(opts integrations.Options) *Client {
	return &Client{
		Client:  integrations.NewClient(opts),
		baseURL: "https://api.nuget.org/v3/registration5-gz-semver2",
	}
}

// Ecosystem implements [integrations.Fetcher].
func (c *Client) Ecosystem() license.Ecosystem { return license.NuGet }

// FetchLicense retrieves license metadata for a package version. Package ids
// are case-insensitive. An empty version selects the highest listed version.
func (c *Client) FetchLicense(ctx context.Context, id, version string) (*license.Info, error) {
	lower := strings.ToLower(strings.TrimSpace(id))

	var index registrationIndex
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/index.json", c.baseURL, integrations.PathEscape(lower)), &index); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: nuget package %s", err, id)
		}
		return nil, err
	}

	entries, err := c.collect(ctx, index.Items, version)
	if err != nil {
		return nil, err
	}

	entry, ok := pick(entries, version)
	if !ok {
		return nil, fmt.Errorf("%w: nuget package %s version %s", integrations.ErrNotFound, id, version)
	}

	return &license.Info{
		Name:        entry.ID,
		Version:     entry.Version,
		License:     licenseOf(entry),
		Description: entry.Description,
		Repository:  repositoryURL(entry.ProjectURL),
		HomePage:    entry.ProjectURL,
	}, nil
}

func repositoryURL(projectURL string) string {
	if _, _, ok := integrations.GitHubRepo(projectURL); ok {
		return integrations.NormalizeRepoURL(projectURL)
	}
	return ""
}

// collect gathers catalog entries, fetching linked pages that are not
// inlined. When a version is requested, only pages whose range could hold it
// are fetched.
func (c *Client) collect(ctx context.Context, pages []registrationPage, version string) ([]catalogEntry, error) {
	var out []catalogEntry
	for _, p := range pages {
		if version != "" && !p.covers(version) {
			continue
		}
		items := p.Items
		if items == nil && p.ID != "" {
			var page registrationPage
			if err := c.Get(ctx, p.ID, &page); err != nil {
				return nil, err
			}
			items = page.Items
		}
		for _, it := range items {
			out = append(out, it.CatalogEntry)
		}
	}
	return out, nil
}

func pick(entries []catalogEntry, version string) (catalogEntry, bool) {
	var best catalogEntry
	found := false
	for _, e := range entries {
		if version != "" {
			if strings.EqualFold(e.Version, version) {
				return e, true
			}
			continue
		}
		if !found || compareVersions(e.Version, best.Version) > 0 {
			best, found = e, true
		}
	}
	return best, found
}

func licenseOf(e catalogEntry) string {
	if s := strings.TrimSpace(e.LicenseExpression); s != "" {
		return s
	}
	if u, err := url.Parse(e.LicenseURL); err == nil && u.Host == "licenses.nuget.org" {
		if expr, err := url.PathUnescape(strings.Trim(u.Path, "/")); err == nil && expr != "" {
			return expr
		}
	}
	return license.Unknown
}

// compareVersions orders NuGet versions using semver precedence. Versions
// that do not parse as semver sort below those that do.
func compareVersions(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

func canonical(v string) string {
	v = "v" + strings.TrimPrefix(v, "v")
	// Four-part legacy versions ("1.2.3.4") are not semver; keep the first three.
	if core, rest, _ := strings.Cut(v, "-"); strings.Count(core, ".") > 2 {
		parts := strings.SplitN(core, ".", 4)
		v = strings.Join(parts[:3], ".")
		if rest != "" {
			v += "-" + rest
		}
	}
	return v
}

type registrationIndex struct {
	Items []registrationPage `json:"items"`
}

type registrationPage struct {
	ID    string             `json:"@id"`
	Lower string             `json:"lower"`
	Upper string             `json:"upper"`
	Items []registrationLeaf `json:"items"`
}

func (p registrationPage) covers(version string) bool {
	if p.Lower == "" || p.Upper == "" {
		return true
	}
	return compareVersions(version, p.Lower) >= 0 && compareVersions(version, p.Upper) <= 0
}

type registrationLeaf struct {
	CatalogEntry catalogEntry `json:"catalogEntry"`
}

type catalogEntry struct {
	ID                string `json:"id"`
	Version           string `json:"version"`
	Description       string `json:"description"`
	LicenseExpression string `json:"licenseExpression"`
	LicenseURL        string `json:"licenseUrl"`
	ProjectURL        string `json:"projectUrl"`
}

var _ integrations.Fetcher = (*Client)(nil)
