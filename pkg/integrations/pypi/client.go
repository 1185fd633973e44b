package pypi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/licensetower/pkg/integrations"
	"github.com/matzehuels/licensetower/pkg/license"
)

// Client provides access to the PyPI package registry API.
// It handles HTTP requests with automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client.
func NewClient(opts integrations.Options) *Client {
	return &Client{
		Client:  integrations.NewClient(opts),
		baseURL: "https://pypi.org/pypi",
	}
}

// Ecosystem implements [integrations.Fetcher].
func (c *Client) Ecosystem() license.Ecosystem { return license.PyPI }

// FetchLicense retrieves license metadata for a package release. An empty
// version selects the latest release.
//
// The pkg parameter is normalized automatically (case-insensitive, underscores→hyphens).
func (c *Client) FetchLicense(ctx context.Context, pkg, version string) (*license.Info, error) {
	pkg = integrations.NormalizePkgName(pkg)

	url := fmt.Sprintf("%s/%s/json", c.baseURL, pkg)
	if version != "" {
		url = fmt.Sprintf("%s/%s/%s/json", c.baseURL, pkg, integrations.PathEscape(version))
	}

	var data apiResponse
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return nil, err
	}

	lic := strings.TrimSpace(data.Info.LicenseExpression)
	if lic == "" {
		lic = extractLicenseType(data.Info.License, data.Info.Classifiers)
	}
	if lic == "" {
		lic = license.Unknown
	}

	return &license.Info{
		Name:        data.Info.Name,
		Version:     data.Info.Version,
		License:     lic,
		Description: data.Info.Summary,
		Repository:  integrations.NormalizeRepoURL(repositoryURL(data.Info.ProjectURLs)),
		HomePage:    data.Info.HomePage,
	}, nil
}

// repositoryURL picks the source link from project_urls.
func repositoryURL(urls map[string]any) string {
	for _, k := range []string{"Source", "Source Code", "Repository", "Code", "GitHub"} {
		if s, ok := urls[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

type apiResponse struct {
	Info apiInfo `json:"info"`
}

type apiInfo struct {
	Name              string         `json:"name"`
	Version           string         `json:"version"`
	Summary           string         `json:"summary"`
	License           string         `json:"license"`
	LicenseExpression string         `json:"license_expression"`
	Classifiers       []string       `json:"classifiers"`
	ProjectURLs       map[string]any `json:"project_urls"`
	HomePage          string         `json:"home_page"`
}

// extractLicenseType extracts a short license identifier from PyPI data.
// It prefers classifiers (e.g., "License :: OSI Approved :: MIT License" -> "MIT License")
// and falls back to the license field if it's short enough.
func extractLicenseType(lic string, classifiers []string) string {
	var fromClassifiers []string
	for _, c := range classifiers {
		if strings.HasPrefix(c, "License :: ") {
			parts := strings.Split(c, " :: ")
			if len(parts) >= 3 {
				fromClassifiers = append(fromClassifiers, parts[len(parts)-1])
			}
		}
	}
	if len(fromClassifiers) > 0 {
		return license.FromAny(fromClassifiers)
	}

	lic = strings.TrimSpace(lic)
	if lic != "" && len(lic) < 100 && !strings.Contains(lic, "\n") {
		return lic
	}

	// Common patterns: "MIT License", "BSD 3-Clause License", "Apache License 2.0"
	if lic != "" {
		firstLine := strings.TrimSpace(strings.Split(lic, "\n")[0])
		if len(firstLine) < 50 {
			return firstLine
		}
	}
	return ""
}

var _ integrations.Fetcher = (*Client)(nil)
