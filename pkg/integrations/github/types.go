package github

// licenseRef is GitHub's short description of a license.
type licenseRef struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id"`
}

// repoLicenseResponse is returned by GET /repos/{owner}/{repo}/license.
type repoLicenseResponse struct {
	Name    string     `json:"name"`
	Path    string     `json:"path"`
	HTMLURL string     `json:"html_url"`
	License licenseRef `json:"license"`
}

// licenseResponse is returned by GET /licenses/{key}.
type licenseResponse struct {
	licenseRef
	HTMLURL string `json:"html_url"`
	Body    string `json:"body"`
}

// LicenseText is the full text of a license.
type LicenseText struct {
	Key    string // GitHub license key, e.g. "apache-2.0"
	SPDXID string // SPDX identifier, e.g. "Apache-2.0"
	Name   string // Display name
	Body   string // License text
	URL    string // choosealicense.com page
}
