package github

import (
	"regexp"
	"strings"

	"github.com/matzehuels/licensetower/pkg/errors"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
	// License keys: lowercase SPDX-like identifiers
	validKey = regexp.MustCompile(`^[a-z0-9][a-z0-9.+-]{0,63}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errors.New(errors.ErrCodeInvalidPackage, "owner is required")
	}
	if !validOwner.MatchString(owner) {
		return errors.New(errors.ErrCodeInvalidPackage, "invalid owner %q: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen", owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return errors.New(errors.ErrCodeInvalidPackage, "repo is required")
	}
	if !validRepo.MatchString(repo) {
		return errors.New(errors.ErrCodeInvalidPackage, "invalid repo %q: must be 1-100 alphanumeric characters, hyphens, underscores, or dots", repo)
	}
	return nil
}

// ValidateRepoRef validates both owner and repo parameters.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}

// ParseRepoRef parses an "owner/repo" string and validates both parts.
func ParseRepoRef(ref string) (owner, repo string, err error) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 {
		return "", "", errors.New(errors.ErrCodeInvalidPackage, "invalid repo %q: use owner/repo", ref)
	}
	owner, repo = parts[0], parts[1]
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", "", err
	}
	return owner, repo, nil
}

// LicenseKey converts a license name to a GitHub license key
// ("Apache-2.0" becomes "apache-2.0").
func LicenseKey(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if !validKey.MatchString(key) {
		return "", errors.New(errors.ErrCodeInvalidLicense, "no GitHub license key for %q", name)
	}
	return key, nil
}
