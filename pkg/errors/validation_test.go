package errors

import (
	"strings"
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "requests", false},
		{"valid with dash", "my-package", false},
		{"valid with underscore", "my_package", false},
		{"valid with dot", "my.package", false},
		{"valid scoped npm", "@scope/package", false},
		{"valid go module", "github.com/spf13/cobra", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty means latest", "", false},
		{"semver", "1.2.3", false},
		{"go pseudo version", "v0.0.0-20230515195305-f3d0a9c9a5cc", false},
		{"prerelease", "2.0.0-beta.1", false},

		{"space", "1.2 .3", true},
		{"slash", "1.2/3", true},
		{"control", "1.2\x00", true},
		{"too long", strings.Repeat("1", 200), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLicenseName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"spdx", "Apache-2.0", false},
		{"free text", "BSD 3-Clause License", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"control", "MIT\x07", true},
		{"too long", strings.Repeat("a", 201), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLicenseName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLicenseName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidLicense) {
				t.Errorf("expected INVALID_LICENSE code, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateManifestFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid package.json", "package.json", false},
		{"valid Cargo.toml", "Cargo.toml", false},
		{"valid csproj", "App.csproj", false},

		{"empty", "", true},
		{"with path /", "path/to/file", true},
		{"with path \\", "path\\to\\file", true},
		{"hidden file", ".hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateManifestFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateManifestFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "package.json", false},
		{"nested", "services/api/go.mod", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret", true},
		{"backslash", "dir\\file", true},
		{"null", "a\x00b", true},
		{"too long", strings.Repeat("a/", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
