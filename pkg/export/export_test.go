package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/licensetower/pkg/analysis"
	"github.com/matzehuels/licensetower/pkg/errors"
	"github.com/matzehuels/licensetower/pkg/license"
	"github.com/matzehuels/licensetower/pkg/manifest"
)

func testReport() *analysis.Report {
	results := []analysis.Result{
		{
			Dependency: manifest.Dependency{Ecosystem: license.Npm, Name: "left-pad", Version: "1.3.0", Manifest: "package.json"},
			Info:       license.Info{Name: "left-pad", Version: "1.3.0", License: "MIT", Repository: "https://github.com/stevemao/left-pad"},
			Cached:     true,
		},
		{
			Dependency: manifest.Dependency{Ecosystem: license.Crates, Name: "pipe|crate", Manifest: "Cargo.toml"},
			Info:       license.Info{Name: "pipe|crate", Version: "0.2.0", License: "Apache-2.0"},
		},
		{
			Dependency: manifest.Dependency{Ecosystem: license.PyPI, Name: "gpl-thing", Version: "1.0"},
			Info:       license.Info{Name: "gpl-thing", Version: "1.0", License: "GPL-2.0"},
		},
		{
			Dependency: manifest.Dependency{Ecosystem: license.Go, Name: "example.com/slow", Version: "v1.0.0"},
			Info:       *license.Failed("example.com/slow", "v1.0.0", license.Timeout),
			Error:      "context deadline exceeded",
		},
	}
	return analysis.New(analysis.Options{}).Evaluate(results)
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML, ".csv": FormatCSV,
		"md": FormatMarkdown, "markdown": FormatMarkdown, "html": FormatHTML,
		"dot": FormatDOT, "gv": FormatDOT, "svg": FormatSVG,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(pdf) = %v, want INVALID_FORMAT", err)
	}
}

func TestWriteJSON(t *testing.T) {
	report := testReport()
	var buf bytes.Buffer
	if err := Write(context.Background(), &buf, report, FormatJSON); err != nil {
		t.Fatal(err)
	}

	var got analysis.Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.ID != report.ID || len(got.Dependencies) != 4 || got.Risk != report.Risk {
		t.Errorf("decoded report differs: %+v", got)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(context.Background(), &buf, testReport(), FormatYAML); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("YAML output is in flow style:\n%s", out)
	}
	var doc struct {
		ID           string           `yaml:"id"`
		Licenses     []string         `yaml:"licenses"`
		Dependencies []map[string]any `yaml:"dependencies"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if doc.ID == "" || len(doc.Dependencies) != 4 {
		t.Errorf("decoded YAML = %+v", doc)
	}
	// "1.0" must stay a string, not turn into a float.
	info := doc.Dependencies[2]["info"].(map[string]any)
	if v, ok := info["version"].(string); !ok || v != "1.0" {
		t.Errorf("version = %#v, want string 1.0", info["version"])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(context.Background(), &buf, testReport(), FormatCSV); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want header + 4", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"npm", "left-pad", "1.3.0", "MIT", "true", "package.json", "https://github.com/stevemao/left-pad", ""}
	if strings.Join(rows[1], ",") != strings.Join(want, ",") {
		t.Errorf("row 1 = %v, want %v", rows[1], want)
	}
	if rows[2][2] != "0.2.0" {
		t.Errorf("resolved version = %q, want 0.2.0", rows[2][2])
	}
	if rows[4][3] != license.Timeout || rows[4][7] == "" {
		t.Errorf("failed row = %v", rows[4])
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(testReport())

	for _, want := range []string{
		"# License Report",
		"| Ecosystem | Package | Version | License | Source |",
		"| npm | left-pad | 1.3.0 | MIT | cache |",
		`pipe\|crate`,
		"_Timeout_",
		"## Compatibility Matrix",
		"**Apache-2.0** × **GPL-2.0**",
		"## Recommendations",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownEmpty(t *testing.T) {
	md := Markdown(analysis.New(analysis.Options{}).Evaluate(nil))
	if !strings.Contains(md, "_No dependencies found._") {
		t.Errorf("empty report:\n%s", md)
	}
	if strings.Contains(md, "Compatibility Matrix") {
		t.Error("empty report should have no matrix")
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(context.Background(), &buf, testReport(), FormatHTML); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"<!DOCTYPE html>", "<h1>License Report</h1>", "<table>", "<td>left-pad</td>", "</html>"} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testReport())

	for _, want := range []string{
		"graph G {",
		`"MIT" [label="MIT"];`,
		`"GPL-2.0" [label="GPL-2.0", fillcolor=orange];`,
		`"Timeout" [label="Timeout", fillcolor=lightgrey`,
		`"Apache-2.0" -- "GPL-2.0"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"MIT" -- "Apache-2.0"`) {
		t.Error("compatible pair drawn as an edge")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testReport()))
	if err != nil {
		t.Fatalf("RenderSVG failed: %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("unexpected SVG root: %.200s", svg)
	}
	// graphviz escapes '-' in text as &#45;.
	text := html.UnescapeString(string(svg))
	for _, want := range []string{"<title>GPL-2.0</title>", "Apache-2.0"} {
		if !strings.Contains(text, want) {
			t.Errorf("SVG does not contain %q", want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.25" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.25" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if plain := []byte("<svg><g/></svg>"); !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox was modified")
	}
}

func TestExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := ExportFile(context.Background(), testReport(), path, FormatMarkdown); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# License Report") {
		t.Errorf("file content = %.50q", data)
	}

	err = ExportFile(context.Background(), testReport(), filepath.Join(t.TempDir(), "missing", "r.md"), FormatMarkdown)
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("expected INVALID_PATH, got %v", err)
	}
}

func TestContentType(t *testing.T) {
	for _, f := range Formats {
		if ct := f.ContentType(); ct == "" || ct == "application/octet-stream" {
			t.Errorf("%s has no content type", f)
		}
	}
}
