package export

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/licensetower/pkg/analysis"
	"github.com/matzehuels/licensetower/pkg/errors"
)

// Format identifies an output format.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatDOT      Format = "dot"
	FormatSVG      Format = "svg"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatCSV, FormatMarkdown, FormatHTML, FormatDOT, FormatSVG}

var formatAliases = map[string]Format{
	"yml":      FormatYAML,
	"markdown": FormatMarkdown,
	"htm":      FormatHTML,
	"gv":       FormatDOT,
	"graphviz": FormatDOT,
}

// ParseFormat resolves a format name or file extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	if f, ok := formatAliases[s]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", s)
}

// ContentType returns the MIME type of a format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

// Write renders report to w in the given format.
func Write(ctx context.Context, w io.Writer, report *analysis.Report, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, report)
	case FormatYAML:
		return WriteYAML(w, report)
	case FormatCSV:
		return WriteCSV(w, report)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(report))
		return err
	case FormatHTML:
		return WriteHTML(w, report)
	case FormatDOT:
		_, err := io.WriteString(w, ToDOT(report))
		return err
	case FormatSVG:
		svg, err := RenderSVG(ctx, ToDOT(report))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
}

// ExportFile writes report to a file at path.
// This is a convenience wrapper around [Write] for file-based output.
func ExportFile(ctx context.Context, report *analysis.Report, path string, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := Write(ctx, out, report, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
