package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/matzehuels/licensetower/pkg/analysis"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func converter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdown
}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 72rem; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d0d7de; padding: 0.3rem 0.6rem; }
th { background: #f6f8fa; }
code { background: #f6f8fa; padding: 0.1rem 0.3rem; border-radius: 4px; }
</style>
</head>
<body>
`

// WriteHTML renders the Markdown report as a standalone HTML page.
func WriteHTML(w io.Writer, report *analysis.Report) error {
	var body bytes.Buffer
	if err := converter().Convert([]byte(Markdown(report)), &body); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	if _, err := fmt.Fprintf(w, htmlHead, html.EscapeString("License Report "+report.ID)); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
