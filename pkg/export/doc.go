// Package export renders analysis reports in machine- and human-readable
// formats.
//
// # Formats
//
//   - json: the full [analysis.Report], indented
//   - yaml: the same document as YAML, keys in JSON order
//   - csv: one row per dependency
//   - md: a Markdown report with dependency table, matrix and advice
//   - html: the Markdown report rendered with goldmark (GFM tables)
//   - dot: a Graphviz graph with one node per license and a red edge for
//     every incompatible pair
//   - svg: the DOT graph laid out by the embedded Graphviz (go-graphviz)
//
// # Usage
//
//	f, _ := export.ParseFormat("md")
//	if err := export.Write(ctx, os.Stdout, report, f); err != nil {
//	    log.Fatal(err)
//	}
//
// [analysis.Report]: https://pkg.go.dev/github.com/matzehuels/licensetower/pkg/analysis#Report
package export
