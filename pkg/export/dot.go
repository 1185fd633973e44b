package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/licensetower/pkg/analysis"
	"github.com/matzehuels/licensetower/pkg/compat"
	"github.com/matzehuels/licensetower/pkg/license"
)

// ToDOT converts the report's compatibility analysis to Graphviz DOT. Each
// distinct license is a node and every incompatible pair a red edge whose
// tooltip carries the reason. Commercially risky licenses are filled orange,
// sentinels grey.
func ToDOT(report *analysis.Report) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=red, penwidth=2];\n")
	buf.WriteString("\n")

	engine := compat.Default()
	for _, l := range report.Compatibility.Matrix.Licenses {
		attrs := fmt.Sprintf("label=%q", l)
		switch {
		case license.IsSentinel(l):
			attrs += ", fillcolor=lightgrey, style=\"rounded,filled,dashed\""
		case engine.CommerciallyRisky(l):
			attrs += ", fillcolor=orange"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", l, attrs)
	}

	buf.WriteString("\n")
	for _, p := range report.Compatibility.Issues {
		fmt.Fprintf(&buf, "  %q -- %q [tooltip=%q];\n", p.LicenseA, p.LicenseB, p.Reason)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from a
// zero origin at its natural size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
