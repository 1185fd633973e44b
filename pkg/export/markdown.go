package export

import (
	"fmt"
	"strings"

	"github.com/matzehuels/licensetower/pkg/analysis"
	"github.com/matzehuels/licensetower/pkg/license"
)

// Markdown renders report as a GitHub-flavored Markdown document.
func Markdown(report *analysis.Report) string {
	var b strings.Builder

	b.WriteString("# License Report\n\n")
	fmt.Fprintf(&b, "Generated %s · report `%s`\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"), report.ID)

	s := report.Summary
	fmt.Fprintf(&b, "**%d** dependencies · **%d** cached · **%d** fetched · **%d** unresolved · risk **%s**\n\n",
		s.Total, s.Cached, s.Fetched, s.Failed, report.Risk)

	b.WriteString("## Dependencies\n\n")
	if len(report.Dependencies) == 0 {
		b.WriteString("_No dependencies found._\n\n")
	} else {
		b.WriteString("| Ecosystem | Package | Version | License | Source |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, r := range report.Dependencies {
			version := r.Info.Version
			if version == "" {
				version = r.Dependency.Version
			}
			lic := cell(r.Info.License)
			if license.IsSentinel(r.Info.License) {
				lic = "_" + lic + "_"
			}
			source := "registry"
			if r.Cached {
				source = "cache"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				r.Dependency.Ecosystem, cell(r.Dependency.Name), cell(version), lic, source)
		}
		b.WriteString("\n")
	}

	writeMatrix(&b, report)

	b.WriteString("## Issues\n\n")
	if len(report.Compatibility.Issues) == 0 {
		b.WriteString("No incompatible license pairs.\n\n")
	} else {
		for _, p := range report.Compatibility.Issues {
			fmt.Fprintf(&b, "- **%s** × **%s**: %s\n", p.LicenseA, p.LicenseB, p.Reason)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	for _, r := range report.Recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	return b.String()
}

func writeMatrix(b *strings.Builder, report *analysis.Report) {
	m := report.Compatibility.Matrix
	if m.Size() == 0 {
		return
	}
	b.WriteString("## Compatibility Matrix\n\n|   |")
	for _, l := range m.Licenses {
		fmt.Fprintf(b, " %s |", cell(l))
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat(":-:|", m.Size()))
	b.WriteString("\n")
	for i, l := range m.Licenses {
		fmt.Fprintf(b, "| **%s** |", cell(l))
		for j := range m.Licenses {
			mark := "✓"
			if !m.At(i, j).Compatible {
				mark = "✗"
			}
			fmt.Fprintf(b, " %s |", mark)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\n", " ")

func cell(s string) string { return cellReplacer.Replace(s) }
