package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/licensetower/pkg/analysis"
	"github.com/matzehuels/licensetower/pkg/compat"
	"github.com/matzehuels/licensetower/pkg/license"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableBorderStyle = lipgloss.NewStyle().Foreground(colorDim)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// licenseStyle colors a license name by how much attention it needs.
func licenseStyle(name string, conflicting map[string]bool, engine *compat.Engine) lipgloss.Style {
	switch {
	case license.IsSentinel(name):
		return styleSentinel
	case conflicting[name]:
		return styleIconError
	case engine.CommerciallyRisky(name):
		return StyleWarning
	}
	return StyleValue
}

// conflicting returns the licenses that appear in an incompatible pair.
func conflicting(a compat.Analysis) map[string]bool {
	out := make(map[string]bool)
	for _, p := range a.Issues {
		out[p.LicenseA] = true
		out[p.LicenseB] = true
	}
	return out
}

// dependencyTable renders one row per resolved dependency.
func dependencyTable(report *analysis.Report, engine *compat.Engine) string {
	bad := conflicting(report.Compatibility)
	rows := make([][]string, 0, len(report.Dependencies))
	for _, r := range report.Dependencies {
		version := r.Info.Version
		if version == "" {
			version = r.Dependency.Version
		}
		if version == "" {
			version = "—"
		}
		source := iconFresh
		if r.Cached {
			source = iconCached
		}
		rows = append(rows, []string{string(r.Dependency.Ecosystem), r.Dependency.Name, version, r.Info.License, source})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("Ecosystem", "Package", "Version", "License", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle.Padding(0, 1)
			}
			r := report.Dependencies[row]
			switch col {
			case 0, 2:
				return tableCellStyle.Foreground(colorGray)
			case 3:
				return licenseStyle(r.Info.License, bad, engine).Padding(0, 1)
			case 4:
				if r.Cached {
					return styleCached.Padding(0, 1)
				}
				return styleComputed.Padding(0, 1)
			}
			return tableCellStyle
		})
	return t.Render()
}

// matrixTable renders the compatibility matrix with ✓ and ✗ cells.
func matrixTable(m compat.Matrix) string {
	headers := append([]string{""}, m.Licenses...)
	rows := make([][]string, m.Size())
	for i, l := range m.Licenses {
		row := make([]string, 0, m.Size()+1)
		row = append(row, l)
		for j := range m.Licenses {
			if m.At(i, j).Compatible {
				row = append(row, iconSuccess)
			} else {
				row = append(row, iconError)
			}
		}
		rows[i] = row
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow || col == 0:
				return tableHeaderStyle.Padding(0, 1)
			case m.At(row, col-1).Compatible:
				return styleIconSuccess.Padding(0, 1).Align(lipgloss.Center)
			}
			return styleIconError.Padding(0, 1).Align(lipgloss.Center)
		})
	return t.Render()
}

// asymmetricWarning is shown when a matrix cell disagrees with its mirror.
const asymmetricWarning = "matrix is not symmetric; check the knowledge base for one-sided entries"

// renderAnalysis formats the matrix, issues, risk and recommendations of a
// license set.
func renderAnalysis(a compat.Analysis, risk compat.Risk, recs []string) string {
	var b strings.Builder
	if a.Matrix.Size() > 0 {
		b.WriteString(StyleTitle.Render("Compatibility"))
		b.WriteString("\n")
		b.WriteString(matrixTable(a.Matrix))
		b.WriteString("\n")
		if !a.Matrix.Symmetric() {
			fmt.Fprintf(&b, "%s %s\n", styleIconWarning.Render(iconWarning),
				StyleWarning.Render(asymmetricWarning))
		}
	}

	if len(a.Issues) > 0 {
		b.WriteString("\n")
		for _, p := range a.Issues {
			fmt.Fprintf(&b, "%s %s %s %s\n", styleIconError.Render(iconError),
				StyleValue.Render(p.LicenseA+" × "+p.LicenseB), StyleDim.Render("·"), p.Reason)
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", StyleDim.Render("Risk:"), riskStyle(risk).Render(string(risk)))
	for _, r := range recs {
		fmt.Fprintf(&b, "  %s %s\n", StyleDim.Render(iconInfo), r)
	}
	return b.String()
}

// printReport writes the terminal rendering of a scan.
func printReport(report *analysis.Report, engine *compat.Engine) {
	fmt.Println(StyleTitle.Render("License Report"))
	if len(report.Dependencies) > 0 {
		fmt.Println(dependencyTable(report, engine))
	}
	printSummary(report.Summary, report.Duration)
	printNewline()
	fmt.Print(renderAnalysis(report.Compatibility, report.Risk, report.Recommendations))
}
