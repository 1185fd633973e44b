package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/licensetower/pkg/analysis"
	"github.com/matzehuels/licensetower/pkg/license"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	detailPaneStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// ReportModel - Interactive report browser
// =============================================================================

// Filters cycled with "f".
const (
	filterAll = iota
	filterProblems
	filterUnresolved
	filterCount
)

var filterNames = [filterCount]string{"all", "problems", "unresolved"}

// ReportModel is the bubbletea model for browsing a report.
type ReportModel struct {
	Report  *analysis.Report
	Cursor  int
	Offset  int
	Height  int
	Filter  int
	Details bool

	analyzer *analysis.Analyzer
	visible  []int // indexes into Report.Dependencies
	conflict map[string]bool
}

// NewReportModel creates a browser over report. The analyzer supplies the
// compatibility engine the report was evaluated with.
func NewReportModel(report *analysis.Report, analyzer *analysis.Analyzer) ReportModel {
	m := ReportModel{
		Report:   report,
		Height:   15,
		analyzer: analyzer,
		conflict: conflicting(report.Compatibility),
	}
	m.applyFilter()
	return m
}

// problem reports whether a result needs attention: unresolved, commercially
// risky or part of an incompatible pair.
func (m ReportModel) problem(r analysis.Result) bool {
	if license.IsSentinel(r.Info.License) || m.analyzer.Engine().CommerciallyRisky(r.Info.License) {
		return true
	}
	for _, l := range m.components(r) {
		if m.conflict[l] {
			return true
		}
	}
	return false
}

func (m ReportModel) components(r analysis.Result) []string {
	return m.analyzer.Components(r.Info.License)
}

func (m *ReportModel) applyFilter() {
	m.visible = nil
	for i, r := range m.Report.Dependencies {
		switch m.Filter {
		case filterProblems:
			if !m.problem(r) {
				continue
			}
		case filterUnresolved:
			if !license.IsSentinel(r.Info.License) {
				continue
			}
		}
		m.visible = append(m.visible, i)
	}
	m.Cursor, m.Offset = 0, 0
}

// Selected returns the result under the cursor, or nil when the filtered
// list is empty.
func (m ReportModel) Selected() *analysis.Result {
	if len(m.visible) == 0 {
		return nil
	}
	return &m.Report.Dependencies[m.visible[m.Cursor]]
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "f":
			m.Filter = (m.Filter + 1) % filterCount
			m.applyFilter()
		case "enter", " ":
			m.Details = !m.Details
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

func (m ReportModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("License Report"))
	b.WriteString("  ")
	b.WriteString(riskStyle(m.Report.Risk).Render("risk " + string(m.Report.Risk)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("↑/↓ navigate  ⏎ details  f filter (%s)  q quit", filterNames[m.Filter])))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(StyleSuccess.Render("  Nothing matches this filter."))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.visible))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.Report.Dependencies[m.visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, string(r.Dependency.Ecosystem), r.Dependency.Name, r.Info.License})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("", "Ecosystem", "Package", "License").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.visible) {
				return lipgloss.NewStyle()
			}
			r := m.Report.Dependencies[m.visible[idx]]
			base := lipgloss.NewStyle()
			if col == 3 {
				base = licenseStyle(r.Info.License, m.conflict, m.analyzer.Engine())
			} else if col == 1 {
				base = base.Foreground(colorGray)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))
	b.WriteString("\n")

	if m.Details {
		b.WriteString(detailPaneStyle.Render(m.details(*m.Selected())))
		b.WriteString("\n")
	}
	return b.String()
}

func (m ReportModel) details(r analysis.Result) string {
	var lines []string
	add := func(k, v string) {
		if v != "" {
			lines = append(lines, detailKeyStyle.Render(k)+" "+v)
		}
	}
	version := r.Info.Version
	if version == "" {
		version = r.Dependency.Version
	}
	add("Package", r.Dependency.Name+" "+version)
	add("License", r.Info.License)
	add("Manifest", r.Dependency.Manifest)
	add("Repository", r.Info.Repository)
	add("Homepage", r.Info.HomePage)
	add("Summary", r.Info.Description)
	add("Error", r.Error)

	for _, p := range m.Report.Compatibility.Issues {
		for _, l := range m.components(r) {
			if l == p.LicenseA || l == p.LicenseB {
				lines = append(lines, styleIconError.Render(iconError)+" "+p.LicenseA+" × "+p.LicenseB+": "+p.Reason)
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// runBrowser shows report in a full-screen browser until the user quits.
func runBrowser(report *analysis.Report, analyzer *analysis.Analyzer) error {
	_, err := tea.NewProgram(NewReportModel(report, analyzer), tea.WithAltScreen()).Run()
	return err
}
