package compat

import (
	"strings"

	"github.com/matzehuels/licensetower/pkg/license"
)

const (
	// ReasonSame is the reason reported for two identical licenses.
	ReasonSame = "Same license"

	// ReasonGeneric is reported for incompatible pairs without a curated reason,
	// including pairs where either license is missing from the table.
	ReasonGeneric = "Licenses may have conflicting terms; compatibility could not be confirmed from the knowledge base"
)

// Pair is the compatibility verdict for two normalized licenses.
type Pair struct {
	LicenseA   string `json:"licenseA"`
	LicenseB   string `json:"licenseB"`
	Compatible bool   `json:"compatible"`
	Reason     string `json:"reason,omitempty"`
}

// Matrix is a square grid over distinct normalized licenses:
// Cells[i][j] is the verdict for Licenses[i] against Licenses[j].
type Matrix struct {
	Licenses []string `json:"licenses"`
	Cells    [][]Pair `json:"cells"`
}

// Size returns the number of rows (and columns).
func (m Matrix) Size() int { return len(m.Licenses) }

// At returns the verdict for row i and column j.
func (m Matrix) At(i, j int) Pair { return m.Cells[i][j] }

// Symmetric reports whether every Cells[i][j] agrees with Cells[j][i].
// The check is performed on the computed cells and does not rely on the
// knowledge base being symmetric.
func (m Matrix) Symmetric() bool {
	for i := range m.Cells {
		for j := i + 1; j < len(m.Cells); j++ {
			if m.Cells[i][j].Compatible != m.Cells[j][i].Compatible {
				return false
			}
		}
	}
	return true
}

// Analysis summarizes the compatibility of a project's license set.
type Analysis struct {
	OverallCompatible bool   `json:"overallCompatible"`
	Issues            []Pair `json:"issues"`
	Matrix            Matrix `json:"matrix"`
}

// Engine evaluates licenses against a knowledge base.
type Engine struct {
	kb *KnowledgeBase
}

// New creates an engine over kb. A nil kb selects [DefaultKnowledgeBase].
func New(kb *KnowledgeBase) *Engine {
	if kb == nil {
		kb = DefaultKnowledgeBase()
	}
	return &Engine{kb: kb}
}

// KnowledgeBase returns the table the engine evaluates against.
func (e *Engine) KnowledgeBase() *KnowledgeBase { return e.kb }

// Normalize maps a license name to its canonical form by case-insensitive
// alias lookup. Unrecognized names and the sentinels pass through unchanged.
func (e *Engine) Normalize(name string) string {
	if license.IsSentinel(name) {
		return name
	}
	if canonical, ok := e.kb.aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return canonical
	}
	return name
}

// Check returns the verdict for a and b. Both directions of the adjacency
// table must list the other license for the pair to be compatible.
func (e *Engine) Check(a, b string) Pair {
	a, b = e.Normalize(a), e.Normalize(b)
	if a == b {
		return Pair{LicenseA: a, LicenseB: b, Compatible: true, Reason: ReasonSame}
	}

	if e.kb.lists(a, b) && e.kb.lists(b, a) {
		return Pair{LicenseA: a, LicenseB: b, Compatible: true}
	}

	reason, ok := e.kb.reason(a, b)
	if !ok {
		reason = ReasonGeneric
	}
	return Pair{LicenseA: a, LicenseB: b, Compatible: false, Reason: reason}
}

// Analyze normalizes and deduplicates licenses (keeping first-seen order),
// builds the full matrix including self pairs and collects each
// incompatible pair once (row < column).
func (e *Engine) Analyze(licenses []string) Analysis {
	names := e.distinct(licenses)

	m := Matrix{Licenses: names, Cells: make([][]Pair, len(names))}
	var issues []Pair
	for i, a := range names {
		m.Cells[i] = make([]Pair, len(names))
		for j, b := range names {
			p := e.Check(a, b)
			m.Cells[i][j] = p
			if i < j && !p.Compatible {
				issues = append(issues, p)
			}
		}
	}

	return Analysis{
		OverallCompatible: len(issues) == 0,
		Issues:            issues,
		Matrix:            m,
	}
}

func (e *Engine) distinct(licenses []string) []string {
	seen := make(map[string]bool, len(licenses))
	names := make([]string, 0, len(licenses))
	for _, l := range licenses {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := e.Normalize(l)
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

var defaultEngine = New(nil)

// Default returns the shared engine over [DefaultKnowledgeBase].
func Default() *Engine { return defaultEngine }

// Normalize calls [Engine.Normalize] on the default engine.
func Normalize(name string) string { return defaultEngine.Normalize(name) }

// Check calls [Engine.Check] on the default engine.
func Check(a, b string) Pair { return defaultEngine.Check(a, b) }

// Analyze calls [Engine.Analyze] on the default engine.
func Analyze(licenses []string) Analysis { return defaultEngine.Analyze(licenses) }

// RiskLevel calls [Engine.RiskLevel] on the default engine.
func RiskLevel(licenses []string) Risk { return defaultEngine.RiskLevel(licenses) }

// Recommendations calls [Engine.Recommendations] on the default engine.
func Recommendations(licenses []string) []string { return defaultEngine.Recommendations(licenses) }
