package compat

import "strings"

// Risk is a coarse classification of a project's licensing exposure.
type Risk string

// Risk levels.
const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// commerciallyRisky holds canonical names whose obligations commonly block
// closed-source or hosted commercial distribution.
var commerciallyRisky = map[string]bool{
	"GPL-2.0":  true,
	"GPL-3.0":  true,
	"AGPL-3.0": true,
	"LGPL-2.1": true,
	"LGPL-3.0": true,
	"MPL-2.0":  true,
	"EPL-2.0":  true,
	"SSPL-1.0": true,
	"BUSL-1.1": true,
}

// CommerciallyRisky reports whether the normalized form of name is in the
// commercially risky set.
func (e *Engine) CommerciallyRisky(name string) bool {
	return commerciallyRisky[e.Normalize(name)]
}

// RiskLevel classifies a license set. The checks run in a fixed order:
//
//  1. any name containing "agpl" (case-insensitive): high
//  2. any name containing "gpl" and any commercially risky license: high
//  3. any commercially risky license: medium
//  4. otherwise: low
func (e *Engine) RiskLevel(licenses []string) Risk {
	hasAGPL := containsFold(licenses, "agpl")
	hasGPL := containsFold(licenses, "gpl")
	hasRisky := false
	for _, l := range licenses {
		if e.CommerciallyRisky(l) {
			hasRisky = true
			break
		}
	}

	switch {
	case hasAGPL:
		return RiskHigh
	case hasGPL && hasRisky:
		return RiskHigh
	case hasRisky:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Advisory lines emitted by Recommendations, in emission order.
const (
	RecommendReview     = "Review the license compatibility issues before distributing this project."
	RecommendGPL        = "GPL-licensed dependencies require derivative works to be distributed under a compatible copyleft license."
	RecommendAGPL       = "AGPL-licensed dependencies extend copyleft obligations to software offered to users over a network."
	RecommendReplace    = "Consider replacing or isolating the dependencies involved in the reported incompatible pairs."
	RecommendCounsel    = "Consult legal counsel for a definitive assessment; these results are heuristic."
	RecommendCompatible = "No license conflicts were detected among the project's dependencies."
)

// Recommendations re-runs [Engine.Analyze] and returns advisory text. For an
// incompatible set the lines are emitted in a fixed order, each gated by a
// presence check; a compatible set yields a single confirmation line.
func (e *Engine) Recommendations(licenses []string) []string {
	a := e.Analyze(licenses)
	if a.OverallCompatible {
		return []string{RecommendCompatible}
	}

	recs := []string{RecommendReview}
	if containsFold(licenses, "gpl") {
		recs = append(recs, RecommendGPL)
	}
	if containsFold(licenses, "agpl") {
		recs = append(recs, RecommendAGPL)
	}
	if len(a.Issues) > 0 {
		recs = append(recs, RecommendReplace)
	}
	return append(recs, RecommendCounsel)
}

func containsFold(licenses []string, sub string) bool {
	for _, l := range licenses {
		if strings.Contains(strings.ToLower(l), sub) {
			return true
		}
	}
	return false
}
