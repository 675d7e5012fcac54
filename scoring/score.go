// Package scoring turns aggregated metrics and detected issues into category
// scores, an overall maintainability score with a letter grade, and ranked
// recommendations. Higher scores are worse.
package scoring

import (
	"math"

	"cssaudit/metrics"
	"cssaudit/rules"
)

// Summary is the scored view of one analysis run.
type Summary struct {
	OverallScore     int              `json:"overall_score"`
	Grade            string           `json:"grade"`
	SpecificityScore float64          `json:"specificity_score"`
	CascadeScore     float64          `json:"cascade_score"`
	DuplicationScore float64          `json:"duplication_score"`
	LayoutRiskScore  float64          `json:"layout_risk_score"`
	TotalIssues      int              `json:"total_issues"`
	IssuesBySeverity map[string]int   `json:"issues_by_severity"`
	Recommendations  []Recommendation `json:"recommendations,omitempty"`
}

// Category weights. Chosen so specificity problems (the hardest to unwind)
// dominate and duplication (the easiest) weighs least.
const (
	weightSpecificity = 0.30
	weightCascade     = 0.25
	weightDuplication = 0.20
	weightLayout      = 0.25
)

// Compute scores one run. It is a pure function of its inputs.
func Compute(global metrics.GlobalMetrics, issues []rules.Issue) Summary {
	s := Summary{
		SpecificityScore: specificityScore(global, issues),
		CascadeScore:     cascadeScore(global, issues),
		DuplicationScore: duplicationScore(global, issues),
		LayoutRiskScore:  layoutScore(global, issues),
		TotalIssues:      len(issues),
		IssuesBySeverity: map[string]int{},
	}
	for _, is := range issues {
		s.IssuesBySeverity[string(is.Severity)]++
	}

	weighted := weightSpecificity*s.SpecificityScore +
		weightCascade*s.CascadeScore +
		weightDuplication*s.DuplicationScore +
		weightLayout*s.LayoutRiskScore
	s.OverallScore = int(math.Round(clamp(weighted, 0, 100)))
	s.Grade = grade(s.OverallScore)
	s.Recommendations = recommend(s, issues)
	return s
}

func grade(score int) string {
	switch {
	case score <= 20:
		return "A"
	case score <= 40:
		return "B"
	case score <= 60:
		return "C"
	case score <= 80:
		return "D"
	default:
		return "F"
	}
}

func specificityScore(g metrics.GlobalMetrics, issues []rules.Issue) float64 {
	score := math.Min(30, g.AvgSpecificity.Score())

	maxScalar := g.MaxSpecificity.Score()
	switch {
	case maxScalar > 100:
		score += 20
	case maxScalar > 50:
		score += 10
	}
	switch {
	case g.MaxDepth > 6:
		score += 20
	case g.MaxDepth > 4:
		score += 10
	}
	for _, is := range issues {
		if is.ID == rules.DeepSelector || is.ID == rules.HighSpecificity {
			score += 2
		}
	}
	return round1(math.Min(score, 100))
}

func cascadeScore(g metrics.GlobalMetrics, issues []rules.Issue) float64 {
	score := math.Min(40, 500*float64(g.ImportantCount)/float64(max1(g.Declarations)))

	for _, is := range issues {
		if is.ID != rules.ImportantAbuse && is.ID != rules.OverridePressure {
			continue
		}
		switch is.Severity {
		case rules.SeverityCritical:
			score += 15
		case rules.SeverityHigh:
			score += 10
		case rules.SeverityMedium:
			score += 5
		default:
			score += 2
		}
	}
	return round1(math.Min(score, 100))
}

func duplicationScore(g metrics.GlobalMetrics, issues []rules.Issue) float64 {
	// Duplicate count is the total number of occurrences across all
	// qualifying groups, not the number of groups.
	var dup int
	for _, grp := range g.Duplicates {
		dup += grp.Count
	}
	score := math.Min(40, 200*float64(dup)/float64(max1(g.Declarations)))

	for _, is := range issues {
		if is.ID == rules.DuplicateDeclarations {
			score += math.Min(10, float64(is.Evidence.Count)/2)
		}
	}
	return round1(math.Min(score, 100))
}

func layoutScore(g metrics.GlobalMetrics, issues []rules.Issue) float64 {
	score := math.Min(40, 10*float64(g.LayoutRisk)/float64(max1(g.Rules)))

	for _, is := range issues {
		if is.ID != rules.LayoutRisk {
			continue
		}
		switch is.Severity {
		case rules.SeverityHigh:
			score += 15
		case rules.SeverityMedium:
			score += 8
		default:
			score += 3
		}
	}
	return round1(math.Min(score, 100))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
