package scoring

import (
	"fmt"
	"sort"

	"cssaudit/rules"
)

// Recommendation is an actionable per-category summary attached to a report.
type Recommendation struct {
	Category   string `json:"category"`
	Priority   string `json:"priority"`
	Message    string `json:"message"`
	IssueCount int    `json:"issue_count"`
}

const (
	categorySpecificity = "specificity"
	categoryCascade     = "cascade"
	categoryDuplication = "duplication"
	categoryLayout      = "layout"
)

func categoryOf(id rules.ID) string {
	switch id {
	case rules.DeepSelector, rules.HighSpecificity:
		return categorySpecificity
	case rules.ImportantAbuse, rules.OverridePressure, rules.MissingLayers:
		return categoryCascade
	case rules.DuplicateDeclarations:
		return categoryDuplication
	case rules.LayoutRisk:
		return categoryLayout
	}
	return ""
}

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// recommend emits one recommendation per category that produced at least one
// issue. Priority thresholds are per-category: volume for specificity and
// duplication, any critical (or volume) for cascade, volume for layout.
func recommend(s Summary, issues []rules.Issue) []Recommendation {
	counts := map[string]int{}
	criticals := map[string]int{}
	for _, is := range issues {
		cat := categoryOf(is.ID)
		if cat == "" {
			continue
		}
		counts[cat]++
		if is.Severity == rules.SeverityCritical {
			criticals[cat]++
		}
	}

	var recs []Recommendation
	if n := counts[categorySpecificity]; n > 0 {
		recs = append(recs, Recommendation{
			Category:   categorySpecificity,
			Priority:   volumePriority(n, 10, 5),
			Message:    fmt.Sprintf("%d selector issues: flatten deep selectors and replace ID hooks with single classes", n),
			IssueCount: n,
		})
	}
	if n := counts[categoryCascade]; n > 0 {
		p := "low"
		switch {
		case criticals[categoryCascade] > 0:
			p = "high"
		case n > 5:
			p = "medium"
		}
		recs = append(recs, Recommendation{
			Category:   categoryCascade,
			Priority:   p,
			Message:    fmt.Sprintf("%d cascade issues: remove !important escalation and organize styles into @layer", n),
			IssueCount: n,
		})
	}
	if n := counts[categoryDuplication]; n > 0 {
		recs = append(recs, Recommendation{
			Category:   categoryDuplication,
			Priority:   volumePriority(n, 10, 5),
			Message:    fmt.Sprintf("%d duplication issues: consolidate repeated declarations into shared classes or custom properties", n),
			IssueCount: n,
		})
	}
	if n := counts[categoryLayout]; n > 0 {
		recs = append(recs, Recommendation{
			Category:   categoryLayout,
			Priority:   volumePriority(n, 8, 4),
			Message:    fmt.Sprintf("%d layout-risk issues: untangle rules that mix positioning, sizing and flow", n),
			IssueCount: n,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return recs
}

func volumePriority(n, high, medium int) string {
	switch {
	case n > high:
		return "high"
	case n > medium:
		return "medium"
	default:
		return "low"
	}
}
