package rules

import (
	"fmt"

	"cssaudit/css"
)

func firstSelector(rule css.Rule) string {
	if len(rule.Selectors) > 0 {
		return rule.Selectors[0].Raw
	}
	return ""
}

// detectDuplicateDeclarations emits one issue per duplicate group found by
// the aggregator. Severity scales with how far the group exceeds the
// configured minimum.
func detectDuplicateDeclarations(in Input) []Issue {
	var issues []Issue

	for _, g := range in.Global.Duplicates {
		ratio := float64(g.Count) / float64(in.Cfg.MaxDuplicateDeclarations)
		severity := SeverityLow
		switch {
		case ratio >= 5:
			severity = SeverityHigh
		case ratio >= 3:
			severity = SeverityMedium
		}

		ev := Evidence{
			Property: g.Property,
			Value:    g.Value,
			Count:    g.Count,
		}
		if len(g.Occurrences) > 0 {
			ev.File = g.Occurrences[0].File
			ev.Line = g.Occurrences[0].Line
			ev.Selector = g.Occurrences[0].Selector
		}

		issues = append(issues, Issue{
			ID:         DuplicateDeclarations,
			Severity:   severity,
			Confidence: 0.9,
			Title:      "Duplicated declaration",
			Explanation: fmt.Sprintf("declaration %q: %q appears %d times; every copy is a place the next change can be missed",
				g.Property, g.Value, g.Count),
			Evidence: ev,
			Suggestions: []Suggestion{
				{Action: "extract", Description: "extract the repeated declaration into a shared class or custom property"},
			},
			Tags: []string{"duplication"},
		})
	}
	return issues
}
