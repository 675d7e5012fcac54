package rules

import (
	"fmt"

	"cssaudit/metrics"
)

// layoutHotspotThreshold is fixed by the scoring model, deliberately not
// configurable.
const layoutHotspotThreshold = 5

// detectLayoutRisk flags rules whose declaration set scores as a layout
// hotspot. Remediation differs for absolutely positioned rules.
func detectLayoutRisk(in Input) []Issue {
	var issues []Issue

	for _, res := range in.Results {
		for _, rule := range res.Rules {
			score := metrics.RuleRisk(rule)
			if score < layoutHotspotThreshold {
				continue
			}

			severity := SeverityLow
			switch {
			case score >= 15:
				severity = SeverityHigh
			case score >= 10:
				severity = SeverityMedium
			}

			var suggestions []Suggestion
			if metrics.UsesUnstablePositioning(rule) {
				suggestions = []Suggestion{
					{Action: "reconsider-positioning", Description: "absolute/fixed positioning escapes normal flow; prefer flex or grid placement"},
				}
			} else {
				suggestions = []Suggestion{
					{Action: "simplify-layout", Description: "split the rule so sizing, spacing and flow concerns are not entangled"},
				}
			}

			issues = append(issues, Issue{
				ID:         LayoutRisk,
				Severity:   severity,
				Confidence: 0.7,
				Title:      "Layout risk hotspot",
				Explanation: fmt.Sprintf("rule %q concentrates layout-affecting declarations (risk score %d); such rules tend to break across viewports",
					firstSelector(rule), score),
				Evidence: Evidence{
					File:     rule.File,
					Selector: firstSelector(rule),
					Line:     rule.Line,
					Count:    score,
				},
				Suggestions: suggestions,
				Tags:        []string{"layout"},
			})
		}
	}
	return issues
}
