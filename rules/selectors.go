package rules

import (
	"fmt"
)

// detectDeepSelectors flags selector branches nested beyond the configured
// depth. Severity grows with the excess over the threshold.
func detectDeepSelectors(in Input) []Issue {
	var issues []Issue

	for _, res := range in.Results {
		for _, rule := range res.Rules {
			for _, sel := range rule.Selectors {
				if sel.Depth <= in.Cfg.MaxSelectorDepth {
					continue
				}

				excess := sel.Depth - in.Cfg.MaxSelectorDepth
				severity := SeverityMedium
				switch {
				case excess >= 4:
					severity = SeverityCritical
				case excess >= 2:
					severity = SeverityHigh
				}

				spec := sel.Specificity
				issues = append(issues, Issue{
					ID:         DeepSelector,
					Severity:   severity,
					Confidence: 1,
					Title:      "Deeply nested selector",
					Explanation: fmt.Sprintf("selector %q has depth %d, %d over the limit of %d; deep selectors couple styles to markup structure and are fragile under refactoring",
						sel.Raw, sel.Depth, excess, in.Cfg.MaxSelectorDepth),
					Evidence: Evidence{
						File:        rule.File,
						Selector:    sel.Raw,
						Line:        rule.Line,
						Specificity: &spec,
						Depth:       sel.Depth,
					},
					Suggestions: []Suggestion{
						{Action: "flatten", Description: "replace the descendant chain with a single class on the target element"},
						{Action: "component-class", Description: "introduce a component-scoped class instead of relying on document structure"},
					},
					Tags: []string{"selector", "maintainability"},
				})
			}
		}
	}
	return issues
}

// detectHighSpecificity flags selector branches whose scalar specificity
// exceeds the threshold or that contain an id selector at all.
func detectHighSpecificity(in Input) []Issue {
	var issues []Issue
	threshold := in.Cfg.MaxSpecificityScore

	for _, res := range in.Results {
		for _, rule := range res.Rules {
			for _, sel := range rule.Selectors {
				score := sel.Specificity.Score()
				if score <= threshold && !sel.HasID {
					continue
				}

				severity := SeverityLow
				switch {
				case sel.Specificity.IDs >= 2:
					severity = SeverityCritical
				case sel.Specificity.IDs >= 1:
					severity = SeverityHigh
				case score > 2*threshold:
					severity = SeverityHigh
				case float64(score) > 1.5*float64(threshold):
					severity = SeverityMedium
				}

				spec := sel.Specificity
				issues = append(issues, Issue{
					ID:         HighSpecificity,
					Severity:   severity,
					Confidence: 1,
					Title:      "High specificity selector",
					Explanation: fmt.Sprintf("selector %q has specificity %s (score %d); high specificity makes later overrides escalate into !important wars",
						sel.Raw, sel.Specificity, score),
					Evidence: Evidence{
						File:        rule.File,
						Selector:    sel.Raw,
						Line:        rule.Line,
						Specificity: &spec,
						Depth:       sel.Depth,
					},
					Suggestions: highSpecificitySuggestions(sel.HasID),
					Tags:        []string{"selector", "specificity"},
				})
			}
		}
	}
	return issues
}

func highSpecificitySuggestions(hasID bool) []Suggestion {
	if hasID {
		return []Suggestion{
			{Action: "replace-id", Description: "replace the id selector with a class; reserve ids for anchors and scripting"},
		}
	}
	return []Suggestion{
		{Action: "simplify", Description: "reduce the number of compound parts or move the rule into a cascade layer"},
	}
}
