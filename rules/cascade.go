package rules

import (
	"fmt"

	"cssaudit/metrics"
)

// detectImportantAbuse runs two independent checks: a per-file total against
// the configured budget and a per-declaration check for !important on
// layout-affecting properties, which is flagged regardless of the budget.
func detectImportantAbuse(in Input) []Issue {
	var issues []Issue

	for _, fm := range in.Files {
		if fm.ImportantCount <= in.Cfg.MaxImportantPerFile {
			continue
		}

		ratio := float64(fm.ImportantCount) / float64(in.Cfg.MaxImportantPerFile)
		severity := SeverityLow
		switch {
		case ratio >= 4:
			severity = SeverityCritical
		case ratio >= 2.5:
			severity = SeverityHigh
		case ratio >= 1.5:
			severity = SeverityMedium
		}

		issues = append(issues, Issue{
			ID:         ImportantAbuse,
			Severity:   severity,
			Confidence: 1,
			Title:      "Excessive !important usage",
			Explanation: fmt.Sprintf("%s declares !important %d times (budget %d); heavy !important usage means the cascade is already lost",
				fm.File, fm.ImportantCount, in.Cfg.MaxImportantPerFile),
			Evidence: Evidence{
				File:  fm.File,
				Count: fm.ImportantCount,
			},
			Suggestions: []Suggestion{
				{Action: "restructure", Description: "remove !important by lowering the specificity of competing selectors"},
				{Action: "use-layers", Description: "establish precedence with @layer instead of !important"},
			},
			Tags: []string{"cascade", "important"},
		})
	}

	for _, res := range in.Results {
		for _, rule := range res.Rules {
			for _, d := range rule.Declarations {
				if !d.Important || !metrics.IsLayoutProperty(d.Property) {
					continue
				}
				issues = append(issues, Issue{
					ID:         ImportantAbuse,
					Severity:   SeverityMedium,
					Confidence: 1,
					Title:      "!important on layout property",
					Explanation: fmt.Sprintf("%s: %s is forced with !important; layout properties locked this way are very hard to override responsively",
						d.Property, d.Value),
					Evidence: Evidence{
						File:     rule.File,
						Selector: firstSelector(rule),
						Property: d.Property,
						Value:    d.Value,
						Line:     rule.Line,
					},
					Suggestions: []Suggestion{
						{Action: "remove-important", Description: "resolve the underlying specificity conflict instead of forcing the layout value"},
					},
					Tags: []string{"cascade", "important", "layout"},
				})
			}
		}
	}
	return issues
}

// detectOverridePressure flags properties redefined across many rules with
// widely varying specificity - the classic precondition for cascade fights.
func detectOverridePressure(in Input) []Issue {
	var issues []Issue

	for _, g := range in.Global.Overrides {
		minScore, maxScore := 0, 0
		for i, def := range g.Definitions {
			s := def.Specificity.Score()
			if i == 0 {
				minScore, maxScore = s, s
				continue
			}
			if s < minScore {
				minScore = s
			}
			if s > maxScore {
				maxScore = s
			}
		}
		variance := maxScore - minScore

		severity := SeverityLow
		switch {
		case g.Count >= 15 && variance >= 50:
			severity = SeverityHigh
		case g.Count >= 10 || variance >= 30:
			severity = SeverityMedium
		}

		issues = append(issues, Issue{
			ID:         OverridePressure,
			Severity:   severity,
			Confidence: 0.8,
			Title:      "Override pressure",
			Explanation: fmt.Sprintf("property %q is defined in %d rules with specificity score spread %d; each new definition must out-compete the rest",
				g.Property, g.Count, variance),
			Evidence: Evidence{
				Property: g.Property,
				Count:    g.Count,
			},
			Suggestions: []Suggestion{
				{Action: "consolidate", Description: "consolidate definitions of the property into fewer, intentional rules"},
				{Action: "design-tokens", Description: "move shared values into custom properties to reduce redefinition"},
			},
			Tags: []string{"cascade", "override"},
		})
	}
	return issues
}

// detectMissingLayers fires at most once per run, when a stylesheet set is
// large or conflicted enough to benefit from @layer but does not use it.
func detectMissingLayers(in Input) []Issue {
	for _, res := range in.Results {
		if res.UsesLayers {
			return nil
		}
	}

	bigFiles := 0
	for _, fm := range in.Files {
		if fm.Rules >= 20 {
			bigFiles++
		}
	}
	if in.Global.Rules < 50 && in.Global.ImportantCount < 5 && bigFiles < 3 {
		return nil
	}

	severity := SeverityLow
	if in.Global.Rules >= 200 || in.Global.ImportantCount >= 20 {
		severity = SeverityMedium
	}

	return []Issue{{
		ID:         MissingLayers,
		Severity:   severity,
		Confidence: 0.7,
		Title:      "No cascade layers",
		Explanation: fmt.Sprintf("%d rules across %d files manage precedence through specificity alone; @layer would make the intended order explicit",
			in.Global.Rules, in.Global.Files),
		Evidence: Evidence{
			Count: in.Global.Rules,
		},
		Suggestions: []Suggestion{
			{Action: "adopt-layers", Description: "group stylesheets into @layer reset, base, components, utilities to fix precedence by design"},
		},
		Tags: []string{"cascade", "architecture"},
	}}
}
