package rules

import (
	"sort"

	"cssaudit/config"
	"cssaudit/css"
	"cssaudit/metrics"
)

// Input carries everything detectors may look at. Detectors are pure
// functions of this value.
type Input struct {
	Results []css.ParseResult
	Files   []metrics.FileMetrics
	Global  metrics.GlobalMetrics
	Cfg     config.AnalysisConfig
}

type detector struct {
	enabled func(config.RuleToggles) bool
	run     func(Input) []Issue
}

// detectors run in this fixed order; within equal severity the emission
// order is preserved by the stable sort below.
var detectors = []detector{
	{func(t config.RuleToggles) bool { return t.DeepSelectors }, detectDeepSelectors},
	{func(t config.RuleToggles) bool { return t.HighSpecificity }, detectHighSpecificity},
	{func(t config.RuleToggles) bool { return t.ImportantAbuse }, detectImportantAbuse},
	{func(t config.RuleToggles) bool { return t.DuplicateDeclarations }, detectDuplicateDeclarations},
	{func(t config.RuleToggles) bool { return t.LayoutRisk }, detectLayoutRisk},
	{func(t config.RuleToggles) bool { return t.OverridePressure }, detectOverridePressure},
	{func(t config.RuleToggles) bool { return t.MissingLayers }, detectMissingLayers},
}

// Evaluate runs every enabled detector and returns all issues sorted by
// severity (critical, high, medium, low), ties keeping emission order.
func Evaluate(in Input) []Issue {
	var issues []Issue
	for _, d := range detectors {
		if !d.enabled(in.Cfg.Rules) {
			continue
		}
		issues = append(issues, d.run(in)...)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.Rank() < issues[j].Severity.Rank()
	})
	return issues
}
