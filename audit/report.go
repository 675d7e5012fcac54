// Package audit wires the full analysis pipeline: parse results in, scored
// report out. Analyze is a pure function; everything filesystem-facing lives
// in run.go.
package audit

import (
	"fmt"
	"sort"
	"time"

	"cssaudit/config"
	"cssaudit/css"
	"cssaudit/metrics"
	"cssaudit/misc"
	"cssaudit/rules"
	"cssaudit/scoring"
)

// WorstSelector is one entry of the report's selector leaderboard.
type WorstSelector struct {
	File        string          `json:"file"`
	Selector    string          `json:"selector"`
	Specificity css.Specificity `json:"specificity"`
	Score       int             `json:"score"`
	Depth       int             `json:"depth"`
}

// Report is the complete outcome of one analysis run. It is immutable after
// Analyze returns and serializes to JSON without loss.
type Report struct {
	Version        string                `json:"version"`
	GeneratedAt    time.Time             `json:"generated_at"`
	Summary        scoring.Summary       `json:"summary"`
	Global         metrics.GlobalMetrics `json:"global_metrics"`
	Files          []metrics.FileMetrics `json:"file_metrics,omitempty"`
	Issues         []rules.Issue         `json:"issues,omitempty"`
	WorstSelectors []WorstSelector       `json:"worst_selectors,omitempty"`
	ParseErrors    map[string][]string   `json:"parse_errors,omitempty"`
}

// Analyze runs metrics aggregation, rule evaluation and scoring over parsed
// stylesheets. It never fails: nil or empty input produces a complete empty
// report (score 0, grade A).
func Analyze(results []css.ParseResult, cfg config.AnalysisConfig) *Report {
	files, global := metrics.Compute(results, cfg)
	issues := rules.Evaluate(rules.Input{
		Results: results,
		Files:   files,
		Global:  global,
		Cfg:     cfg,
	})

	rep := &Report{
		Version:        misc.GetVersion(),
		GeneratedAt:    time.Now().UTC(),
		Summary:        scoring.Compute(global, issues),
		Global:         global,
		Files:          files,
		Issues:         issues,
		WorstSelectors: worstSelectors(results, cfg.TopSelectors),
	}
	for _, res := range results {
		if len(res.Errors) > 0 {
			if rep.ParseErrors == nil {
				rep.ParseErrors = map[string][]string{}
			}
			rep.ParseErrors[res.File] = res.Errors
		}
	}
	return rep
}

// worstSelectors ranks every selector by scalar specificity, then depth,
// and keeps the top n.
func worstSelectors(results []css.ParseResult, n int) []WorstSelector {
	if n <= 0 {
		return nil
	}
	var all []WorstSelector
	for _, res := range results {
		for _, rule := range res.Rules {
			for _, sel := range rule.Selectors {
				all = append(all, WorstSelector{
					File:        res.File,
					Selector:    sel.Raw,
					Specificity: sel.Specificity,
					Score:       sel.Specificity.Score(),
					Depth:       sel.Depth,
				})
			}
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].Depth > all[j].Depth
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// Verdict is the pass/fail view of a report against configured limits.
type Verdict struct {
	Passed  bool     `json:"passed"`
	Reasons []string `json:"reasons,omitempty"`
}

// CheckThresholds verifies a report against the configured maximum score and
// the zero-critical-issues requirement. Violations become reasons; the caller
// decides what a failed verdict means for the process.
func CheckThresholds(rep *Report, cfg config.AnalysisConfig) Verdict {
	v := Verdict{Passed: true}

	if rep.Summary.OverallScore > cfg.MaxScore {
		v.Passed = false
		v.Reasons = append(v.Reasons,
			fmt.Sprintf("overall score %d exceeds maximum %d", rep.Summary.OverallScore, cfg.MaxScore))
	}
	if n := rep.Summary.IssuesBySeverity[string(rules.SeverityCritical)]; n > 0 {
		v.Passed = false
		v.Reasons = append(v.Reasons,
			fmt.Sprintf("%d critical issue(s) found", n))
	}
	return v
}
