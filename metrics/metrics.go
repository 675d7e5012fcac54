// Package metrics derives per-file and cross-file statistics from parse
// results. Everything here is recomputed from scratch on every analysis run -
// a pure function of the parse results and thresholds, never mutated in
// place.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"cssaudit/config"
	"cssaudit/css"
)

// SpecificityMean is the independent per-component mean of selector
// specificities, rounded to 2 decimals. Deliberately NOT the mean of scalar
// scores.
type SpecificityMean struct {
	IDs      float64 `json:"ids"`
	Classes  float64 `json:"classes"`
	Elements float64 `json:"elements"`
}

// Score collapses the mean triple the same way css.Specificity.Score does.
func (m SpecificityMean) Score() float64 {
	return m.IDs*100 + m.Classes*10 + m.Elements
}

// FileMetrics holds statistics for one parsed stylesheet.
type FileMetrics struct {
	File           string          `json:"file"`
	Rules          int             `json:"rules"`
	Selectors      int             `json:"selectors"`
	Declarations   int             `json:"declarations"`
	MaxDepth       int             `json:"max_depth"`
	AvgDepth       float64         `json:"avg_depth"`
	MaxSpecificity css.Specificity `json:"max_specificity"`
	AvgSpecificity SpecificityMean `json:"avg_specificity"`
	ImportantCount int             `json:"important_count"`
	LayoutRisk     int             `json:"layout_risk"`
}

// GlobalMetrics aggregates file metrics: counts by summation, extremes by
// max-of-maxes and averages as the mean of per-file averages. The mean of
// file means is kept intentionally (mild bias toward small files) so scores
// stay comparable across versions.
type GlobalMetrics struct {
	Files           int              `json:"files"`
	Rules           int              `json:"rules"`
	Selectors       int              `json:"selectors"`
	Declarations    int              `json:"declarations"`
	MaxDepth        int              `json:"max_depth"`
	AvgDepth        float64          `json:"avg_depth"`
	MaxSpecificity  css.Specificity  `json:"max_specificity"`
	AvgSpecificity  SpecificityMean  `json:"avg_specificity"`
	ImportantCount  int              `json:"important_count"`
	LayoutRisk      int              `json:"layout_risk"`
	Duplicates      []DuplicateGroup `json:"duplicates,omitempty"`
	DuplicateBlocks []BlockGroup     `json:"duplicate_blocks,omitempty"`
	Overrides       []OverrideGroup  `json:"overrides,omitempty"`
}

// ComputeFile builds metrics for a single parse result.
func ComputeFile(res css.ParseResult) FileMetrics {
	fm := FileMetrics{File: res.File}

	var (
		depths   []float64
		ids      []float64
		classes  []float64
		elements []float64
	)

	for _, rule := range res.Rules {
		fm.Rules++
		fm.Declarations += len(rule.Declarations)
		fm.LayoutRisk += RuleRisk(rule)

		for _, d := range rule.Declarations {
			if d.Important {
				fm.ImportantCount++
			}
		}

		for _, sel := range rule.Selectors {
			fm.Selectors++
			depths = append(depths, float64(sel.Depth))
			ids = append(ids, float64(sel.Specificity.IDs))
			classes = append(classes, float64(sel.Specificity.Classes))
			elements = append(elements, float64(sel.Specificity.Elements))

			if sel.Depth > fm.MaxDepth {
				fm.MaxDepth = sel.Depth
			}
			if sel.Specificity.Compare(fm.MaxSpecificity) > 0 {
				fm.MaxSpecificity = sel.Specificity
			}
		}
	}

	fm.AvgDepth = round2(mean(depths))
	fm.AvgSpecificity = SpecificityMean{
		IDs:      round2(mean(ids)),
		Classes:  round2(mean(classes)),
		Elements: round2(mean(elements)),
	}
	return fm
}

// Compute builds per-file metrics and the cross-file aggregate, including
// duplicate, duplicate-block and override-pressure detection.
func Compute(results []css.ParseResult, cfg config.AnalysisConfig) ([]FileMetrics, GlobalMetrics) {
	files := make([]FileMetrics, 0, len(results))
	global := GlobalMetrics{Files: len(results)}

	var (
		avgDepths   []float64
		avgIDs      []float64
		avgClasses  []float64
		avgElements []float64
	)

	for _, res := range results {
		fm := ComputeFile(res)
		files = append(files, fm)

		global.Rules += fm.Rules
		global.Selectors += fm.Selectors
		global.Declarations += fm.Declarations
		global.ImportantCount += fm.ImportantCount
		global.LayoutRisk += fm.LayoutRisk

		if fm.MaxDepth > global.MaxDepth {
			global.MaxDepth = fm.MaxDepth
		}
		if fm.MaxSpecificity.Compare(global.MaxSpecificity) > 0 {
			global.MaxSpecificity = fm.MaxSpecificity
		}

		avgDepths = append(avgDepths, fm.AvgDepth)
		avgIDs = append(avgIDs, fm.AvgSpecificity.IDs)
		avgClasses = append(avgClasses, fm.AvgSpecificity.Classes)
		avgElements = append(avgElements, fm.AvgSpecificity.Elements)
	}

	global.AvgDepth = round2(mean(avgDepths))
	global.AvgSpecificity = SpecificityMean{
		IDs:      round2(mean(avgIDs)),
		Classes:  round2(mean(avgClasses)),
		Elements: round2(mean(avgElements)),
	}

	global.Duplicates = findDuplicates(results, cfg.MaxDuplicateDeclarations)
	global.DuplicateBlocks = findDuplicateBlocks(results, cfg.DuplicateBlocks)
	global.Overrides = findOverrides(results, cfg.MinOverrideRules)

	return files, global
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
