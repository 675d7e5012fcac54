// Package rules evaluates a fixed set of independent detectors over parsed
// rules and aggregated metrics, emitting typed severity-ranked issues.
package rules

import (
	"cssaudit/css"
)

// Severity of a detected issue.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for sorting: critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// ID identifies the detector that produced an issue. Closed set.
type ID string

const (
	DeepSelector          ID = "DEEP_SELECTOR"
	HighSpecificity       ID = "HIGH_SPECIFICITY"
	ImportantAbuse        ID = "IMPORTANT_ABUSE"
	DuplicateDeclarations ID = "DUPLICATE_DECLARATIONS"
	LayoutRisk            ID = "LAYOUT_RISK"
	OverridePressure      ID = "OVERRIDE_PRESSURE"
	MissingLayers         ID = "MISSING_LAYERS"
)

// Evidence locates and quantifies what an issue is about. All fields are
// optional - detectors fill what applies.
type Evidence struct {
	File        string           `json:"file,omitempty"`
	Selector    string           `json:"selector,omitempty"`
	Property    string           `json:"property,omitempty"`
	Value       string           `json:"value,omitempty"`
	Line        int              `json:"line,omitempty"`
	Column      int              `json:"column,omitempty"`
	Specificity *css.Specificity `json:"specificity,omitempty"`
	Depth       int              `json:"depth,omitempty"`
	Count       int              `json:"count,omitempty"`
}

// Suggestion is one remediation step attached to an issue.
type Suggestion struct {
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Issue is a pure output value: no identity, no lifecycle beyond one report.
type Issue struct {
	ID          ID           `json:"id"`
	Severity    Severity     `json:"severity"`
	Confidence  float64      `json:"confidence"`
	Title       string       `json:"title"`
	Explanation string       `json:"explanation"`
	Evidence    Evidence     `json:"evidence"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}
