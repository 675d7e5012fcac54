// Package css parses stylesheets into the structural form used by the
// analysis pipeline: rules with per-branch selector measurements, declaration
// lists and cascade layer attribution.
package css

import (
	"fmt"
)

// Specificity is the CSS cascade precedence triple. Attribute selectors and
// pseudo-classes count as classes; pseudo-elements and type selectors count
// as elements.
type Specificity struct {
	IDs      int `json:"ids"`
	Classes  int `json:"classes"`
	Elements int `json:"elements"`
}

// Compare orders specificities lexicographically on (IDs, Classes, Elements).
// Returns -1, 0 or 1. This is the only semantically valid comparison - Score
// is for thresholds and ranking only.
func (s Specificity) Compare(o Specificity) int {
	switch {
	case s.IDs != o.IDs:
		return sign(s.IDs - o.IDs)
	case s.Classes != o.Classes:
		return sign(s.Classes - o.Classes)
	default:
		return sign(s.Elements - o.Elements)
	}
}

// Score collapses the triple to a scalar (ids*100 + classes*10 + elements).
// Used for threshold checks and ranking, never for cascade comparison.
func (s Specificity) Score() int {
	return s.IDs*100 + s.Classes*10 + s.Elements
}

func (s Specificity) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.IDs, s.Classes, s.Elements)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Selector is one comma-separated selector branch with its structural
// measurements. Immutable once computed.
type Selector struct {
	Raw              string      `json:"raw"`
	Depth            int         `json:"depth"`
	Specificity      Specificity `json:"specificity"`
	HasID            bool        `json:"has_id"`
	HasAttribute     bool        `json:"has_attribute"`
	HasPseudoClass   bool        `json:"has_pseudo_class"`
	HasPseudoElement bool        `json:"has_pseudo_element"`
}

// Declaration is a single property declaration. Value is kept as written in
// the source - normalization is a concern of later pipeline stages.
type Declaration struct {
	Property  string `json:"property"`
	Value     string `json:"value"`
	Important bool   `json:"important"`
}

// Rule is one declaration block with the selector branches that share it.
// Layer is nil for rules outside any named @layer block.
type Rule struct {
	Selectors    []Selector    `json:"selectors"`
	Declarations []Declaration `json:"declarations"`
	File         string        `json:"file"`
	Line         int           `json:"line,omitempty"`
	Column       int           `json:"column,omitempty"`
	Layer        *string       `json:"layer,omitempty"`
}

// ParseResult is the outcome of parsing one stylesheet. A failed parse
// carries an error string and no rules - parsing never raises.
type ParseResult struct {
	File       string   `json:"file"`
	Rules      []Rule   `json:"rules"`
	Errors     []string `json:"errors,omitempty"`
	Layers     []string `json:"layers,omitempty"`
	UsesLayers bool     `json:"uses_layers"`
}

// addLayer records a declared layer name once, preserving first-seen order.
// Names are case-sensitive.
func (r *ParseResult) addLayer(name string) {
	for _, l := range r.Layers {
		if l == name {
			return
		}
	}
	r.Layers = append(r.Layers, name)
}
