package metrics

import (
	"math"
	"strings"

	"cssaudit/css"
)

// layoutProperties is the fixed set of properties that affect document flow
// or box geometry. Process-wide immutable data.
var layoutProperties = map[string]bool{
	// dimensions
	"width": true, "height": true,
	"min-width": true, "min-height": true,
	"max-width": true, "max-height": true,
	"box-sizing": true, "aspect-ratio": true,
	// positioning
	"position": true, "top": true, "right": true, "bottom": true, "left": true,
	"inset": true, "inset-block": true, "inset-inline": true, "z-index": true,
	// box spacing
	"margin": true, "margin-top": true, "margin-right": true, "margin-bottom": true, "margin-left": true,
	"margin-block": true, "margin-inline": true,
	"padding": true, "padding-top": true, "padding-right": true, "padding-bottom": true, "padding-left": true,
	"padding-block": true, "padding-inline": true,
	// display and floats
	"display": true, "float": true, "clear": true, "visibility": true,
	// flex
	"flex": true, "flex-grow": true, "flex-shrink": true, "flex-basis": true,
	"flex-direction": true, "flex-wrap": true, "flex-flow": true, "order": true,
	// grid
	"grid": true, "grid-template": true, "grid-template-columns": true, "grid-template-rows": true,
	"grid-template-areas": true, "grid-area": true, "grid-column": true, "grid-row": true,
	"grid-auto-flow": true, "grid-auto-columns": true, "grid-auto-rows": true,
	"gap": true, "row-gap": true, "column-gap": true,
	"align-items": true, "align-content": true, "align-self": true,
	"justify-items": true, "justify-content": true, "justify-self": true,
	"place-items": true, "place-content": true, "place-self": true,
	// overflow
	"overflow": true, "overflow-x": true, "overflow-y": true,
	// typography metrics that change flow
	"line-height": true, "font-size": true, "letter-spacing": true, "word-spacing": true,
	"white-space": true, "vertical-align": true, "text-indent": true,
}

// IsLayoutProperty reports whether the property participates in layout-risk
// scoring and layout-affecting !important checks.
func IsLayoutProperty(property string) bool {
	return layoutProperties[strings.ToLower(strings.TrimSpace(property))]
}

// riskyCombination is a set of properties that is fragile when used together.
// When a rule's declaration set contains every property of a combination the
// running risk total is multiplied by the combination's factor, rounding to
// the nearest integer after each match. Combinations are applied in the
// order they are defined here; multiple matches compound sequentially.
type riskyCombination struct {
	properties []string
	multiplier float64
}

var riskyCombinations = []riskyCombination{
	{[]string{"position", "top", "left"}, 1.5},
	{[]string{"float", "width", "margin"}, 1.3},
	{[]string{"display", "position", "z-index"}, 1.2},
}

// RuleRisk computes the layout-risk score of one rule's declaration set.
func RuleRisk(rule css.Rule) int {
	score := 0
	present := make(map[string]bool, len(rule.Declarations))

	for _, d := range rule.Declarations {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		present[prop] = true

		if layoutProperties[prop] {
			score++
		}
		if prop == "position" {
			v := strings.ToLower(strings.TrimSpace(d.Value))
			if v == "absolute" || v == "fixed" {
				score += 2
			}
		}
		if strings.HasPrefix(prop, "margin") && strings.Contains(d.Value, "-") {
			// negative margins
			score++
		}
	}

	total := float64(score)
	for _, combo := range riskyCombinations {
		matched := true
		for _, p := range combo.properties {
			if !present[p] {
				matched = false
				break
			}
		}
		if matched {
			total = math.Round(total * combo.multiplier)
		}
	}
	return int(total)
}

// UsesUnstablePositioning reports whether the rule positions itself with
// absolute or fixed, which changes which remediation makes sense.
func UsesUnstablePositioning(rule css.Rule) bool {
	for _, d := range rule.Declarations {
		if strings.ToLower(strings.TrimSpace(d.Property)) == "position" {
			v := strings.ToLower(strings.TrimSpace(d.Value))
			if v == "absolute" || v == "fixed" {
				return true
			}
		}
	}
	return false
}
