package metrics

import (
	"fmt"
	"sort"
	"strings"

	"cssaudit/config"
	"cssaudit/css"
)

// Occurrence points at one place a declaration appears: the owning rule's
// file, line and first selector.
type Occurrence struct {
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Selector string `json:"selector"`
}

// DuplicateGroup is a set of identical declarations (same property, same
// normalized value) repeated across the input.
type DuplicateGroup struct {
	Property    string       `json:"property"`
	Value       string       `json:"value"`
	Count       int          `json:"count"`
	Occurrences []Occurrence `json:"occurrences"`
}

// BlockGroup is a multi-property declaration combination shared by several
// rules. Properties holds normalized property:value pairs in alphabetical
// order.
type BlockGroup struct {
	Properties []string `json:"properties"`
	Count      int      `json:"count"`
}

// OverrideDef is one rule defining a contested property.
type OverrideDef struct {
	Selector    string          `json:"selector"`
	File        string          `json:"file"`
	Line        int             `json:"line,omitempty"`
	Specificity css.Specificity `json:"specificity"`
}

// OverrideGroup is a property redefined by many rules - cascade override
// pressure.
type OverrideGroup struct {
	Property    string        `json:"property"`
	Count       int           `json:"count"`
	Definitions []OverrideDef `json:"definitions"`
}

// normalizeValue produces the comparison form of a declaration value.
// Values are kept raw at parse time; this is where normalization happens.
func normalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func firstSelector(rule css.Rule) string {
	if len(rule.Selectors) > 0 {
		return rule.Selectors[0].Raw
	}
	return ""
}

// findDuplicates groups declarations by property:normalized-value across all
// files and keeps groups repeated at least minCount times. Groups and their
// occurrences preserve encounter order.
func findDuplicates(results []css.ParseResult, minCount int) []DuplicateGroup {
	type key struct{ property, value string }

	groups := make(map[key]*DuplicateGroup)
	var order []key

	for _, res := range results {
		for _, rule := range res.Rules {
			for _, d := range rule.Declarations {
				k := key{property: d.Property, value: normalizeValue(d.Value)}
				g, ok := groups[k]
				if !ok {
					g = &DuplicateGroup{Property: k.property, Value: k.value}
					groups[k] = g
					order = append(order, k)
				}
				g.Count++
				g.Occurrences = append(g.Occurrences, Occurrence{
					File:     rule.File,
					Line:     rule.Line,
					Selector: firstSelector(rule),
				})
			}
		}
	}

	var out []DuplicateGroup
	for _, k := range order {
		if g := groups[k]; g.Count >= minCount {
			out = append(out, *g)
		}
	}
	return out
}

// findDuplicateBlocks looks for declaration blocks sharing the same
// multi-property combination. For every rule with at least MinProperties
// declarations the normalized property:value pairs are sorted alphabetically
// and every contiguous prefix of size MinProperties up to the full set is
// counted across rules. Combinations repeated at least MinOccurrences times
// are kept, sorted by occurrence count descending (stable).
func findDuplicateBlocks(results []css.ParseResult, cfg config.DuplicateBlocksConfig) []BlockGroup {
	counts := make(map[string]*BlockGroup)
	var order []string

	for _, res := range results {
		for _, rule := range res.Rules {
			if len(rule.Declarations) < cfg.MinProperties {
				continue
			}
			pairs := make([]string, 0, len(rule.Declarations))
			for _, d := range rule.Declarations {
				pairs = append(pairs, fmt.Sprintf("%s:%s", d.Property, normalizeValue(d.Value)))
			}
			sort.Strings(pairs)

			for size := cfg.MinProperties; size <= len(pairs); size++ {
				prefix := pairs[:size]
				k := strings.Join(prefix, ";")
				g, ok := counts[k]
				if !ok {
					g = &BlockGroup{Properties: append([]string(nil), prefix...)}
					counts[k] = g
					order = append(order, k)
				}
				g.Count++
			}
		}
	}

	var out []BlockGroup
	for _, k := range order {
		if g := counts[k]; g.Count >= cfg.MinOccurrences {
			out = append(out, *g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// findOverrides groups declarations by property name regardless of value and
// keeps properties defined in at least minRules distinct rules.
func findOverrides(results []css.ParseResult, minRules int) []OverrideGroup {
	groups := make(map[string]*OverrideGroup)
	var order []string

	for _, res := range results {
		for _, rule := range res.Rules {
			seen := make(map[string]bool, len(rule.Declarations))
			for _, d := range rule.Declarations {
				if seen[d.Property] {
					// a rule counts once per property no matter how often
					// it repeats the declaration
					continue
				}
				seen[d.Property] = true

				g, ok := groups[d.Property]
				if !ok {
					g = &OverrideGroup{Property: d.Property}
					groups[d.Property] = g
					order = append(order, d.Property)
				}
				g.Count++

				def := OverrideDef{
					Selector: firstSelector(rule),
					File:     rule.File,
					Line:     rule.Line,
				}
				if len(rule.Selectors) > 0 {
					def.Specificity = rule.Selectors[0].Specificity
				}
				g.Definitions = append(g.Definitions, def)
			}
		}
	}

	var out []OverrideGroup
	for _, k := range order {
		if g := groups[k]; g.Count >= minRules {
			out = append(out, *g)
		}
	}
	return out
}
