package metrics

import (
	"reflect"
	"testing"

	"cssaudit/config"
	"cssaudit/css"
)

func mkRule(file string, line int, selector string, decls ...css.Declaration) css.Rule {
	return css.Rule{
		Selectors:    []css.Selector{css.ParseSelector(selector)},
		Declarations: decls,
		File:         file,
		Line:         line,
	}
}

func decl(property, value string) css.Declaration {
	return css.Declaration{Property: property, Value: value}
}

func important(property, value string) css.Declaration {
	return css.Declaration{Property: property, Value: value, Important: true}
}

func TestComputeFile(t *testing.T) {
	res := css.ParseResult{
		File: "a.css",
		Rules: []css.Rule{
			mkRule("a.css", 1, "#nav .menu a", decl("color", "red"), important("display", "none")),
			mkRule("a.css", 5, ".plain", decl("color", "blue")),
		},
	}

	fm := ComputeFile(res)

	if fm.Rules != 2 || fm.Selectors != 2 || fm.Declarations != 3 {
		t.Errorf("counts = rules %d selectors %d declarations %d, want 2/2/3", fm.Rules, fm.Selectors, fm.Declarations)
	}
	if fm.ImportantCount != 1 {
		t.Errorf("ImportantCount = %d, want 1", fm.ImportantCount)
	}
	if fm.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", fm.MaxDepth)
	}
	if fm.MaxSpecificity != (css.Specificity{IDs: 1, Classes: 1, Elements: 1}) {
		t.Errorf("MaxSpecificity = %v, want (1,1,1)", fm.MaxSpecificity)
	}
	// (3+1)/2 and per-component means over both selectors
	if fm.AvgDepth != 2 {
		t.Errorf("AvgDepth = %v, want 2", fm.AvgDepth)
	}
	want := SpecificityMean{IDs: 0.5, Classes: 1, Elements: 0.5}
	if fm.AvgSpecificity != want {
		t.Errorf("AvgSpecificity = %+v, want %+v", fm.AvgSpecificity, want)
	}
}

func TestComputeFileEmpty(t *testing.T) {
	fm := ComputeFile(css.ParseResult{File: "empty.css"})

	if fm.Rules != 0 || fm.AvgDepth != 0 || fm.AvgSpecificity.Score() != 0 {
		t.Errorf("empty file metrics not zero: %+v", fm)
	}
}

func TestComputeGlobalAggregation(t *testing.T) {
	results := []css.ParseResult{
		{File: "a.css", Rules: []css.Rule{
			mkRule("a.css", 1, "div span", decl("color", "red")),
		}},
		{File: "b.css", Rules: []css.Rule{
			mkRule("b.css", 1, "#id .c .d .e", decl("color", "red")),
		}},
	}

	files, global := Compute(results, config.DefaultAnalysis())

	if len(files) != 2 || global.Files != 2 {
		t.Fatalf("files = %d, global.Files = %d, want 2", len(files), global.Files)
	}
	if global.Rules != 2 || global.Selectors != 2 || global.Declarations != 2 {
		t.Errorf("global counts = %d/%d/%d, want 2/2/2", global.Rules, global.Selectors, global.Declarations)
	}
	if global.MaxDepth != 4 {
		t.Errorf("MaxDepth = %d, want 4", global.MaxDepth)
	}
	if global.MaxSpecificity != (css.Specificity{IDs: 1, Classes: 3}) {
		t.Errorf("MaxSpecificity = %v, want (1,3,0)", global.MaxSpecificity)
	}
	// mean of per-file means: depths (2 + 4) / 2
	if global.AvgDepth != 3 {
		t.Errorf("AvgDepth = %v, want 3", global.AvgDepth)
	}
	want := SpecificityMean{IDs: 0.5, Classes: 1.5, Elements: 1}
	if global.AvgSpecificity != want {
		t.Errorf("AvgSpecificity = %+v, want %+v", global.AvgSpecificity, want)
	}
}

func TestFindDuplicates(t *testing.T) {
	results := []css.ParseResult{
		{File: "a.css", Rules: []css.Rule{
			mkRule("a.css", 1, ".one", decl("color", "red")),
			mkRule("a.css", 2, ".two", decl("color", "RED  ")),
			mkRule("a.css", 3, ".three", decl("margin", "0")),
		}},
		{File: "b.css", Rules: []css.Rule{
			mkRule("b.css", 1, ".four", decl("color", "red")),
		}},
	}

	groups := findDuplicates(results, 3)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1: %+v", len(groups), groups)
	}
	g := groups[0]
	if g.Property != "color" || g.Value != "red" || g.Count != 3 {
		t.Errorf("group = %+v, want color:red count 3", g)
	}
	sels := []string{g.Occurrences[0].Selector, g.Occurrences[1].Selector, g.Occurrences[2].Selector}
	if !reflect.DeepEqual(sels, []string{".one", ".two", ".four"}) {
		t.Errorf("occurrence order = %v", sels)
	}
}

func TestFindDuplicateBlocks(t *testing.T) {
	shared := []css.Declaration{
		decl("display", "flex"),
		decl("align-items", "center"),
		decl("gap", "8px"),
	}
	results := []css.ParseResult{
		{File: "a.css", Rules: []css.Rule{
			mkRule("a.css", 1, ".row", shared...),
			mkRule("a.css", 8, ".toolbar", shared...),
			mkRule("a.css", 15, ".other", decl("color", "red"), decl("margin", "0")),
		}},
	}

	groups := findDuplicateBlocks(results, config.DuplicateBlocksConfig{MinProperties: 3, MinOccurrences: 2})

	if len(groups) != 1 {
		t.Fatalf("got %d block groups, want 1: %+v", len(groups), groups)
	}
	g := groups[0]
	if g.Count != 2 {
		t.Errorf("Count = %d, want 2", g.Count)
	}
	want := []string{"align-items:center", "display:flex", "gap:8px"}
	if !reflect.DeepEqual(g.Properties, want) {
		t.Errorf("Properties = %v, want alphabetical %v", g.Properties, want)
	}
}

func TestFindOverrides(t *testing.T) {
	var rules []css.Rule
	for i, sel := range []string{".a", ".b", "#c", ".d", ".e"} {
		rules = append(rules, mkRule("a.css", i+1, sel, decl("color", "red"), decl("color", "blue")))
	}
	rules = append(rules, mkRule("a.css", 20, ".last", decl("margin", "0")))

	groups := findOverrides([]css.ParseResult{{File: "a.css", Rules: rules}}, 5)

	if len(groups) != 1 {
		t.Fatalf("got %d override groups, want 1: %+v", len(groups), groups)
	}
	g := groups[0]
	if g.Property != "color" {
		t.Errorf("Property = %q, want color", g.Property)
	}
	// a rule counts once per property even when it repeats the declaration
	if g.Count != 5 || len(g.Definitions) != 5 {
		t.Errorf("Count = %d, Definitions = %d, want 5/5", g.Count, len(g.Definitions))
	}
	if g.Definitions[2].Specificity != (css.Specificity{IDs: 1}) {
		t.Errorf("definition specificity = %v, want (1,0,0)", g.Definitions[2].Specificity)
	}
}

func TestRuleRisk(t *testing.T) {
	tests := []struct {
		name  string
		decls []css.Declaration
		want  int
	}{
		{
			name:  "no layout properties",
			decls: []css.Declaration{decl("color", "red"), decl("background", "blue")},
			want:  0,
		},
		{
			name:  "plain layout properties",
			decls: []css.Declaration{decl("width", "100px"), decl("margin", "0")},
			want:  2,
		},
		{
			name:  "absolute positioning penalty",
			decls: []css.Declaration{decl("position", "absolute")},
			want:  3,
		},
		{
			name:  "negative margin penalty",
			decls: []css.Declaration{decl("margin-left", "-10px")},
			want:  2,
		},
		{
			name: "position top left combination",
			decls: []css.Declaration{
				decl("position", "absolute"),
				decl("top", "0"),
				decl("left", "0"),
			},
			// 3+1+1 = 5, then x1.5 = 7.5 rounds to 8
			want: 8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := css.Rule{Declarations: tt.decls}
			if got := RuleRisk(rule); got != tt.want {
				t.Errorf("RuleRisk() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsLayoutProperty(t *testing.T) {
	for prop, want := range map[string]bool{
		"display":    true,
		"Position":   true,
		" margin ":   true,
		"color":      false,
		"background": false,
	} {
		if got := IsLayoutProperty(prop); got != want {
			t.Errorf("IsLayoutProperty(%q) = %v, want %v", prop, got, want)
		}
	}
}
