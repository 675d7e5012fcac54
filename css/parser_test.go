package css

import (
	"reflect"
	"testing"
)

func parseString(t *testing.T, src string) ParseResult {
	t.Helper()
	return NewParser(nil).Parse([]byte(src), "test.css")
}

func TestParseBasicRule(t *testing.T) {
	res := parseString(t, ".button { color: red; }")

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(res.Rules))
	}

	rule := res.Rules[0]
	if rule.File != "test.css" {
		t.Errorf("File = %q, want test.css", rule.File)
	}
	if len(rule.Selectors) != 1 || rule.Selectors[0].Raw != ".button" {
		t.Errorf("selectors = %+v, want single .button", rule.Selectors)
	}
	want := Declaration{Property: "color", Value: "red"}
	if len(rule.Declarations) != 1 || rule.Declarations[0] != want {
		t.Errorf("declarations = %+v, want [%+v]", rule.Declarations, want)
	}
	if rule.Layer != nil {
		t.Errorf("Layer = %v, want nil", *rule.Layer)
	}
	if res.UsesLayers {
		t.Error("UsesLayers = true, want false")
	}
}

func TestParseGroupedSelectors(t *testing.T) {
	res := parseString(t, "h1, h2.title, #top h3 { margin: 0 }")

	if len(res.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(res.Rules))
	}
	rule := res.Rules[0]
	if len(rule.Selectors) != 3 {
		t.Fatalf("got %d selectors, want 3", len(rule.Selectors))
	}

	raws := []string{rule.Selectors[0].Raw, rule.Selectors[1].Raw, rule.Selectors[2].Raw}
	if !reflect.DeepEqual(raws, []string{"h1", "h2.title", "#top h3"}) {
		t.Errorf("selector raws = %v", raws)
	}
	if got := rule.Selectors[2].Specificity; got != (Specificity{IDs: 1, Elements: 1}) {
		t.Errorf("#top h3 specificity = %v, want (1,0,1)", got)
	}
	if len(rule.Declarations) != 1 {
		t.Errorf("declarations shared by the group, got %d want 1", len(rule.Declarations))
	}
}

func TestParseImportant(t *testing.T) {
	res := parseString(t, "a { color: blue !IMPORTANT; margin: 0   auto; }")

	if len(res.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(res.Rules))
	}
	decls := res.Rules[0].Declarations
	if len(decls) != 2 {
		t.Fatalf("got %d declarations, want 2", len(decls))
	}
	if decls[0].Value != "blue" || !decls[0].Important {
		t.Errorf("decl 0 = %+v, want value blue important", decls[0])
	}
	if decls[1].Value != "0 auto" || decls[1].Important {
		t.Errorf("decl 1 = %+v, want collapsed value %q", decls[1], "0 auto")
	}
}

func TestParsePropertyLowercased(t *testing.T) {
	res := parseString(t, "a { COLOR: RED }")

	if len(res.Rules) != 1 || len(res.Rules[0].Declarations) != 1 {
		t.Fatalf("unexpected shape: %+v", res.Rules)
	}
	d := res.Rules[0].Declarations[0]
	if d.Property != "color" {
		t.Errorf("Property = %q, want color (lowercased)", d.Property)
	}
	if d.Value != "RED" {
		t.Errorf("Value = %q, want RED (kept as written)", d.Value)
	}
}

func TestParseLayerBlock(t *testing.T) {
	res := parseString(t, `
@layer base {
	a { color: red }
}
p { margin: 0 }
`)

	if !res.UsesLayers {
		t.Error("UsesLayers = false, want true")
	}
	if !reflect.DeepEqual(res.Layers, []string{"base"}) {
		t.Errorf("Layers = %v, want [base]", res.Layers)
	}
	if len(res.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(res.Rules))
	}
	if res.Rules[0].Layer == nil || *res.Rules[0].Layer != "base" {
		t.Errorf("rule 0 layer = %v, want base", res.Rules[0].Layer)
	}
	if res.Rules[1].Layer != nil {
		t.Errorf("rule 1 layer = %v, want nil", *res.Rules[1].Layer)
	}
}

func TestParseLayerStatement(t *testing.T) {
	res := parseString(t, "@layer reset, base, components;")

	if !res.UsesLayers {
		t.Error("UsesLayers = false, want true")
	}
	if !reflect.DeepEqual(res.Layers, []string{"reset", "base", "components"}) {
		t.Errorf("Layers = %v", res.Layers)
	}
	if len(res.Rules) != 0 {
		t.Errorf("got %d rules, want 0", len(res.Rules))
	}
}

func TestParseLayerDeduplication(t *testing.T) {
	res := parseString(t, `
@layer base;
@layer base { a { top: 0 } }
@layer other;
`)

	if !reflect.DeepEqual(res.Layers, []string{"base", "other"}) {
		t.Errorf("Layers = %v, want first-seen unique [base other]", res.Layers)
	}
}

func TestParseAnonymousLayer(t *testing.T) {
	res := parseString(t, "@layer { a { top: 0 } }")

	if !res.UsesLayers {
		t.Error("UsesLayers = false, want true")
	}
	if len(res.Layers) != 0 {
		t.Errorf("Layers = %v, want none for anonymous layer", res.Layers)
	}
	if len(res.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(res.Rules))
	}
	if res.Rules[0].Layer != nil {
		t.Errorf("rule layer = %v, want nil for anonymous layer", *res.Rules[0].Layer)
	}
}

func TestParseNestedAtRules(t *testing.T) {
	res := parseString(t, `
@layer theme {
	@media screen and (min-width: 600px) {
		.wide { display: flex }
	}
}
`)

	if len(res.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(res.Rules))
	}
	rule := res.Rules[0]
	if rule.Layer == nil || *rule.Layer != "theme" {
		t.Errorf("layer = %v, want theme resolved through @media", rule.Layer)
	}
	if rule.Selectors[0].Raw != ".wide" {
		t.Errorf("selector = %q, want .wide", rule.Selectors[0].Raw)
	}
}

func TestParseLinePositions(t *testing.T) {
	res := parseString(t, "a { color: red }\n\n.second { margin: 0 }\n")

	if len(res.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(res.Rules))
	}
	if res.Rules[0].Line != 1 {
		t.Errorf("rule 0 line = %d, want 1", res.Rules[0].Line)
	}
	if res.Rules[1].Line != 3 {
		t.Errorf("rule 1 line = %d, want 3", res.Rules[1].Line)
	}
}

func TestParseGarbageNeverPanics(t *testing.T) {
	for _, src := range []string{
		"}}}{{{",
		"@;;; }{",
		"a { color: red",
		"\x00\xff\xfe",
		"",
	} {
		res := NewParser(nil).Parse([]byte(src), "junk.css")
		if res.File != "junk.css" {
			t.Errorf("File = %q, want junk.css", res.File)
		}
		for _, r := range res.Rules {
			if len(r.Selectors) == 0 {
				t.Errorf("input %q produced a rule without selectors", src)
			}
		}
	}
}
