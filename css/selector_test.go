package css

import (
	"reflect"
	"testing"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Selector
	}{
		{
			name: "single class",
			raw:  ".button",
			want: Selector{
				Raw:            ".button",
				Depth:          1,
				Specificity:    Specificity{Classes: 1},
				HasPseudoClass: false,
			},
		},
		{
			name: "kitchen sink",
			raw:  "#nav .menu[data-active]:hover::after",
			want: Selector{
				Raw:              "#nav .menu[data-active]:hover::after",
				Depth:            2,
				Specificity:      Specificity{IDs: 1, Classes: 3, Elements: 1},
				HasID:            true,
				HasAttribute:     true,
				HasPseudoClass:   true,
				HasPseudoElement: true,
			},
		},
		{
			name: "type selectors with combinators",
			raw:  "div > p span",
			want: Selector{
				Raw:         "div > p span",
				Depth:       3,
				Specificity: Specificity{Elements: 3},
			},
		},
		{
			name: "universal contributes nothing",
			raw:  "*",
			want: Selector{
				Raw:   "*",
				Depth: 1,
			},
		},
		{
			name: "namespaced type selector",
			raw:  "svg|rect",
			want: Selector{
				Raw:         "svg|rect",
				Depth:       1,
				Specificity: Specificity{Elements: 1},
			},
		},
		{
			name: "namespaced universal",
			raw:  "svg|* circle",
			want: Selector{
				Raw:         "svg|* circle",
				Depth:       2,
				Specificity: Specificity{Elements: 1},
			},
		},
		{
			name: "compound selector",
			raw:  "a.external#main",
			want: Selector{
				Raw:         "a.external#main",
				Depth:       1,
				Specificity: Specificity{IDs: 1, Classes: 1, Elements: 1},
				HasID:       true,
			},
		},
		{
			name: "legacy single colon pseudo element",
			raw:  "p:before",
			want: Selector{
				Raw:              "p:before",
				Depth:            1,
				Specificity:      Specificity{Elements: 2},
				HasPseudoElement: true,
			},
		},
		{
			name: "sibling and child combinators",
			raw:  "h1 + p ~ ul > li",
			want: Selector{
				Raw:         "h1 + p ~ ul > li",
				Depth:       4,
				Specificity: Specificity{Elements: 4},
			},
		},
		{
			name: "not contributes only its arguments",
			raw:  "a:not(.skip, #anchor)",
			want: Selector{
				Raw:            "a:not(.skip, #anchor)",
				Depth:          1,
				Specificity:    Specificity{IDs: 1, Classes: 1, Elements: 1},
				HasID:          true,
				HasPseudoClass: true,
			},
		},
		{
			name: "where arguments counted but zero for itself",
			raw:  ":where(.a .b) span",
			want: Selector{
				Raw:            ":where(.a .b) span",
				Depth:          2,
				Specificity:    Specificity{Classes: 2, Elements: 1},
				HasPseudoClass: true,
			},
		},
		{
			name: "functional pseudo class",
			raw:  "li:nth-child(2n+1)",
			want: Selector{
				Raw:            "li:nth-child(2n+1)",
				Depth:          1,
				Specificity:    Specificity{Classes: 1, Elements: 1},
				HasPseudoClass: true,
			},
		},
		{
			name: "attribute with quoted value",
			raw:  `input[type="text"]`,
			want: Selector{
				Raw:          `input[type="text"]`,
				Depth:        1,
				Specificity:  Specificity{Classes: 1, Elements: 1},
				HasAttribute: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSelector(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSelector(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseSelectorMalformed(t *testing.T) {
	// unterminated constructs must not abort analysis, the approximate
	// fallback still produces usable numbers
	for _, raw := range []string{".foo[", "a:not(.b", `[attr="oops]`} {
		got := ParseSelector(raw)
		if got.Depth < 1 {
			t.Errorf("ParseSelector(%q).Depth = %d, want >= 1", raw, got.Depth)
		}
		if got.Specificity.IDs < 0 || got.Specificity.Classes < 0 || got.Specificity.Elements < 0 {
			t.Errorf("ParseSelector(%q) produced negative specificity %v", raw, got.Specificity)
		}
	}
}

func TestSpecificityCompare(t *testing.T) {
	svals := []Specificity{
		{},
		{Elements: 1},
		{Elements: 20},
		{Classes: 1},
		{Classes: 2, Elements: 5},
		{IDs: 1},
		{IDs: 1, Classes: 3, Elements: 1},
		{IDs: 2},
	}

	// svals is in strictly ascending cascade order
	for i := range svals {
		for j := range svals {
			got := svals[i].Compare(svals[j])
			want := sign(i - j)
			if got != want {
				t.Errorf("Compare(%v, %v) = %d, want %d", svals[i], svals[j], got, want)
			}
			// antisymmetry
			if rev := svals[j].Compare(svals[i]); rev != -got {
				t.Errorf("Compare not antisymmetric for %v and %v: %d vs %d", svals[i], svals[j], got, rev)
			}
		}
	}
}

func TestSpecificityCompareBeatsScalar(t *testing.T) {
	// eleven classes do not outrank a single id even though the scalar says so
	a := Specificity{Classes: 11}
	b := Specificity{IDs: 1}
	if a.Score() <= b.Score() {
		t.Fatalf("test premise broken: Score(%v)=%d, Score(%v)=%d", a, a.Score(), b, b.Score())
	}
	if a.Compare(b) != -1 {
		t.Errorf("Compare(%v, %v) = %d, want -1", a, b, a.Compare(b))
	}
}

func TestSpecificityScore(t *testing.T) {
	s := Specificity{IDs: 1, Classes: 3, Elements: 1}
	if got := s.Score(); got != 131 {
		t.Errorf("Score() = %d, want 131", got)
	}
}

func TestSplitSelectorList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a, b", []string{"a", "b"}},
		{".one", []string{".one"}},
		{"a:is(b, c), d", []string{"a:is(b, c)", "d"}},
		{`[data-x="a,b"], p`, []string{`[data-x="a,b"]`, "p"}},
		{"  a  ,  b  ", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := SplitSelectorList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitSelectorList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
