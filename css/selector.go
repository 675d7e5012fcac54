package css

import (
	"fmt"
	"regexp"
	"strings"
)

// legacy single-colon pseudo-elements, counted as elements like their
// double-colon forms
var legacyPseudoElements = map[string]bool{
	"before":       true,
	"after":        true,
	"first-line":   true,
	"first-letter": true,
	"selection":    true,
	"placeholder":  true,
}

// selector-list-valued pseudo-classes: contribute zero themselves, their
// argument selectors are walked recursively
var listPseudoClasses = map[string]bool{
	"not":   true,
	"is":    true,
	"where": true,
	"has":   true,
}

type tokenKind int

// Closed set of selector constructs. The walkers below switch exhaustively
// over these.
const (
	tokenTypeSel tokenKind = iota
	tokenUniversal
	tokenID
	tokenClass
	tokenAttribute
	tokenPseudoClass
	tokenPseudoElement
	tokenCombinator
)

type selToken struct {
	kind tokenKind
	name string // identifier: tag/class/id/pseudo name, combinator symbol
	args string // raw argument text of a functional pseudo-class
}

// ParseSelector analyzes one selector branch (already split on commas) and
// returns its depth, specificity and structural flags. Malformed input never
// fails - it degrades to a regex-based approximation.
func ParseSelector(raw string) Selector {
	raw = strings.TrimSpace(raw)
	sel := Selector{Raw: raw, Depth: 1}

	tokens, err := tokenizeSelector(raw)
	if err != nil {
		return approximateSelector(raw)
	}
	walkTokens(tokens, true, &sel)
	return sel
}

// walkTokens accumulates specificity and flags from a token stream.
// Combinators increase depth only at the top level of the selector, not
// inside functional pseudo-class arguments.
func walkTokens(tokens []selToken, topLevel bool, sel *Selector) {
	for _, t := range tokens {
		switch t.kind {
		case tokenCombinator:
			if topLevel {
				sel.Depth++
			}
		case tokenID:
			sel.Specificity.IDs++
			sel.HasID = true
		case tokenClass:
			sel.Specificity.Classes++
		case tokenAttribute:
			sel.Specificity.Classes++
			sel.HasAttribute = true
		case tokenPseudoElement:
			sel.Specificity.Elements++
			sel.HasPseudoElement = true
		case tokenPseudoClass:
			name := strings.ToLower(t.name)
			switch {
			case legacyPseudoElements[name]:
				// single-colon legacy form of a pseudo-element
				sel.Specificity.Elements++
				sel.HasPseudoElement = true
			case listPseudoClasses[name]:
				sel.HasPseudoClass = true
				walkArguments(t.args, sel)
			default:
				sel.Specificity.Classes++
				sel.HasPseudoClass = true
			}
		case tokenTypeSel:
			sel.Specificity.Elements++
		case tokenUniversal:
			// contributes nothing
		}
	}
}

// walkArguments recursively walks the selector list inside :not()/:is()/
// :where()/:has(). Argument selectors contribute to specificity and flags
// normally; their combinators do not affect top-level depth.
func walkArguments(args string, sel *Selector) {
	for _, branch := range SplitSelectorList(args) {
		tokens, err := tokenizeSelector(branch)
		if err != nil {
			continue
		}
		walkTokens(tokens, false, sel)
	}
}

// tokenizeSelector scans one selector branch into the closed token set.
// It returns an error on structurally broken input (unterminated attribute
// or argument list), which callers turn into the regex fallback.
func tokenizeSelector(s string) ([]selToken, error) {
	var (
		tokens    []selToken
		pendingWS bool
	)

	flushWS := func() {
		if pendingWS && len(tokens) > 0 {
			tokens = append(tokens, selToken{kind: tokenCombinator, name: " "})
		}
		pendingWS = false
	}

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			pendingWS = true
			i++
		case c == '>' || c == '+' || c == '~':
			// explicit combinator absorbs surrounding whitespace
			if len(tokens) > 0 {
				tokens = append(tokens, selToken{kind: tokenCombinator, name: string(c)})
			}
			pendingWS = false
			i++
		case c == '#':
			flushWS()
			name, n := scanIdent(s[i+1:])
			if n == 0 {
				return nil, fmt.Errorf("empty id selector at %d", i)
			}
			tokens = append(tokens, selToken{kind: tokenID, name: name})
			i += 1 + n
		case c == '.':
			flushWS()
			name, n := scanIdent(s[i+1:])
			if n == 0 {
				return nil, fmt.Errorf("empty class selector at %d", i)
			}
			tokens = append(tokens, selToken{kind: tokenClass, name: name})
			i += 1 + n
		case c == '[':
			flushWS()
			end, err := matchBracket(s, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, selToken{kind: tokenAttribute, name: s[i+1 : end]})
			i = end + 1
		case c == ':':
			flushWS()
			double := i+1 < len(s) && s[i+1] == ':'
			start := i + 1
			if double {
				start++
			}
			name, n := scanIdent(s[start:])
			if n == 0 {
				return nil, fmt.Errorf("empty pseudo selector at %d", i)
			}
			tok := selToken{kind: tokenPseudoClass, name: name}
			if double {
				tok.kind = tokenPseudoElement
			}
			i = start + n
			if i < len(s) && s[i] == '(' {
				end, err := matchParen(s, i)
				if err != nil {
					return nil, err
				}
				tok.args = s[i+1 : end]
				i = end + 1
			}
			tokens = append(tokens, tok)
		case c == '*':
			flushWS()
			tokens = append(tokens, selToken{kind: tokenUniversal})
			i++
		case c == '&':
			// nesting selector, no specificity of its own here
			flushWS()
			tokens = append(tokens, selToken{kind: tokenUniversal})
			i++
		case c == '|':
			// namespace separator, the following ident is the type
			i++
		default:
			name, n := scanIdent(s[i:])
			if n == 0 {
				return nil, fmt.Errorf("unexpected character %q at %d", c, i)
			}
			if i+n < len(s) && s[i+n] == '|' && !(i+n+1 < len(s) && s[i+n+1] == '=') {
				// namespace prefix, only the element name after '|' counts
				i += n + 1
				continue
			}
			flushWS()
			tokens = append(tokens, selToken{kind: tokenTypeSel, name: name})
			i += n
		}
	}
	return tokens, nil
}

// scanIdent consumes a CSS identifier (letters, digits, '-', '_', escapes and
// non-ASCII) and returns it with its byte length.
func scanIdent(s string) (string, int) {
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i += 2
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c >= 0x80:
			i++
		default:
			return s[:i], i
		}
	}
	return s[:i], i
}

// matchBracket finds the closing ']' for the '[' at start, honoring quoted
// attribute values.
func matchBracket(s string, start int) (int, error) {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			end, err := skipString(s, i)
			if err != nil {
				return 0, err
			}
			i = end
		case ']':
			return i, nil
		}
	}
	return 0, fmt.Errorf("unterminated attribute selector at %d", start)
}

// matchParen finds the matching ')' for the '(' at start, honoring nesting
// and quoted strings.
func matchParen(s string, start int) (int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			end, err := skipString(s, i)
			if err != nil {
				return 0, err
			}
			i = end
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unterminated argument list at %d", start)
}

func skipString(s string, start int) (int, error) {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i, nil
		}
	}
	return 0, fmt.Errorf("unterminated string at %d", start)
}

// SplitSelectorList splits a selector list on top-level commas, ignoring
// commas inside parentheses, brackets and strings. Empty branches are
// dropped.
func SplitSelectorList(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case '"', '\'':
			if end, err := skipString(s, i); err == nil {
				i = end
			} else {
				i = len(s)
			}
		case ',':
			if depth == 0 {
				if b := strings.TrimSpace(s[start:i]); b != "" {
					out = append(out, b)
				}
				start = i + 1
			}
		}
	}
	if b := strings.TrimSpace(s[start:]); b != "" {
		out = append(out, b)
	}
	return out
}

// Regex approximation used when structural tokenization fails. Analysis must
// never abort on malformed CSS, so this branch still produces a positive
// depth and non-negative specificity components.
var (
	approxID          = regexp.MustCompile(`#[A-Za-z_][-\w]*`)
	approxClass       = regexp.MustCompile(`\.[A-Za-z_][-\w]*`)
	approxAttr        = regexp.MustCompile(`\[[^\]]*\]?`)
	approxPseudoElem  = regexp.MustCompile(`::[A-Za-z][-\w]*`)
	approxPseudoClass = regexp.MustCompile(`(^|[^:]):([A-Za-z][-\w]*)`)
	approxTypeSel     = regexp.MustCompile(`(?:^|[\s>+~(,])([A-Za-z][-\w]*)`)
)

func approximateSelector(raw string) Selector {
	sel := Selector{Raw: raw}

	ids := len(approxID.FindAllString(raw, -1))
	classes := len(approxClass.FindAllString(raw, -1))
	attrs := len(approxAttr.FindAllString(raw, -1))
	pseudoElems := len(approxPseudoElem.FindAllString(raw, -1))
	pseudoClasses := 0
	for _, m := range approxPseudoClass.FindAllStringSubmatch(raw, -1) {
		if legacyPseudoElements[strings.ToLower(m[2])] {
			pseudoElems++
		} else if !listPseudoClasses[strings.ToLower(m[2])] {
			pseudoClasses++
		}
	}
	types := len(approxTypeSel.FindAllString(raw, -1))

	sel.Specificity = Specificity{
		IDs:      ids,
		Classes:  classes + attrs + pseudoClasses,
		Elements: types + pseudoElems,
	}
	sel.HasID = ids > 0
	sel.HasAttribute = attrs > 0
	sel.HasPseudoClass = pseudoClasses > 0 || strings.Contains(raw, ":")
	sel.HasPseudoElement = pseudoElems > 0

	// approximate depth: treat explicit combinators as whitespace and count
	// the remaining compound selectors
	flat := strings.Map(func(r rune) rune {
		if r == '>' || r == '+' || r == '~' {
			return ' '
		}
		return r
	}, raw)
	if n := len(strings.Fields(flat)); n > 1 {
		sel.Depth = n
	} else {
		sel.Depth = 1
	}
	return sel
}
