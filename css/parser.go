package css

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	tdcss "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser turns raw stylesheet text into ParseResults. It is built on the
// tdewolff tolerant tokenizer, so syntactically broken input yields partial
// results instead of a hard failure.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a stylesheet parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text from one source file. It never panics and never
// returns an error: a parser-level fault produces a ParseResult with empty
// rules and one error string, per-rule problems are recovered in place.
func (p *Parser) Parse(data []byte, fname string) (res ParseResult) {
	res = ParseResult{File: fname}

	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("Parser fault, dropping file results", zap.String("file", fname), zap.Any("cause", r))
			res.Rules = nil
			res.Errors = append(res.Errors, fmt.Sprintf("parser fault: %v", r))
		}
	}()

	p.log.Debug("Parsing stylesheet", zap.String("file", fname), zap.Int("bytes", len(data)))
	p.parseInto(&res, data)
	p.log.Debug("Parsed stylesheet", zap.String("file", fname),
		zap.Int("rules", len(res.Rules)), zap.Int("layers", len(res.Layers)), zap.Int("errors", len(res.Errors)))
	return res
}

// atFrame is one entry of the open at-rule stack. layer is set for named
// @layer blocks so rules can resolve their owning layer by walking up.
type atFrame struct {
	name  string
	layer *string
}

func (p *Parser) parseInto(res *ParseResult, data []byte) {
	input := parse.NewInputBytes(data)
	parser := tdcss.NewParser(input, false)

	var (
		atStack []atFrame
		// indices into res.Rules of the open rulesets, innermost last;
		// appending at block start keeps rules in source order
		ruleStack []int
		// selector prelude parts already consumed as QualifiedRuleGrammar,
		// waiting for the ruleset that closes the list
		pending []string
	)

	defer func() {
		// a ruleset whose selector list failed to produce any branch is dropped
		kept := res.Rules[:0]
		for _, r := range res.Rules {
			if len(r.Selectors) > 0 {
				kept = append(kept, r)
			}
		}
		res.Rules = kept
	}()

	for {
		gt, _, tok := parser.Next()

		switch gt {
		case tdcss.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				res.Errors = append(res.Errors, err.Error())
				p.log.Debug("CSS parse error", zap.String("file", res.File), zap.Error(err))
			}
			return

		case tdcss.BeginAtRuleGrammar:
			name := strings.ToLower(string(tok))
			frame := atFrame{name: name}
			if name == "@layer" {
				res.UsesLayers = true
				if ln := identsFromTokens(parser.Values()); len(ln) == 1 {
					res.addLayer(ln[0])
					frame.layer = &ln[0]
				}
			}
			atStack = append(atStack, frame)

		case tdcss.EndAtRuleGrammar:
			if len(atStack) > 0 {
				atStack = atStack[:len(atStack)-1]
			}

		case tdcss.AtRuleGrammar:
			// statement form without a block, e.g. "@layer a, b, c;"
			if strings.ToLower(string(tok)) == "@layer" {
				res.UsesLayers = true
				for _, ln := range identsFromTokens(parser.Values()) {
					res.addLayer(ln)
				}
			}

		case tdcss.QualifiedRuleGrammar:
			// one selector of a comma-separated list, block not reached yet
			pending = append(pending, joinTokens(tok, parser.Values()))

		case tdcss.BeginRulesetGrammar:
			line, col := position(data, input.Offset())
			rule := &Rule{
				File:   res.File,
				Line:   line,
				Column: col,
				Layer:  nearestLayer(atStack),
			}
			prelude := strings.Join(append(pending, joinTokens(tok, parser.Values())), ",")
			pending = nil
			for _, branch := range SplitSelectorList(prelude) {
				rule.Selectors = append(rule.Selectors, ParseSelector(branch))
			}
			res.Rules = append(res.Rules, *rule)
			ruleStack = append(ruleStack, len(res.Rules)-1)

		case tdcss.EndRulesetGrammar:
			if n := len(ruleStack); n > 0 {
				ruleStack = ruleStack[:n-1]
			}

		case tdcss.DeclarationGrammar:
			if n := len(ruleStack); n > 0 {
				value, important := valueFromTokens(parser.Values())
				rule := &res.Rules[ruleStack[n-1]]
				rule.Declarations = append(rule.Declarations, Declaration{
					Property:  strings.ToLower(string(tok)),
					Value:     value,
					Important: important,
				})
			}

		case tdcss.CustomPropertyGrammar:
			// custom properties carry no cascade weight here
		}
	}
}

// nearestLayer resolves the owning cascade layer by walking the open at-rule
// chain from the innermost frame out. Anonymous @layer blocks and rules
// outside any @layer yield nil.
func nearestLayer(stack []atFrame) *string {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].name == "@layer" {
			return stack[i].layer
		}
	}
	return nil
}

// joinTokens rebuilds raw prelude text from the grammar data and its value
// tokens, the same way the upstream token stream produced it.
func joinTokens(data []byte, values []tdcss.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	return sb.String()
}

// identsFromTokens extracts identifier tokens from an at-rule prelude,
// joining dot-separated (nested) layer names back together.
func identsFromTokens(tokens []tdcss.Token) []string {
	var (
		names   []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			names = append(names, current.String())
			current.Reset()
		}
	}
	for _, t := range tokens {
		switch t.TokenType {
		case tdcss.IdentToken:
			current.Write(t.Data)
		case tdcss.DelimToken:
			if len(t.Data) == 1 && t.Data[0] == '.' {
				current.WriteByte('.')
			}
		case tdcss.CommaToken:
			flush()
		}
	}
	flush()
	return names
}

// valueFromTokens renders a declaration value exactly as written, collapsing
// whitespace runs to single spaces, and strips a trailing "!important".
func valueFromTokens(tokens []tdcss.Token) (string, bool) {
	var parts []string
	for _, t := range tokens {
		if t.TokenType == tdcss.WhitespaceToken {
			if len(parts) > 0 && parts[len(parts)-1] != " " {
				parts = append(parts, " ")
			}
			continue
		}
		parts = append(parts, string(t.Data))
	}
	value := strings.TrimSpace(strings.Join(parts, ""))

	important := false
	lower := strings.ToLower(value)
	if idx := strings.LastIndex(lower, "!"); idx >= 0 && strings.TrimSpace(lower[idx+1:]) == "important" {
		important = true
		value = strings.TrimSpace(value[:idx])
	}
	return value, important
}

// position computes 1-based line and column of a byte offset. Offsets point
// just past the construct that was consumed, so the opening brace of a rule
// maps to the line the rule starts (for single-line rules).
func position(data []byte, offset int) (line, col int) {
	if offset > len(data) {
		offset = len(data)
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
