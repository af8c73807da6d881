package rules

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"cconform/internal/engine/findings"
	"cconform/internal/engine/lexer"
	"cconform/internal/engine/parser"
)

// Indentation checks leading whitespace: no tab/space mixing, and
// space indents must be a multiple of the configured width. Lines that
// live inside block comments or string literals never surface as
// leading whitespace tokens, so they are skipped naturally.
type Indentation struct{}

func (Indentation) ID() string             { return "indentation" }
func (Indentation) Strictness() Strictness { return StrictnessMust }

func (r Indentation) Evaluate(res *parser.ParseResult, opts *Options) []findings.Finding {
	width := opts.IndentWidth
	if width <= 0 {
		width = 4
	}
	var out []findings.Finding
	tokens := res.File.Tokens
	for i, tok := range tokens {
		if tok.Kind != lexer.KindWhitespace || tok.Pos.Column != 1 {
			continue
		}
		// Blank lines carry no indentation worth checking.
		if i+1 < len(tokens) && (tokens[i+1].Kind == lexer.KindNewline || tokens[i+1].Kind == lexer.KindEOF) {
			continue
		}
		hasTab := strings.ContainsRune(tok.Text, '\t')
		hasSpace := strings.ContainsRune(tok.Text, ' ')
		switch {
		case hasTab && hasSpace:
			out = append(out, finding(r, res, tok.Pos.Line, 1,
				"indentation mixes tabs and spaces"))
		case hasSpace && len(tok.Text)%width != 0:
			out = append(out, finding(r, res, tok.Pos.Line, 1,
				fmt.Sprintf("indentation of %d spaces is not a multiple of %d", len(tok.Text), width)))
		}
	}
	return out
}

// BraceRequired checks that every control statement body is braced,
// single statement or not.
type BraceRequired struct{}

func (BraceRequired) ID() string             { return "brace-required" }
func (BraceRequired) Strictness() Strictness { return StrictnessMust }

func (r BraceRequired) Evaluate(res *parser.ParseResult, _ *Options) []findings.Finding {
	var out []findings.Finding
	for _, block := range res.ControlBlocks {
		if block.Braced {
			continue
		}
		out = append(out, finding(r, res, block.Pos.Line, block.Pos.Column,
			fmt.Sprintf("%s body must be enclosed in braces", controlName(block.Kind))))
	}
	return out
}

func controlName(kind parser.ControlKind) string {
	switch kind {
	case parser.CtrlIf:
		return "if"
	case parser.CtrlElseIf:
		return "else if"
	case parser.CtrlElse:
		return "else"
	case parser.CtrlSwitch:
		return "switch"
	default:
		return "loop"
	}
}

// OneStatement checks that no source line holds more than one
// statement. Semicolons inside parentheses (for headers) do not count.
type OneStatement struct{}

func (OneStatement) ID() string             { return "one-statement" }
func (OneStatement) Strictness() Strictness { return StrictnessMust }

func (r OneStatement) Evaluate(res *parser.ParseResult, _ *Options) []findings.Finding {
	var out []findings.Finding
	parenDepth := 0
	perLine := map[int]int{}
	for _, tok := range res.File.Tokens {
		if tok.Kind == lexer.KindPunct || tok.Kind == lexer.KindOperator {
			switch tok.Text {
			case "(":
				parenDepth++
			case ")":
				if parenDepth > 0 {
					parenDepth--
				}
			}
		}
		if tok.Kind != lexer.KindPunct || tok.Text != ";" || parenDepth > 0 {
			continue
		}
		if res.DirectiveLines[tok.Pos.Line] {
			continue
		}
		perLine[tok.Pos.Line]++
		if perLine[tok.Pos.Line] == 2 {
			out = append(out, finding(r, res, tok.Pos.Line, tok.Pos.Column,
				"only one statement per line is allowed"))
		}
	}
	return out
}

// LineLength checks the configured maximum line length, measured in
// runes so multibyte comments are not penalized.
type LineLength struct{}

func (LineLength) ID() string             { return "line-length" }
func (LineLength) Strictness() Strictness { return StrictnessShould }

func (r LineLength) Evaluate(res *parser.ParseResult, opts *Options) []findings.Finding {
	limit := opts.MaxLineLength
	if limit <= 0 {
		limit = 80
	}
	var out []findings.Finding
	for i, line := range strings.Split(res.File.Text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if width := utf8.RuneCountInString(line); width > limit {
			out = append(out, finding(r, res, i+1, limit+1,
				fmt.Sprintf("line is %d characters long, limit is %d", width, limit)))
		}
	}
	return out
}
