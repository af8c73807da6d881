package rules

import (
	"fmt"
	"strconv"
	"strings"

	"cconform/internal/engine/findings"
	"cconform/internal/engine/lexer"
	"cconform/internal/engine/parser"
)

// MagicNumber flags numeric literals used outside a named constant
// definition. Numbers on preprocessor lines, values initializing an
// UPPER_SNAKE name (enum members, const definitions) and the
// configured allow list are exempt.
type MagicNumber struct{}

func (MagicNumber) ID() string             { return "magic-number" }
func (MagicNumber) Strictness() Strictness { return StrictnessShould }

func (r MagicNumber) Evaluate(res *parser.ParseResult, opts *Options) []findings.Finding {
	var out []findings.Finding
	tokens := res.File.Tokens

	prev, prev2 := -1, -1 // indices of the last two significant tokens
	for i, tok := range tokens {
		if tok.IsTrivia() {
			continue
		}
		if tok.Kind == lexer.KindNumber && !res.DirectiveLines[tok.Pos.Line] {
			if f, bad := r.check(res, tokens, i, prev, prev2, opts); bad {
				out = append(out, f)
			}
		}
		prev2 = prev
		prev = i
	}
	return out
}

func (r MagicNumber) check(res *parser.ParseResult, tokens []lexer.Token, i, prev, prev2 int, opts *Options) (findings.Finding, bool) {
	tok := tokens[i]

	negated := false
	if prev >= 0 && tokens[prev].Text == "-" && unaryContext(tokens, prev2) {
		negated = true
		prev, prev2 = prev2, prevSignificant(tokens, prev2)
	}

	// A literal assigned straight to an UPPER_SNAKE name is a constant
	// definition, not a magic use.
	if prev >= 0 && prev2 >= 0 && tokens[prev].Text == "=" &&
		tokens[prev2].Kind == lexer.KindIdentifier &&
		parser.Classify(tokens[prev2].Text) == parser.CasingUpperSnake {
		return findings.Finding{}, false
	}

	if value, ok := literalValue(tok.Text); ok {
		if negated {
			value = -value
		}
		if opts.allowsMagicNumber(value) {
			return findings.Finding{}, false
		}
	}

	text := tok.Text
	if negated {
		text = "-" + text
	}
	return finding(r, res, tok.Pos.Line, tok.Pos.Column,
		fmt.Sprintf("magic number %s should be a named constant", text)), true
}

// unaryContext reports whether a minus before position i is a sign
// rather than subtraction: true when nothing precedes it or the
// preceding significant token is an operator or opening punctuation.
func unaryContext(tokens []lexer.Token, before int) bool {
	if before < 0 {
		return true
	}
	tok := tokens[before]
	switch tok.Kind {
	case lexer.KindOperator:
		return true
	case lexer.KindPunct:
		return tok.Text != ")" && tok.Text != "]"
	default:
		return false
	}
}

func prevSignificant(tokens []lexer.Token, before int) int {
	for i := before - 1; i >= 0; i-- {
		if !tokens[i].IsTrivia() {
			return i
		}
	}
	return -1
}

// literalValue parses an integer literal, tolerating hex/octal bases
// and unsigned/long suffixes. Floats report !ok and are always
// treated as magic.
func literalValue(text string) (int, bool) {
	trimmed := strings.TrimRight(strings.ToLower(text), "ul")
	if trimmed == "" {
		return 0, false
	}
	if strings.ContainsAny(trimmed, ".ep") && !strings.HasPrefix(trimmed, "0x") {
		return 0, false
	}
	value, err := strconv.ParseInt(trimmed, 0, 64)
	if err != nil {
		return 0, false
	}
	return int(value), true
}
