package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"cconform/internal/engine/findings"
	"cconform/internal/engine/parser"
)

// FileNaming checks that the file's base name is lower_snake with a .c
// or .h extension.
type FileNaming struct{}

func (FileNaming) ID() string             { return "file-naming" }
func (FileNaming) Strictness() Strictness { return StrictnessMust }

func (r FileNaming) Evaluate(res *parser.ParseResult, _ *Options) []findings.Finding {
	base := filepath.Base(res.File.Path)
	if validFileName(base) {
		return nil
	}
	return []findings.Finding{finding(r, res, 1, 1,
		fmt.Sprintf("file name %q must be lower_snake_case with a .c or .h extension", base))}
}

func validFileName(base string) bool {
	ext := filepath.Ext(base)
	if ext != ".c" && ext != ".h" {
		return false
	}
	stem := strings.TrimSuffix(base, ext)
	if stem == "" || stem[0] < 'a' || stem[0] > 'z' {
		return false
	}
	for i := 0; i < len(stem); i++ {
		c := stem[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

// ConstNaming checks that macro-defined constants are UPPER_SNAKE.
type ConstNaming struct{}

func (ConstNaming) ID() string             { return "const-naming" }
func (ConstNaming) Strictness() Strictness { return StrictnessMust }

func (r ConstNaming) Evaluate(res *parser.ParseResult, _ *Options) []findings.Finding {
	var out []findings.Finding
	for _, decl := range res.Declarations {
		if decl.Kind != parser.DeclConstantMacro {
			continue
		}
		if decl.Casing != parser.CasingUpperSnake {
			out = append(out, finding(r, res, decl.Span.Start.Line, decl.Span.Start.Column,
				fmt.Sprintf("constant %s must be UPPER_SNAKE_CASE", decl.Name)))
		}
	}
	return out
}

// ConstDefine flags file-scope const variables: the standard wants
// constants introduced through #define.
type ConstDefine struct{}

func (ConstDefine) ID() string             { return "const-define" }
func (ConstDefine) Strictness() Strictness { return StrictnessShould }

func (r ConstDefine) Evaluate(res *parser.ParseResult, _ *Options) []findings.Finding {
	var out []findings.Finding
	for _, decl := range res.Declarations {
		if decl.Kind != parser.DeclVariable || !decl.Const || decl.Depth != 0 {
			continue
		}
		out = append(out, finding(r, res, decl.Span.Start.Line, decl.Span.Start.Column,
			fmt.Sprintf("constant %s should be defined with #define instead of const", decl.Name)))
	}
	return out
}

// TypeNaming checks that typedef names carry one of the configured
// suffixes, _t by default.
type TypeNaming struct{}

func (TypeNaming) ID() string             { return "type-naming" }
func (TypeNaming) Strictness() Strictness { return StrictnessMust }

func (r TypeNaming) Evaluate(res *parser.ParseResult, opts *Options) []findings.Finding {
	suffixes := opts.TypeSuffixes
	if len(suffixes) == 0 {
		suffixes = []string{"_t"}
	}
	var out []findings.Finding
	for _, decl := range res.Declarations {
		if decl.Kind != parser.DeclTypedef {
			continue
		}
		if hasAnySuffix(decl.Name, suffixes) {
			continue
		}
		out = append(out, finding(r, res, decl.Span.Start.Line, decl.Span.Start.Column,
			fmt.Sprintf("typedef name %s must end with %s", decl.Name, strings.Join(suffixes, " or "))))
	}
	return out
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// hungarianPrefixes are the type-encoding prefixes the standard bans
// on variable names.
var hungarianPrefixes = []string{"sz", "psz", "lpsz", "pf", "pn", "pb", "p", "n", "b", "f", "u", "ul", "dw", "str"}

// VarNaming checks that variables are camelCase without Hungarian
// type prefixes.
type VarNaming struct{}

func (VarNaming) ID() string             { return "var-naming" }
func (VarNaming) Strictness() Strictness { return StrictnessMust }

func (r VarNaming) Evaluate(res *parser.ParseResult, _ *Options) []findings.Finding {
	var out []findings.Finding
	for _, decl := range res.Declarations {
		if decl.Kind != parser.DeclVariable {
			continue
		}
		if decl.Casing != parser.CasingCamel {
			out = append(out, finding(r, res, decl.Span.Start.Line, decl.Span.Start.Column,
				fmt.Sprintf("variable %s must be camelCase", decl.Name)))
			continue
		}
		if prefix := hungarianPrefix(decl.Name); prefix != "" {
			out = append(out, finding(r, res, decl.Span.Start.Line, decl.Span.Start.Column,
				fmt.Sprintf("variable %s must not carry the Hungarian prefix %q", decl.Name, prefix)))
		}
	}
	return out
}

// hungarianPrefix reports the banned prefix a name starts with, if
// any. The remainder after the prefix must begin with an uppercase
// letter so that plain words like "position" or "buffer" pass.
func hungarianPrefix(name string) string {
	match := ""
	for _, prefix := range hungarianPrefixes {
		if len(name) <= len(prefix) || !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := name[len(prefix)]
		if rest < 'A' || rest > 'Z' {
			continue
		}
		if len(prefix) > len(match) {
			match = prefix
		}
	}
	return match
}

// FuncNaming checks that functions are PascalCase and lead with a
// verb from the configured vocabulary.
type FuncNaming struct{}

func (FuncNaming) ID() string             { return "func-naming" }
func (FuncNaming) Strictness() Strictness { return StrictnessMust }

func (r FuncNaming) Evaluate(res *parser.ParseResult, opts *Options) []findings.Finding {
	var out []findings.Finding
	for _, decl := range res.Declarations {
		if decl.Kind != parser.DeclFunction {
			continue
		}
		if decl.Casing != parser.CasingPascal {
			out = append(out, finding(r, res, decl.Span.Start.Line, decl.Span.Start.Column,
				fmt.Sprintf("function %s must be PascalCase", decl.Name)))
			continue
		}
		words := parser.PascalWords(decl.Name)
		if len(words) == 0 || !opts.hasVerb(words[0]) {
			out = append(out, finding(r, res, decl.Span.Start.Line, decl.Span.Start.Column,
				fmt.Sprintf("function %s must start with a verb (for example %s)", decl.Name, verbHint(opts))))
		}
	}
	return out
}

func verbHint(opts *Options) string {
	hints := opts.VerbWhitelist
	if len(hints) > 3 {
		hints = hints[:3]
	}
	return strings.Join(hints, ", ")
}
