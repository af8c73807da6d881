package rules

import (
	"fmt"

	"cconform/internal/engine/findings"
	"cconform/internal/engine/parser"
)

// DocComment checks that every function definition carries a
// documentation comment with a @brief and one @param per parameter.
// Parameter tags are matched by name, in any order. Prototypes are
// exempt: the definition is where the documentation lives.
type DocComment struct{}

func (DocComment) ID() string             { return "doc-comment" }
func (DocComment) Strictness() Strictness { return StrictnessMust }

func (r DocComment) Evaluate(res *parser.ParseResult, _ *Options) []findings.Finding {
	var out []findings.Finding
	for _, decl := range res.Declarations {
		if decl.Kind != parser.DeclFunction || !decl.HasBody {
			continue
		}
		line, col := decl.Span.Start.Line, decl.Span.Start.Column
		if decl.Doc == nil {
			out = append(out, finding(r, res, line, col,
				fmt.Sprintf("function %s has no documentation comment", decl.Name)))
			continue
		}
		if !decl.Doc.HasTag("brief") {
			out = append(out, finding(r, res, line, col,
				fmt.Sprintf("documentation for %s is missing @brief", decl.Name)))
		}
		documented := map[string]bool{}
		for _, name := range decl.Doc.ParamNames {
			documented[name] = true
		}
		for _, param := range decl.Params {
			if param.Name == "" || documented[param.Name] {
				continue
			}
			out = append(out, finding(r, res, line, col,
				fmt.Sprintf("documentation for %s is missing @param %s", decl.Name, param.Name)))
		}
	}
	return out
}
