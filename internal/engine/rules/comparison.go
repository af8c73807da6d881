package rules

import (
	"fmt"

	"cconform/internal/engine/findings"
	"cconform/internal/engine/parser"
)

// ComparisonOrder checks that when a comparison pairs a defined
// constant with a variable, the constant sits on the left. Writing
// the constant first turns an accidental `=` into a compile error.
type ComparisonOrder struct{}

func (ComparisonOrder) ID() string             { return "comparison-order" }
func (ComparisonOrder) Strictness() Strictness { return StrictnessMust }

func (r ComparisonOrder) Evaluate(res *parser.ParseResult, _ *Options) []findings.Finding {
	var out []findings.Finding
	for _, block := range res.ControlBlocks {
		for _, cmp := range block.Comparisons {
			if cmp.LeftClass != parser.OperandVarRef || cmp.RightClass != parser.OperandConstRef {
				continue
			}
			out = append(out, finding(r, res, cmp.Span.Start.Line, cmp.Span.Start.Column,
				fmt.Sprintf("constant %s must be the left operand of %s", cmp.Right.Text, cmp.Operator.Text)))
		}
	}
	return out
}
