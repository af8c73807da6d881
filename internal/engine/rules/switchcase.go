package rules

import (
	"fmt"

	"cconform/internal/engine/findings"
	"cconform/internal/engine/parser"
)

// SwitchDefault checks that every switch statement carries a default
// case.
type SwitchDefault struct{}

func (SwitchDefault) ID() string             { return "switch-default" }
func (SwitchDefault) Strictness() Strictness { return StrictnessMust }

func (r SwitchDefault) Evaluate(res *parser.ParseResult, _ *Options) []findings.Finding {
	var out []findings.Finding
	for _, block := range res.ControlBlocks {
		if block.Kind != parser.CtrlSwitch || block.HasDefault {
			continue
		}
		out = append(out, finding(r, res, block.Pos.Line, block.Pos.Column,
			"switch statement must have a default case"))
	}
	return out
}

// SwitchBreak checks that every non-empty case ends in break, return,
// goto or continue, or announces the fall-through with a comment
// right before the next label. Empty labels stacking onto a shared
// body are fine.
type SwitchBreak struct{}

func (SwitchBreak) ID() string             { return "switch-break" }
func (SwitchBreak) Strictness() Strictness { return StrictnessMust }

func (r SwitchBreak) Evaluate(res *parser.ParseResult, _ *Options) []findings.Finding {
	var out []findings.Finding
	for _, block := range res.ControlBlocks {
		if block.Kind != parser.CtrlSwitch {
			continue
		}
		for _, clause := range block.Cases {
			if clause.Empty || clause.Terminated || clause.HasFallthroughComment {
				continue
			}
			out = append(out, finding(r, res, clause.Pos.Line, clause.Pos.Column,
				fmt.Sprintf("%s must end with break or an explicit fallthrough comment", clauseName(clause))))
		}
	}
	return out
}

func clauseName(clause parser.CaseClause) string {
	if clause.IsDefault {
		return "default case"
	}
	return "case"
}
