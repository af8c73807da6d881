package parser

import "cconform/internal/engine/lexer"

// DeclKind classifies a parsed declaration.
type DeclKind int

const (
	DeclVariable DeclKind = iota
	DeclConstantMacro
	DeclTypedef
	DeclFunction
	DeclField
)

func (k DeclKind) String() string {
	switch k {
	case DeclVariable:
		return "variable"
	case DeclConstantMacro:
		return "constant-macro"
	case DeclTypedef:
		return "typedef"
	case DeclFunction:
		return "function"
	case DeclField:
		return "field"
	}
	return "invalid"
}

// Span is a region of the source file, inclusive of Start, exclusive of End.
type Span struct {
	Start lexer.Pos
	End   lexer.Pos
}

// Param is one function parameter.
type Param struct {
	Name string
	Type string
}

// Declaration is a shallow model of a named program entity. Sibling
// declarations at the same nesting level have disjoint spans.
type Declaration struct {
	Kind    DeclKind
	Name    string
	Casing  Casing
	Span    Span
	Doc     *CommentBlock // attached leading comment block, nil if none
	Params  []Param       // functions only
	HasBody bool          // functions: definition vs prototype
	Body    Span          // functions with a body
	Const   bool          // variables: const-qualified
	Depth   int           // brace depth at declaration start, 0 = file scope
}

// ControlKind classifies a control block.
type ControlKind int

const (
	CtrlIf ControlKind = iota
	CtrlElseIf
	CtrlElse
	CtrlSwitch
	CtrlLoop
)

func (k ControlKind) String() string {
	switch k {
	case CtrlIf:
		return "if"
	case CtrlElseIf:
		return "else-if"
	case CtrlElse:
		return "else"
	case CtrlSwitch:
		return "switch"
	case CtrlLoop:
		return "loop"
	}
	return "invalid"
}

// OperandClass classifies one side of a comparison expression.
type OperandClass int

const (
	OperandLiteral OperandClass = iota
	OperandConstRef
	OperandVarRef
	OperandOther
)

// Comparison is a relational or equality sub-expression found inside a
// control-block condition.
type Comparison struct {
	Left       lexer.Token
	Operator   lexer.Token
	Right      lexer.Token
	LeftClass  OperandClass
	RightClass OperandClass
	Span       Span
}

// CaseClause summarizes one case/default label inside a switch body.
type CaseClause struct {
	Pos                   lexer.Pos
	IsDefault             bool
	Empty                 bool
	Terminated            bool // ends in break/return/goto/continue
	HasFallthroughComment bool // explanatory comment right before the next case
}

// ControlBlock is a shallow model of an if/else/switch/loop construct.
type ControlBlock struct {
	Kind        ControlKind
	Pos         lexer.Pos
	Braced      bool
	Cond        Span
	Comparisons []Comparison
	HasDefault  bool         // switch only
	Cases       []CaseClause // switch only
}

// CommentBlock is a contiguous comment region with detected Doxygen
// tags. A block not attached to any following declaration is dangling.
type CommentBlock struct {
	Text       string
	Span       Span
	Tags       []string // doxygen tag names present, e.g. "brief", "param"
	ParamNames []string // identifiers following @param tags
	Attached   bool
}

// HasTag reports whether the block carries the given Doxygen tag.
func (c *CommentBlock) HasTag(name string) bool {
	for _, tag := range c.Tags {
		if tag == name {
			return true
		}
	}
	return false
}

// Recovery records a spot where the parser repaired malformed input
// instead of aborting, so analysis can continue on the partial tree.
type Recovery struct {
	Kind    string // "unterminated-block", "unterminated-comment", "unterminated-literal"
	Pos     lexer.Pos
	Message string
}

// ParseResult is the structural tree the rule engine evaluates. It is
// immutable after Parse returns; rules never mutate it.
type ParseResult struct {
	File           *lexer.SourceFile
	Declarations   []Declaration
	ControlBlocks  []ControlBlock
	Comments       []CommentBlock
	Recoveries     []Recovery
	Macros         map[string]bool // names introduced by #define
	DirectiveLines map[int]bool    // lines occupied by preprocessor directives
}
