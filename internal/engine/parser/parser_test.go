package parser

import (
	"testing"

	"cconform/internal/engine/lexer"
)

func parseSource(src string) *ParseResult {
	return Parse(lexer.Lex("test.c", src))
}

func findDecl(res *ParseResult, kind DeclKind, name string) *Declaration {
	for i := range res.Declarations {
		d := &res.Declarations[i]
		if d.Kind == kind && d.Name == name {
			return d
		}
	}
	return nil
}

func TestParseFunctionDefinition(t *testing.T) {
	src := `
static int ReadSensorValue(int channelId, const char *label)
{
    return 0;
}
`
	res := parseSource(src)

	fn := findDecl(res, DeclFunction, "ReadSensorValue")
	if fn == nil {
		t.Fatalf("function not found, declarations: %+v", res.Declarations)
	}
	if !fn.HasBody {
		t.Error("definition not marked as having a body")
	}
	if fn.Casing != CasingPascal {
		t.Errorf("casing = %v, want PascalCase", fn.Casing)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("params = %+v, want 2", fn.Params)
	}
	if fn.Params[0].Name != "channelId" || fn.Params[1].Name != "label" {
		t.Errorf("param names = %q, %q", fn.Params[0].Name, fn.Params[1].Name)
	}
	if fn.Params[1].Type != "const char *" {
		t.Errorf("param type = %q, want %q", fn.Params[1].Type, "const char *")
	}
}

func TestParsePrototypeAndVoidParams(t *testing.T) {
	res := parseSource("void InitBoard(void);\n")

	fn := findDecl(res, DeclFunction, "InitBoard")
	if fn == nil {
		t.Fatal("prototype not found")
	}
	if fn.HasBody {
		t.Error("prototype marked as definition")
	}
	if len(fn.Params) != 0 {
		t.Errorf("void parameter list produced params: %+v", fn.Params)
	}
}

func TestParseVariableDeclarations(t *testing.T) {
	src := `
int counterValue = 0;
static const unsigned long timeoutMs = 100, retryCount = 3;
char *pBuffer;
`
	res := parseSource(src)

	for _, name := range []string{"counterValue", "timeoutMs", "retryCount", "pBuffer"} {
		if findDecl(res, DeclVariable, name) == nil {
			t.Errorf("variable %s not found, declarations: %+v", name, res.Declarations)
		}
	}
	if d := findDecl(res, DeclVariable, "timeoutMs"); d != nil && !d.Const {
		t.Error("const variable not marked const")
	}
	if d := findDecl(res, DeclVariable, "counterValue"); d != nil && d.Depth != 0 {
		t.Errorf("file-scope variable depth = %d, want 0", d.Depth)
	}
}

func TestParseLocalDeclarationDepth(t *testing.T) {
	src := `
void DoWork(void)
{
    int localValue = 1;
}
`
	res := parseSource(src)
	d := findDecl(res, DeclVariable, "localValue")
	if d == nil {
		t.Fatal("local variable not found")
	}
	if d.Depth != 1 {
		t.Errorf("local depth = %d, want 1", d.Depth)
	}
}

func TestParseDefines(t *testing.T) {
	src := `
#define MAX_VALUE 100
#define FLAG_ONLY
#define SQUARE(x) ((x) * (x))
#define LONG_MACRO 1 + \
    2
int x;
`
	res := parseSource(src)

	if !res.Macros["MAX_VALUE"] || !res.Macros["FLAG_ONLY"] || !res.Macros["SQUARE"] {
		t.Errorf("macros = %v", res.Macros)
	}
	if findDecl(res, DeclConstantMacro, "MAX_VALUE") == nil {
		t.Error("object-like macro with value not recorded as constant")
	}
	if findDecl(res, DeclConstantMacro, "FLAG_ONLY") != nil {
		t.Error("bare flag macro recorded as constant")
	}
	if findDecl(res, DeclConstantMacro, "SQUARE") != nil {
		t.Error("function-like macro recorded as constant")
	}
	// continuation line is part of the directive
	if !res.DirectiveLines[6] {
		t.Errorf("continuation line not marked as directive: %v", res.DirectiveLines)
	}
	if res.DirectiveLines[7] {
		t.Error("code line after continuation wrongly marked as directive")
	}
	if findDecl(res, DeclVariable, "x") == nil {
		t.Error("declaration after directives lost")
	}
}

func TestParseTypedefs(t *testing.T) {
	src := `
typedef unsigned char byte_t;
typedef struct {
    int fieldOne;
    char nameBuf[16];
} record_t;
typedef void (*callback_t)(int eventId);
typedef enum { STATE_IDLE, STATE_RUNNING } state_t;
`
	res := parseSource(src)

	for _, name := range []string{"byte_t", "record_t", "callback_t", "state_t"} {
		if findDecl(res, DeclTypedef, name) == nil {
			t.Errorf("typedef %s not found", name)
		}
	}
	if findDecl(res, DeclField, "fieldOne") == nil || findDecl(res, DeclField, "nameBuf") == nil {
		t.Error("struct fields not recorded")
	}
	if !res.Macros["STATE_IDLE"] || !res.Macros["STATE_RUNNING"] {
		t.Error("enum constants not registered as defined constants")
	}
}

func TestParseControlBlocks(t *testing.T) {
	src := `
void Run(void)
{
    if (a == 1) {
        b = 2;
    } else if (a == 2)
        b = 3;
    else {
        b = 4;
    }
    for (i = 0; i < 10; i++) {
    }
    while (running)
        step();
}
`
	res := parseSource(src)

	var kinds []ControlKind
	var braced []bool
	for _, cb := range res.ControlBlocks {
		kinds = append(kinds, cb.Kind)
		braced = append(braced, cb.Braced)
	}
	wantKinds := []ControlKind{CtrlIf, CtrlElseIf, CtrlElse, CtrlLoop, CtrlLoop}
	wantBraced := []bool{true, false, true, true, false}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("control blocks = %v, want %v", kinds, wantKinds)
	}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] {
			t.Errorf("block %d kind = %v, want %v", i, kinds[i], wantKinds[i])
		}
		if braced[i] != wantBraced[i] {
			t.Errorf("block %d braced = %v, want %v", i, braced[i], wantBraced[i])
		}
	}
}

func TestParseDoWhile(t *testing.T) {
	src := `
void Spin(void)
{
    do {
        tick();
    } while (busy != 0);
}
`
	res := parseSource(src)

	loops := 0
	for _, cb := range res.ControlBlocks {
		if cb.Kind == CtrlLoop {
			loops++
		}
	}
	if loops != 1 {
		t.Errorf("do-while produced %d loop blocks, want 1", loops)
	}
}

func TestParseComparisonClassification(t *testing.T) {
	src := `
#define MAX_VALUE 100
void Check(void)
{
    if (inputValue <= MAX_VALUE) {
    }
    if (42 == mode) {
    }
    if (OTHER_LIMIT > reading) {
    }
}
`
	res := parseSource(src)

	var comps []Comparison
	for _, cb := range res.ControlBlocks {
		comps = append(comps, cb.Comparisons...)
	}
	if len(comps) != 3 {
		t.Fatalf("comparisons = %d, want 3", len(comps))
	}

	c := comps[0]
	if c.LeftClass != OperandVarRef || c.RightClass != OperandConstRef {
		t.Errorf("first comparison classes = %v/%v", c.LeftClass, c.RightClass)
	}
	if c.Operator.Text != "<=" {
		t.Errorf("operator = %q", c.Operator.Text)
	}

	if comps[1].LeftClass != OperandLiteral || comps[1].RightClass != OperandVarRef {
		t.Errorf("second comparison classes = %v/%v", comps[1].LeftClass, comps[1].RightClass)
	}
	// UPPER_SNAKE identifier counts as a defined-constant reference
	// even without a visible #define.
	if comps[2].LeftClass != OperandConstRef {
		t.Errorf("third comparison left class = %v", comps[2].LeftClass)
	}
}

func TestParseSwitchCases(t *testing.T) {
	src := `
void Dispatch(int code)
{
    switch (code) {
    case 1:
        doThing();
        break;
    case 2:
        prepare();
        /* fallthrough */
    case 3:
    case 4:
        finish();
        return;
    default:
        break;
    }
}
`
	res := parseSource(src)

	var sw *ControlBlock
	for i := range res.ControlBlocks {
		if res.ControlBlocks[i].Kind == CtrlSwitch {
			sw = &res.ControlBlocks[i]
		}
	}
	if sw == nil {
		t.Fatal("switch block not found")
	}
	if !sw.HasDefault {
		t.Error("default case not detected")
	}
	if len(sw.Cases) != 5 {
		t.Fatalf("cases = %+v, want 5", sw.Cases)
	}

	if !sw.Cases[0].Terminated {
		t.Error("case 1 should be terminated by break")
	}
	if sw.Cases[1].Terminated {
		t.Error("case 2 must not be terminated")
	}
	if !sw.Cases[1].HasFallthroughComment {
		t.Error("case 2 fallthrough comment not detected")
	}
	if !sw.Cases[2].Empty {
		t.Error("case 3 should be empty")
	}
	if !sw.Cases[3].Terminated {
		t.Error("case 4 should be terminated by return")
	}
	if !sw.Cases[4].IsDefault {
		t.Error("last case should be default")
	}
}

func TestParseCommentAttachment(t *testing.T) {
	src := `
/**
 * @brief Reads one sample.
 * @param channelId ADC channel to sample.
 */
int ReadSample(int channelId)
{
    return 0;
}

// dangling note, two lines above anything

int unrelatedValue;
`
	res := parseSource(src)

	fn := findDecl(res, DeclFunction, "ReadSample")
	if fn == nil {
		t.Fatal("function not found")
	}
	if fn.Doc == nil {
		t.Fatal("doc comment not attached")
	}
	if !fn.Doc.HasTag("brief") || !fn.Doc.HasTag("param") {
		t.Errorf("tags = %v", fn.Doc.Tags)
	}
	if len(fn.Doc.ParamNames) != 1 || fn.Doc.ParamNames[0] != "channelId" {
		t.Errorf("param names = %v", fn.Doc.ParamNames)
	}

	dangling := 0
	for _, c := range res.Comments {
		if !c.Attached {
			dangling++
		}
	}
	if dangling != 1 {
		t.Errorf("dangling comments = %d, want 1", dangling)
	}
}

func TestParseMultiLineCommentSpan(t *testing.T) {
	src := `/**
 * @brief Reads the sensor.
 */
int ReadSensor(void)
{
    return 0;
}
`
	res := parseSource(src)

	if len(res.Comments) != 1 {
		t.Fatalf("comment blocks = %d, want 1", len(res.Comments))
	}
	block := res.Comments[0]
	if block.Span.End.Line != 3 {
		t.Errorf("span end line = %d, want 3", block.Span.End.Line)
	}
	if block.Span.End.Column != 4 {
		t.Errorf("span end column = %d, want 4", block.Span.End.Column)
	}

	fn := findDecl(res, DeclFunction, "ReadSensor")
	if fn == nil {
		t.Fatal("function not found")
	}
	if fn.Doc == nil {
		t.Fatal("doc comment spanning several lines did not attach")
	}
}

func TestParseLineCommentBlockMerging(t *testing.T) {
	src := `
// first line
// second line
int x;

// separate
`
	res := parseSource(src)

	if len(res.Comments) != 2 {
		t.Fatalf("comment blocks = %d, want 2: %+v", len(res.Comments), res.Comments)
	}
	if res.Comments[0].Text != "// first line\n// second line" {
		t.Errorf("merged text = %q", res.Comments[0].Text)
	}
}

func TestParseUnbalancedBraceRecovery(t *testing.T) {
	src := `
void Broken(void)
{
    if (x == 1) {
        step();
`
	res := parseSource(src)

	if len(res.Recoveries) == 0 {
		t.Fatal("no recoveries recorded for unbalanced braces")
	}
	found := false
	for _, r := range res.Recoveries {
		if r.Kind == "unterminated-block" {
			found = true
		}
	}
	if !found {
		t.Errorf("recoveries = %+v, want unterminated-block", res.Recoveries)
	}
	// the partial tree still contains what parsed before the breakage
	if findDecl(res, DeclFunction, "Broken") == nil {
		t.Error("function lost during recovery")
	}
}

func TestParseUnterminatedCommentRecovery(t *testing.T) {
	src := "int x;\n/* never closed"
	res := parseSource(src)

	if findDecl(res, DeclVariable, "x") == nil {
		t.Error("declaration before unterminated comment lost")
	}
	found := false
	for _, r := range res.Recoveries {
		if r.Kind == "unterminated-comment" {
			found = true
		}
	}
	if !found {
		t.Errorf("recoveries = %+v, want unterminated-comment", res.Recoveries)
	}
}

func TestParseIdempotent(t *testing.T) {
	src := `
#define LIMIT 8
/** @brief Spins. */
void Spin(int count)
{
    for (i = 0; i < LIMIT; i++) {
        step(count);
    }
}
`
	a := parseSource(src)
	b := parseSource(src)

	if len(a.Declarations) != len(b.Declarations) ||
		len(a.ControlBlocks) != len(b.ControlBlocks) ||
		len(a.Comments) != len(b.Comments) {
		t.Fatal("parse results differ between runs")
	}
	for i := range a.Declarations {
		if a.Declarations[i].Name != b.Declarations[i].Name ||
			a.Declarations[i].Span != b.Declarations[i].Span {
			t.Errorf("declaration %d differs", i)
		}
	}
}
