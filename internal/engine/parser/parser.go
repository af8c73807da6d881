package parser

import (
	"strings"

	"cconform/internal/engine/lexer"
)

// typeKeywords start a declaration when seen at statement position.
var typeKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"struct": true, "enum": true, "union": true, "const": true,
	"static": true, "extern": true, "volatile": true, "register": true,
	"inline": true, "auto": true,
}

var terminatorKeywords = map[string]bool{
	"break": true, "return": true, "goto": true, "continue": true,
}

// Parse builds a best-effort structural tree from a lexed source file.
// It is keyed on brace/paren balance rather than full grammar
// knowledge, never fails, and records every repair it makes as a
// Recovery so the engine can surface it.
func Parse(file *lexer.SourceFile) *ParseResult {
	p := &parser{
		file: file,
		toks: file.Tokens,
		res: &ParseResult{
			File:           file,
			Macros:         make(map[string]bool),
			DirectiveLines: make(map[int]bool),
		},
	}

	p.scanDirectives()
	p.collectComments()
	p.collectRecoverables()
	p.scanStructure()
	p.attachComments()
	return p.res
}

type parser struct {
	file *lexer.SourceFile
	toks []lexer.Token
	res  *ParseResult
}

// --- pass 1: preprocessor directives -------------------------------

// scanDirectives marks the lines occupied by preprocessor directives
// (including backslash continuations) and records #define names. An
// object-like #define with a value body also becomes a constant-macro
// Declaration.
func (p *parser) scanDirectives() {
	for i := 0; i < len(p.toks); i++ {
		tok := p.toks[i]
		if tok.Kind != lexer.KindPunct || tok.Text != "#" {
			continue
		}
		if !p.isFirstOnLine(i) {
			continue
		}
		end := p.markDirectiveLines(i)
		p.recordDefine(i, end)
		i = end
	}
}

// isFirstOnLine reports whether only whitespace precedes token i on
// its source line.
func (p *parser) isFirstOnLine(i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch p.toks[j].Kind {
		case lexer.KindWhitespace:
			continue
		case lexer.KindNewline:
			return true
		default:
			return false
		}
	}
	return true
}

// markDirectiveLines consumes tokens to the end of the directive,
// honoring backslash-newline continuations, and returns the index of
// the last consumed token.
func (p *parser) markDirectiveLines(start int) int {
	last := start
	continued := false
	for i := start; i < len(p.toks); i++ {
		tok := p.toks[i]
		if tok.Kind == lexer.KindNewline {
			if !continued {
				return last
			}
			continued = false
			continue
		}
		if tok.Kind == lexer.KindEOF {
			return last
		}
		p.res.DirectiveLines[tok.Pos.Line] = true
		continued = tok.Kind == lexer.KindUnknown && tok.Text == "\\"
		if tok.Kind != lexer.KindWhitespace && tok.Kind != lexer.KindComment {
			last = i
		}
	}
	return last
}

func (p *parser) recordDefine(start, end int) {
	i := p.nextSigIn(start+1, end)
	if i < 0 || p.toks[i].Text != "define" {
		return
	}
	nameIdx := p.nextSigIn(i+1, end)
	if nameIdx < 0 || p.toks[nameIdx].Kind != lexer.KindIdentifier {
		return
	}
	name := p.toks[nameIdx].Text
	p.res.Macros[name] = true

	// Function-like macros have '(' glued to the name; those are not
	// constant declarations.
	if nameIdx+1 < len(p.toks) {
		next := p.toks[nameIdx+1]
		if next.Kind == lexer.KindPunct && next.Text == "(" &&
			next.Pos.Offset == p.toks[nameIdx].Pos.Offset+len(name) {
			return
		}
	}
	if p.nextSigIn(nameIdx+1, end) < 0 {
		return // bare flag macro, no value
	}

	p.res.Declarations = append(p.res.Declarations, Declaration{
		Kind:   DeclConstantMacro,
		Name:   name,
		Casing: Classify(name),
		Span:   Span{Start: p.toks[start].Pos, End: p.endPos(end)},
	})
}

// nextSigIn returns the index of the first non-trivia token in
// [from, to], or -1.
func (p *parser) nextSigIn(from, to int) int {
	for i := from; i <= to && i < len(p.toks); i++ {
		if !p.toks[i].IsTrivia() && p.toks[i].Kind != lexer.KindEOF {
			return i
		}
	}
	return -1
}

// endPos returns the position just past token i, following line breaks
// inside multi-line tokens such as block comments.
func (p *parser) endPos(i int) lexer.Pos {
	tok := p.toks[i]
	end := lexer.Pos{
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column + len(tok.Text),
		Offset: tok.Pos.Offset + len(tok.Text),
	}
	if last := strings.LastIndexByte(tok.Text, '\n'); last >= 0 {
		end.Line += strings.Count(tok.Text, "\n")
		end.Column = 1 + len(tok.Text) - (last + 1)
	}
	return end
}

// --- pass 2: comment blocks ----------------------------------------

// collectComments groups consecutive comment tokens into CommentBlocks
// and detects the Doxygen tags they carry. Adjacent line comments with
// no blank line between them form a single block.
func (p *parser) collectComments() {
	for i := 0; i < len(p.toks); i++ {
		if p.toks[i].Kind != lexer.KindComment {
			continue
		}
		start := i
		last := i
		for j := i + 1; j < len(p.toks); j++ {
			tok := p.toks[j]
			if tok.Kind == lexer.KindComment {
				// only merge single-newline-separated line comments
				if p.toks[last].Pos.Line+1 < tok.Pos.Line || !strings.HasPrefix(tok.Text, "//") || !strings.HasPrefix(p.toks[last].Text, "//") {
					break
				}
				last = j
				continue
			}
			if tok.IsTrivia() {
				continue
			}
			break
		}

		var text strings.Builder
		for k := start; k <= last; k++ {
			if p.toks[k].Kind != lexer.KindComment {
				continue
			}
			if text.Len() > 0 {
				text.WriteByte('\n')
			}
			text.WriteString(p.toks[k].Text)
		}

		block := CommentBlock{
			Text: text.String(),
			Span: Span{Start: p.toks[start].Pos, End: p.endPos(last)},
		}
		block.Tags, block.ParamNames = scanDoxygenTags(block.Text)
		p.res.Comments = append(p.res.Comments, block)
		i = last
	}
}

// scanDoxygenTags extracts @tag occurrences (both @ and backslash
// forms) and the identifier following each @param.
func scanDoxygenTags(text string) (tags []string, paramNames []string) {
	for i := 0; i < len(text); i++ {
		if text[i] != '@' && text[i] != '\\' {
			continue
		}
		j := i + 1
		for j < len(text) && isLetter(text[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		tag := text[i+1 : j]
		tags = append(tags, tag)
		if tag != "param" {
			i = j - 1
			continue
		}
		// skip optional direction annotation: @param[in] / @param[out]
		k := j
		if k < len(text) && text[k] == '[' {
			for k < len(text) && text[k] != ']' {
				k++
			}
			if k < len(text) {
				k++
			}
		}
		for k < len(text) && (text[k] == ' ' || text[k] == '\t') {
			k++
		}
		nameStart := k
		for k < len(text) && (isLetter(text[k]) || isDigit(text[k]) || text[k] == '_') {
			k++
		}
		if k > nameStart {
			paramNames = append(paramNames, text[nameStart:k])
		}
		i = k - 1
	}
	return tags, paramNames
}

// --- pass 3: lexical recoveries ------------------------------------

func (p *parser) collectRecoverables() {
	for _, tok := range p.toks {
		if !tok.Unterminated {
			continue
		}
		switch tok.Kind {
		case lexer.KindComment:
			p.res.Recoveries = append(p.res.Recoveries, Recovery{
				Kind:    "unterminated-comment",
				Pos:     tok.Pos,
				Message: "block comment is never closed",
			})
		case lexer.KindString, lexer.KindChar:
			p.res.Recoveries = append(p.res.Recoveries, Recovery{
				Kind:    "unterminated-literal",
				Pos:     tok.Pos,
				Message: "literal is missing its closing quote",
			})
		}
	}
}

// --- pass 4: structure ---------------------------------------------

// scanStructure walks the significant tokens once, keyed on
// brace/paren balance, collecting declarations and control blocks.
func (p *parser) scanStructure() {
	depth := 0
	var openBraces []lexer.Pos

	for i := 0; i < len(p.toks); i = p.afterToken(i) {
		i = p.skipInsignificant(i)
		if i >= len(p.toks) || p.toks[i].Kind == lexer.KindEOF {
			break
		}
		tok := p.toks[i]

		switch {
		case tok.Kind == lexer.KindPunct && tok.Text == "{":
			depth++
			openBraces = append(openBraces, tok.Pos)
		case tok.Kind == lexer.KindPunct && tok.Text == "}":
			if depth > 0 {
				depth--
				openBraces = openBraces[:len(openBraces)-1]
			}
		case tok.Kind == lexer.KindKeyword && isControlKeyword(tok.Text):
			i = p.parseControl(i, depth)
			continue
		case tok.Kind == lexer.KindKeyword && tok.Text == "typedef":
			i = p.parseTypedef(i, depth)
			continue
		case p.startsDeclaration(i):
			i = p.parseDeclStatement(i, depth)
			continue
		}
	}

	// Unbalanced braces close at end-of-file with a synthetic marker.
	for _, pos := range openBraces {
		p.res.Recoveries = append(p.res.Recoveries, Recovery{
			Kind:    "unterminated-block",
			Pos:     pos,
			Message: "block is never closed, recovered at end of file",
		})
	}
}

func isControlKeyword(text string) bool {
	switch text {
	case "if", "else", "for", "while", "do", "switch":
		return true
	}
	return false
}

// afterToken is the loop increment: the index just past token i.
func (p *parser) afterToken(i int) int {
	return i + 1
}

// skipInsignificant advances past trivia and preprocessor-directive
// tokens.
func (p *parser) skipInsignificant(i int) int {
	for i < len(p.toks) {
		tok := p.toks[i]
		if tok.IsTrivia() || (tok.Kind != lexer.KindEOF && p.res.DirectiveLines[tok.Pos.Line]) {
			i++
			continue
		}
		break
	}
	return i
}

// nextSig returns the index of the next significant token at or after
// i, or len(toks).
func (p *parser) nextSig(i int) int {
	i = p.skipInsignificant(i)
	if i >= len(p.toks) {
		return len(p.toks)
	}
	return i
}

func (p *parser) sigAfter(i int) int {
	return p.nextSig(i + 1)
}

func (p *parser) tokIs(i int, text string) bool {
	return i < len(p.toks) && p.toks[i].Text == text &&
		(p.toks[i].Kind == lexer.KindPunct || p.toks[i].Kind == lexer.KindOperator || p.toks[i].Kind == lexer.KindKeyword)
}

// skipBalanced advances from an opening delimiter at i to the index of
// its matching closer, tolerating EOF.
func (p *parser) skipBalanced(i int, open, close string) int {
	level := 0
	for ; i < len(p.toks); i++ {
		if p.toks[i].Kind == lexer.KindEOF {
			return i
		}
		if p.res.DirectiveLines[p.toks[i].Pos.Line] {
			continue
		}
		if p.tokIs(i, open) {
			level++
		} else if p.tokIs(i, close) {
			level--
			if level == 0 {
				return i
			}
		}
	}
	return len(p.toks) - 1
}

// startsDeclaration is the shallow heuristic for a declaration
// statement: a type keyword, or an identifier followed by another
// identifier or a pointer star and an identifier.
func (p *parser) startsDeclaration(i int) bool {
	tok := p.toks[i]
	if tok.Kind == lexer.KindKeyword {
		return typeKeywords[tok.Text]
	}
	if tok.Kind != lexer.KindIdentifier {
		return false
	}
	j := p.sigAfter(i)
	if j >= len(p.toks) {
		return false
	}
	if p.toks[j].Kind == lexer.KindIdentifier {
		return true
	}
	if p.tokIs(j, "*") {
		k := p.sigAfter(j)
		for k < len(p.toks) && p.tokIs(k, "*") {
			k = p.sigAfter(k)
		}
		if k < len(p.toks) && p.toks[k].Kind == lexer.KindIdentifier {
			next := p.sigAfter(k)
			return next < len(p.toks) && (p.tokIs(next, ";") || p.tokIs(next, "=") || p.tokIs(next, ",") || p.tokIs(next, "(") || p.tokIs(next, "["))
		}
	}
	return false
}

// parseDeclStatement consumes one declaration statement starting at i
// and returns the index to resume from. It distinguishes function
// definitions/prototypes from variable declarations.
func (p *parser) parseDeclStatement(i, depth int) int {
	start := i
	isConst := false
	var lastIdent int = -1

	for ; i < len(p.toks); i++ {
		if p.res.DirectiveLines[p.toks[i].Pos.Line] || p.toks[i].IsTrivia() {
			continue
		}
		tok := p.toks[i]
		switch {
		case tok.Kind == lexer.KindEOF:
			return i
		case tok.Kind == lexer.KindKeyword && tok.Text == "const":
			isConst = true
		case tok.Kind == lexer.KindKeyword && (tok.Text == "struct" || tok.Text == "enum" || tok.Text == "union"):
			// tag name, then possibly an inline body with fields
			j := p.sigAfter(i)
			if j < len(p.toks) && p.toks[j].Kind == lexer.KindIdentifier {
				j = p.sigAfter(j)
			}
			if j < len(p.toks) && p.tokIs(j, "{") {
				p.parseAggregateBody(j, tok.Text, depth)
				i = p.skipBalanced(j, "{", "}")
			}
		case tok.Kind == lexer.KindIdentifier:
			lastIdent = i
		case p.tokIs(i, "("):
			// function shape: the identifier right before '('
			if lastIdent >= 0 && p.isFunctionShape(lastIdent, i) {
				return p.parseFunction(start, lastIdent, i, depth)
			}
			i = p.skipBalanced(i, "(", ")")
		case p.tokIs(i, "="):
			// skip the initializer; it may contain commas and braces
			i = p.skipInitializer(i)
			if i < len(p.toks) && p.tokIs(i, ";") {
				p.recordVariable(start, lastIdent, i, depth, isConst)
				return i
			}
			if lastIdent >= 0 {
				p.addVarDecl(start, lastIdent, i, depth, isConst)
				lastIdent = -1
			}
		case p.tokIs(i, ","):
			if lastIdent >= 0 {
				p.addVarDecl(start, lastIdent, i, depth, isConst)
				lastIdent = -1
			}
		case p.tokIs(i, "["):
			i = p.skipBalanced(i, "[", "]")
		case p.tokIs(i, ";"):
			p.recordVariable(start, lastIdent, i, depth, isConst)
			return i
		case p.tokIs(i, "{") || p.tokIs(i, "}"):
			// lost the statement shape; hand the brace back to the
			// structure scanner so depth stays balanced
			return i - 1
		}
	}
	return i
}

// skipInitializer consumes tokens after '=' up to (not including) the
// terminating ';' or the ',' that separates declarators.
func (p *parser) skipInitializer(i int) int {
	for i++; i < len(p.toks); i++ {
		if p.toks[i].Kind == lexer.KindEOF {
			return i
		}
		if p.res.DirectiveLines[p.toks[i].Pos.Line] || p.toks[i].IsTrivia() {
			continue
		}
		switch {
		case p.tokIs(i, "{"):
			i = p.skipBalanced(i, "{", "}")
		case p.tokIs(i, "("):
			i = p.skipBalanced(i, "(", ")")
		case p.tokIs(i, ";"), p.tokIs(i, ","):
			return i
		}
	}
	return i
}

func (p *parser) recordVariable(start, lastIdent, end, depth int, isConst bool) {
	if lastIdent < 0 {
		return
	}
	p.addVarDecl(start, lastIdent, end, depth, isConst)
}

func (p *parser) addVarDecl(start, identIdx, end, depth int, isConst bool) {
	name := p.toks[identIdx].Text
	p.res.Declarations = append(p.res.Declarations, Declaration{
		Kind:   DeclVariable,
		Name:   name,
		Casing: Classify(name),
		Span:   Span{Start: p.toks[start].Pos, End: p.endPos(end)},
		Const:  isConst,
		Depth:  depth,
	})
}

// isFunctionShape checks that identifier identIdx directly precedes
// the '(' at parenIdx and that the matching ')' is followed by '{' or
// ';' (allowing const/attribute words in between).
func (p *parser) isFunctionShape(identIdx, parenIdx int) bool {
	if p.sigAfter(identIdx) != parenIdx {
		return false
	}
	closeIdx := p.skipBalanced(parenIdx, "(", ")")
	j := p.sigAfter(closeIdx)
	for j < len(p.toks) && p.toks[j].Kind == lexer.KindKeyword {
		j = p.sigAfter(j)
	}
	return j < len(p.toks) && (p.tokIs(j, "{") || p.tokIs(j, ";"))
}

func (p *parser) parseFunction(start, nameIdx, parenIdx, depth int) int {
	closeIdx := p.skipBalanced(parenIdx, "(", ")")
	name := p.toks[nameIdx].Text

	decl := Declaration{
		Kind:   DeclFunction,
		Name:   name,
		Casing: Classify(name),
		Params: p.parseParams(parenIdx, closeIdx),
		Depth:  depth,
	}

	j := p.sigAfter(closeIdx)
	for j < len(p.toks) && p.toks[j].Kind == lexer.KindKeyword {
		j = p.sigAfter(j)
	}
	end := closeIdx
	if j < len(p.toks) && p.tokIs(j, "{") {
		bodyClose := p.skipBalanced(j, "{", "}")
		decl.HasBody = true
		decl.Body = Span{Start: p.toks[j].Pos, End: p.endPos(bodyClose)}
		decl.Span = Span{Start: p.toks[start].Pos, End: p.endPos(bodyClose)}
		p.res.Declarations = append(p.res.Declarations, decl)
		// hand the body back to the structure scanner so nested
		// control blocks and locals are still collected
		return j - 1
	}
	if j < len(p.toks) && p.tokIs(j, ";") {
		end = j
	}
	decl.Span = Span{Start: p.toks[start].Pos, End: p.endPos(end)}
	p.res.Declarations = append(p.res.Declarations, decl)
	return end
}

// parseParams splits the parenthesized parameter list into name/type
// pairs. The last identifier of each comma-separated group is the
// parameter name; everything before it is its type.
func (p *parser) parseParams(openIdx, closeIdx int) []Param {
	var params []Param
	var group []lexer.Token
	level := 0

	flush := func() {
		if len(group) == 0 {
			return
		}
		param := paramFromTokens(group)
		if param != nil {
			params = append(params, *param)
		}
		group = group[:0]
	}

	for i := openIdx; i <= closeIdx && i < len(p.toks); i++ {
		tok := p.toks[i]
		if tok.IsTrivia() || tok.Kind == lexer.KindEOF {
			continue
		}
		switch {
		case p.tokIs(i, "("):
			level++
			if level > 1 {
				group = append(group, tok)
			}
		case p.tokIs(i, ")"):
			level--
			if level == 0 {
				flush()
			} else {
				group = append(group, tok)
			}
		case p.tokIs(i, ",") && level == 1:
			flush()
		default:
			group = append(group, tok)
		}
	}
	return params
}

func paramFromTokens(group []lexer.Token) *Param {
	if len(group) == 1 && group[0].Text == "void" {
		return nil
	}
	nameIdx := -1
	for i := len(group) - 1; i >= 0; i-- {
		if group[i].Kind == lexer.KindIdentifier {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil // unnamed parameter, e.g. a bare type in a prototype
	}
	var typeParts []string
	for i := 0; i < nameIdx; i++ {
		typeParts = append(typeParts, group[i].Text)
	}
	return &Param{Name: group[nameIdx].Text, Type: strings.Join(typeParts, " ")}
}

// parseTypedef consumes a typedef statement. The declared name is the
// last identifier before the terminating ';', or the identifier inside
// (* ... ) for function-pointer typedefs.
func (p *parser) parseTypedef(i, depth int) int {
	start := i
	lastIdent := -1
	fnPtrIdent := -1
	aggKind := "struct"

	for ; i < len(p.toks); i++ {
		if p.res.DirectiveLines[p.toks[i].Pos.Line] || p.toks[i].IsTrivia() {
			continue
		}
		tok := p.toks[i]
		switch {
		case tok.Kind == lexer.KindEOF:
			return i
		case tok.Kind == lexer.KindKeyword && (tok.Text == "enum" || tok.Text == "union" || tok.Text == "struct"):
			aggKind = tok.Text
		case p.tokIs(i, "{"):
			p.parseAggregateBody(i, aggKind, depth)
			i = p.skipBalanced(i, "{", "}")
		case p.tokIs(i, "("):
			j := p.sigAfter(i)
			if j < len(p.toks) && p.tokIs(j, "*") {
				k := p.sigAfter(j)
				if k < len(p.toks) && p.toks[k].Kind == lexer.KindIdentifier {
					fnPtrIdent = k
				}
			}
			i = p.skipBalanced(i, "(", ")")
		case tok.Kind == lexer.KindIdentifier:
			lastIdent = i
		case p.tokIs(i, ";"):
			nameIdx := lastIdent
			if fnPtrIdent >= 0 {
				nameIdx = fnPtrIdent
			}
			if nameIdx >= 0 {
				name := p.toks[nameIdx].Text
				p.res.Declarations = append(p.res.Declarations, Declaration{
					Kind:   DeclTypedef,
					Name:   name,
					Casing: Classify(name),
					Span:   Span{Start: p.toks[start].Pos, End: p.endPos(i)},
					Depth:  depth,
				})
			}
			return i
		}
	}
	return i
}

// parseAggregateBody records struct/union members or enum constants as
// field declarations. Enum constants also count as defined constants
// for comparison-operand classification.
func (p *parser) parseAggregateBody(openIdx int, kind string, depth int) {
	closeIdx := p.skipBalanced(openIdx, "{", "}")

	if kind == "enum" {
		expectName := true
		for i := openIdx + 1; i < closeIdx; i++ {
			tok := p.toks[i]
			if tok.IsTrivia() || p.res.DirectiveLines[tok.Pos.Line] {
				continue
			}
			switch {
			case tok.Kind == lexer.KindIdentifier && expectName:
				p.res.Macros[tok.Text] = true
				p.res.Declarations = append(p.res.Declarations, Declaration{
					Kind:   DeclField,
					Name:   tok.Text,
					Casing: Classify(tok.Text),
					Span:   Span{Start: tok.Pos, End: p.endPos(i)},
					Depth:  depth + 1,
				})
				expectName = false
			case p.tokIs(i, ","):
				expectName = true
			case p.tokIs(i, "{"):
				i = p.skipBalanced(i, "{", "}")
			}
		}
		return
	}

	// struct/union: the last identifier before each ';' (or before a
	// '[' or ':' bitfield marker) is the member name
	lastIdent := -1
	memberStart := -1
	for i := openIdx + 1; i < closeIdx; i++ {
		tok := p.toks[i]
		if tok.IsTrivia() || p.res.DirectiveLines[tok.Pos.Line] {
			continue
		}
		if memberStart < 0 {
			memberStart = i
		}
		switch {
		case tok.Kind == lexer.KindIdentifier:
			lastIdent = i
		case p.tokIs(i, "["):
			i = p.skipBalanced(i, "[", "]")
		case p.tokIs(i, "{"):
			i = p.skipBalanced(i, "{", "}")
		case p.tokIs(i, ":"):
			// bitfield width follows; name already seen
			for i < closeIdx && !p.tokIs(i, ";") {
				i++
			}
			i--
		case p.tokIs(i, ";"):
			if lastIdent >= 0 {
				name := p.toks[lastIdent].Text
				p.res.Declarations = append(p.res.Declarations, Declaration{
					Kind:   DeclField,
					Name:   name,
					Casing: Classify(name),
					Span:   Span{Start: p.toks[memberStart].Pos, End: p.endPos(i)},
					Depth:  depth + 1,
				})
			}
			lastIdent = -1
			memberStart = -1
		}
	}
}

// --- control blocks -------------------------------------------------

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

// parseControl records one control block starting at the keyword token
// and returns the index to resume scanning from (the condition is
// consumed; bodies are left to the main scanner).
func (p *parser) parseControl(i, depth int) int {
	tok := p.toks[i]

	switch tok.Text {
	case "else":
		j := p.sigAfter(i)
		if j < len(p.toks) && p.toks[j].Kind == lexer.KindKeyword && p.toks[j].Text == "if" {
			return p.parseConditional(j, CtrlElseIf)
		}
		p.res.ControlBlocks = append(p.res.ControlBlocks, ControlBlock{
			Kind:   CtrlElse,
			Pos:    tok.Pos,
			Braced: j < len(p.toks) && p.tokIs(j, "{"),
		})
		return i
	case "if":
		return p.parseConditional(i, CtrlIf)
	case "switch":
		return p.parseSwitch(i, depth)
	case "for", "while":
		// a while directly following a do-block's closing brace is the
		// do-while tail, not a second loop
		if tok.Text == "while" {
			closeIdx := p.skipBalanced(p.sigAfter(i), "(", ")")
			after := p.sigAfter(closeIdx)
			if after < len(p.toks) && p.tokIs(after, ";") {
				return closeIdx
			}
		}
		return p.parseConditional(i, CtrlLoop)
	case "do":
		j := p.sigAfter(i)
		p.res.ControlBlocks = append(p.res.ControlBlocks, ControlBlock{
			Kind:   CtrlLoop,
			Pos:    tok.Pos,
			Braced: j < len(p.toks) && p.tokIs(j, "{"),
		})
		return i
	}
	return i
}

// parseConditional handles if/else-if/for/while: condition parens,
// comparison extraction and brace presence.
func (p *parser) parseConditional(kwIdx int, kind ControlKind) int {
	block := ControlBlock{Kind: kind, Pos: p.toks[kwIdx].Pos}

	openIdx := p.sigAfter(kwIdx)
	if openIdx >= len(p.toks) || !p.tokIs(openIdx, "(") {
		// malformed; record what we know and move on
		p.res.ControlBlocks = append(p.res.ControlBlocks, block)
		return kwIdx
	}
	closeIdx := p.skipBalanced(openIdx, "(", ")")
	block.Cond = Span{Start: p.toks[openIdx].Pos, End: p.endPos(closeIdx)}
	block.Comparisons = p.extractComparisons(openIdx+1, closeIdx)

	after := p.sigAfter(closeIdx)
	block.Braced = after < len(p.toks) && p.tokIs(after, "{")
	p.res.ControlBlocks = append(p.res.ControlBlocks, block)
	return closeIdx
}

// extractComparisons finds relational/equality operators with
// single-token operands on both sides within [from, to).
func (p *parser) extractComparisons(from, to int) []Comparison {
	var out []Comparison
	for i := from; i < to && i < len(p.toks); i++ {
		tok := p.toks[i]
		if tok.Kind != lexer.KindOperator || !comparisonOps[tok.Text] {
			continue
		}
		leftIdx := p.prevSig(i, from)
		rightIdx := p.sigAfter(i)
		if leftIdx < 0 || rightIdx >= to {
			continue
		}
		left, right := p.toks[leftIdx], p.toks[rightIdx]
		if !isOperandToken(left) || !isOperandToken(right) {
			continue
		}
		// reject multi-token operands such as a.b or arr[i] or f(x)
		if !p.operandIsIsolated(leftIdx, from, to, true) || !p.operandIsIsolated(rightIdx, from, to, false) {
			continue
		}
		out = append(out, Comparison{
			Left:       left,
			Operator:   tok,
			Right:      right,
			LeftClass:  p.classifyOperand(left),
			RightClass: p.classifyOperand(right),
			Span:       Span{Start: left.Pos, End: p.endPos(rightIdx)},
		})
	}
	return out
}

func (p *parser) prevSig(i, floor int) int {
	for j := i - 1; j >= floor; j-- {
		if !p.toks[j].IsTrivia() {
			return j
		}
	}
	return -1
}

func isOperandToken(tok lexer.Token) bool {
	switch tok.Kind {
	case lexer.KindIdentifier, lexer.KindNumber, lexer.KindChar, lexer.KindString:
		return true
	}
	return false
}

// operandIsIsolated rejects operands that are part of a larger postfix
// expression (member access, indexing, calls, unary minus on the other
// side of the operator is fine).
func (p *parser) operandIsIsolated(idx, from, to int, isLeft bool) bool {
	if isLeft {
		prev := p.prevSig(idx, from)
		if prev >= 0 && (p.tokIs(prev, ".") || p.tokIs(prev, "->") || p.tokIs(prev, "]") || p.tokIs(prev, ")")) {
			return false
		}
	} else {
		next := p.sigAfter(idx)
		if next < to && (p.tokIs(next, ".") || p.tokIs(next, "->") || p.tokIs(next, "[") || p.tokIs(next, "(")) {
			return false
		}
	}
	return true
}

func (p *parser) classifyOperand(tok lexer.Token) OperandClass {
	switch tok.Kind {
	case lexer.KindNumber, lexer.KindChar, lexer.KindString:
		return OperandLiteral
	case lexer.KindIdentifier:
		if p.res.Macros[tok.Text] || Classify(tok.Text) == CasingUpperSnake {
			return OperandConstRef
		}
		return OperandVarRef
	}
	return OperandOther
}

// parseSwitch records the switch block plus a summary of each of its
// case/default clauses.
func (p *parser) parseSwitch(kwIdx, depth int) int {
	block := ControlBlock{Kind: CtrlSwitch, Pos: p.toks[kwIdx].Pos}

	openIdx := p.sigAfter(kwIdx)
	if openIdx >= len(p.toks) || !p.tokIs(openIdx, "(") {
		p.res.ControlBlocks = append(p.res.ControlBlocks, block)
		return kwIdx
	}
	closeIdx := p.skipBalanced(openIdx, "(", ")")
	block.Cond = Span{Start: p.toks[openIdx].Pos, End: p.endPos(closeIdx)}
	block.Comparisons = p.extractComparisons(openIdx+1, closeIdx)

	braceIdx := p.sigAfter(closeIdx)
	if braceIdx >= len(p.toks) || !p.tokIs(braceIdx, "{") {
		p.res.ControlBlocks = append(p.res.ControlBlocks, block)
		return closeIdx
	}
	block.Braced = true
	bodyClose := p.skipBalanced(braceIdx, "{", "}")
	block.Cases = p.parseCases(braceIdx, bodyClose)
	for _, c := range block.Cases {
		if c.IsDefault {
			block.HasDefault = true
		}
	}
	p.res.ControlBlocks = append(p.res.ControlBlocks, block)
	return closeIdx
}

// parseCases scans the switch body for case/default labels at the
// body's own nesting level and summarizes each clause.
func (p *parser) parseCases(openIdx, closeIdx int) []CaseClause {
	type labelAt struct {
		idx       int
		isDefault bool
	}
	var labels []labelAt

	level := 0
	for i := openIdx; i < closeIdx; i++ {
		tok := p.toks[i]
		if tok.IsTrivia() || p.res.DirectiveLines[tok.Pos.Line] {
			continue
		}
		switch {
		case p.tokIs(i, "{"):
			level++
		case p.tokIs(i, "}"):
			level--
		case level == 1 && tok.Kind == lexer.KindKeyword && (tok.Text == "case" || tok.Text == "default"):
			labels = append(labels, labelAt{idx: i, isDefault: tok.Text == "default"})
		}
	}

	clauses := make([]CaseClause, 0, len(labels))
	for n, lab := range labels {
		clauseEnd := closeIdx
		if n+1 < len(labels) {
			clauseEnd = labels[n+1].idx
		}
		clause := CaseClause{Pos: p.toks[lab.idx].Pos, IsDefault: lab.isDefault}

		// body starts after the label's ':'
		bodyStart := lab.idx
		for bodyStart < clauseEnd && !p.tokIs(bodyStart, ":") {
			bodyStart++
		}
		bodyStart++

		stmtKinds := p.clauseStatementStarts(bodyStart, clauseEnd)
		clause.Empty = len(stmtKinds) == 0
		if !clause.Empty {
			last := stmtKinds[len(stmtKinds)-1]
			clause.Terminated = terminatorKeywords[last]
		}
		if n+1 < len(labels) {
			clause.HasFallthroughComment = p.hasFallthroughComment(bodyStart, labels[n+1].idx)
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

// clauseStatementStarts returns the first token text of each
// ';'-terminated statement in the clause, at the clause's top nesting
// level.
func (p *parser) clauseStatementStarts(from, to int) []string {
	var starts []string
	current := ""
	for i := from; i < to && i < len(p.toks); i++ {
		tok := p.toks[i]
		if tok.IsTrivia() || tok.Kind == lexer.KindEOF || p.res.DirectiveLines[tok.Pos.Line] {
			continue
		}
		switch {
		case p.tokIs(i, "{"):
			// brace-wrapped case body: look at its inner statements
			closeBrace := p.skipBalanced(i, "{", "}")
			if current != "" {
				starts = append(starts, current)
				current = ""
			}
			starts = append(starts, p.clauseStatementStarts(i+1, closeBrace)...)
			i = closeBrace
		case p.tokIs(i, "("):
			if current == "" {
				current = "("
			}
			i = p.skipBalanced(i, "(", ")")
		case p.tokIs(i, ";"):
			if current != "" {
				starts = append(starts, current)
				current = ""
			}
		default:
			if current == "" {
				current = tok.Text
			}
		}
	}
	if current != "" {
		starts = append(starts, current)
	}
	return starts
}

// hasFallthroughComment looks for an explanatory comment between the
// clause body and the next label.
func (p *parser) hasFallthroughComment(from, to int) bool {
	lastSig := from
	for i := from; i < to && i < len(p.toks); i++ {
		if !p.toks[i].IsTrivia() && p.toks[i].Kind != lexer.KindEOF {
			lastSig = i
		}
	}
	for i := lastSig; i < to && i < len(p.toks); i++ {
		tok := p.toks[i]
		if tok.Kind != lexer.KindComment {
			continue
		}
		text := strings.ToLower(tok.Text)
		if strings.Contains(text, "fallthrough") || strings.Contains(text, "fall through") ||
			strings.Contains(text, "fall-through") || strings.Contains(text, "no break") {
			return true
		}
	}
	return false
}

// --- pass 5: comment attachment ------------------------------------

// attachComments links each comment block to the declaration that
// starts on the line right after it (or on its own line), provided no
// other significant token sits between them. Blocks that attach to
// nothing stay dangling.
func (p *parser) attachComments() {
	for ci := range p.res.Comments {
		block := &p.res.Comments[ci]
		var best *Declaration
		for di := range p.res.Declarations {
			decl := &p.res.Declarations[di]
			if decl.Span.Start.Offset < block.Span.End.Offset {
				continue
			}
			if decl.Span.Start.Line > block.Span.End.Line+1 {
				continue
			}
			if best == nil || decl.Span.Start.Offset < best.Span.Start.Offset {
				best = decl
			}
		}
		if best == nil {
			continue
		}
		if p.hasSignificantBetween(block.Span.End.Offset, best.Span.Start.Offset) {
			continue
		}
		block.Attached = true
		if best.Doc == nil {
			best.Doc = block
		}
	}
}

func (p *parser) hasSignificantBetween(fromOffset, toOffset int) bool {
	for _, tok := range p.toks {
		if tok.Pos.Offset < fromOffset || tok.Pos.Offset >= toOffset {
			continue
		}
		if tok.IsTrivia() || tok.Kind == lexer.KindEOF {
			continue
		}
		return true
	}
	return false
}
