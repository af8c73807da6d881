package lexer

import "unicode"

var keywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true,
	"const": true, "continue": true, "default": true, "do": true,
	"double": true, "else": true, "enum": true, "extern": true,
	"float": true, "for": true, "goto": true, "if": true,
	"inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true,
}

// multi-character operators, longest first so greedy matching works.
var multiOps = []string{
	"<<=", ">>=", "...",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "+=", "-=", "*=", "/=", "%=", "&=", "^=", "|=",
}

// lexer walks the input byte-wise, tracking line/column/offset for
// every emitted token.
type lexer struct {
	input  string
	pos    int
	line   int
	column int
	tokens []Token
}

// Tokenize turns raw source text into a token stream. It is total:
// malformed input becomes KindUnknown tokens and unterminated
// comments/literals are emitted with Unterminated set, never an error.
// Whitespace, newlines and comments are retained as positioned trivia.
func Tokenize(text string) []Token {
	l := &lexer{input: text, line: 1, column: 1}

	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		switch {
		case ch == '\n' || (ch == '\r' && l.peek() == '\n'):
			l.readNewline(ch)
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.readWhitespace()
		case ch == '/' && l.peek() == '/':
			l.readLineComment()
		case ch == '/' && l.peek() == '*':
			l.readBlockComment()
		case ch == '"':
			l.readString('"', KindString)
		case ch == '\'':
			l.readString('\'', KindChar)
		case isIdentStart(ch):
			l.readIdentifier()
		case ch >= '0' && ch <= '9':
			l.readNumber()
		case isOperatorByte(ch):
			l.readOperator()
		case isPunctByte(ch):
			l.emit(KindPunct, l.pos, l.pos+1, false)
		default:
			l.emit(KindUnknown, l.pos, l.pos+1, false)
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind: KindEOF,
		Pos:  Pos{Line: l.line, Column: l.column, Offset: l.pos},
	})
	return l.tokens
}

// Lex tokenizes text and wraps it in a SourceFile.
func Lex(path, text string) *SourceFile {
	return &SourceFile{Path: path, Text: text, Tokens: Tokenize(text)}
}

func (l *lexer) peek() byte {
	if l.pos+1 < len(l.input) {
		return l.input[l.pos+1]
	}
	return 0
}

// emit appends a token spanning input[start:end] and advances past it.
// The caller must ensure l.pos == start.
func (l *lexer) emit(kind Kind, start, end int, unterminated bool) {
	tok := Token{
		Kind:         kind,
		Text:         l.input[start:end],
		Pos:          Pos{Line: l.line, Column: l.column, Offset: start},
		Unterminated: unterminated,
	}
	for l.pos < end {
		l.advance()
	}
	l.tokens = append(l.tokens, tok)
}

func (l *lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

func (l *lexer) readNewline(ch byte) {
	start := l.pos
	end := start + 1
	if ch == '\r' {
		end++ // CRLF is one newline token
	}
	l.emit(KindNewline, start, end, false)
}

func (l *lexer) readWhitespace() {
	start := l.pos
	end := start
	for end < len(l.input) {
		c := l.input[end]
		if c == ' ' || c == '\t' {
			end++
			continue
		}
		// lone \r not followed by \n is treated as horizontal trivia
		if c == '\r' && (end+1 >= len(l.input) || l.input[end+1] != '\n') {
			end++
			continue
		}
		break
	}
	l.emit(KindWhitespace, start, end, false)
}

func (l *lexer) readLineComment() {
	start := l.pos
	end := start
	for end < len(l.input) && l.input[end] != '\n' {
		end++
	}
	if end > start && l.input[end-1] == '\r' {
		end--
	}
	l.emit(KindComment, start, end, false)
}

func (l *lexer) readBlockComment() {
	start := l.pos
	end := start + 2
	closed := false
	for end < len(l.input) {
		if l.input[end] == '*' && end+1 < len(l.input) && l.input[end+1] == '/' {
			end += 2
			closed = true
			break
		}
		end++
	}
	l.emit(KindComment, start, end, !closed)
}

func (l *lexer) readString(quote byte, kind Kind) {
	start := l.pos
	end := start + 1
	closed := false
	for end < len(l.input) {
		c := l.input[end]
		if c == '\\' && end+1 < len(l.input) {
			end += 2
			continue
		}
		if c == quote {
			end++
			closed = true
			break
		}
		if c == '\n' {
			break // unterminated, newline stays its own token
		}
		end++
	}
	l.emit(kind, start, end, !closed)
}

func (l *lexer) readIdentifier() {
	start := l.pos
	end := start
	for end < len(l.input) && isIdentPart(l.input[end]) {
		end++
	}
	kind := KindIdentifier
	if keywords[l.input[start:end]] {
		kind = KindKeyword
	}
	l.emit(kind, start, end, false)
}

func (l *lexer) readNumber() {
	start := l.pos
	end := start
	for end < len(l.input) {
		c := l.input[end]
		if c >= '0' && c <= '9' || c == '.' || c == 'x' || c == 'X' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			c == 'u' || c == 'U' || c == 'l' || c == 'L' {
			end++
			continue
		}
		// exponent sign, e.g. 1e-3
		if (c == '+' || c == '-') && end > start &&
			(l.input[end-1] == 'e' || l.input[end-1] == 'E') {
			end++
			continue
		}
		break
	}
	l.emit(KindNumber, start, end, false)
}

func (l *lexer) readOperator() {
	start := l.pos
	for _, op := range multiOps {
		if len(l.input)-start >= len(op) && l.input[start:start+len(op)] == op {
			l.emit(KindOperator, start, start+len(op), false)
			return
		}
	}
	l.emit(KindOperator, start, start+1, false)
}

func isIdentStart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isIdentPart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch))
}

func isOperatorByte(ch byte) bool {
	switch ch {
	case '+', '-', '*', '/', '=', '<', '>', '!', '&', '|', '^', '%', '~', '?':
		return true
	}
	return false
}

func isPunctByte(ch byte) bool {
	switch ch {
	case '{', '}', '(', ')', '[', ']', ';', ',', ':', '.', '#':
		return true
	}
	return false
}
