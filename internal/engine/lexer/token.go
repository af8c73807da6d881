package lexer

// Kind classifies a lexical token.
type Kind int

const (
	KindIdentifier Kind = iota
	KindKeyword
	KindNumber
	KindString
	KindChar
	KindOperator
	KindPunct
	KindComment
	KindWhitespace
	KindNewline
	KindUnknown
	KindEOF
)

var kindNames = map[Kind]string{
	KindIdentifier: "identifier",
	KindKeyword:    "keyword",
	KindNumber:     "number",
	KindString:     "string",
	KindChar:       "char",
	KindOperator:   "operator",
	KindPunct:      "punct",
	KindComment:    "comment",
	KindWhitespace: "whitespace",
	KindNewline:    "newline",
	KindUnknown:    "unknown",
	KindEOF:        "eof",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Pos is a source position. Line and Column are 1-based, Offset is the
// byte offset into the file text.
type Pos struct {
	Line   int
	Column int
	Offset int
}

// Token is one lexical unit. Tokens are immutable once produced and
// belong to exactly one SourceFile.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos

	// Unterminated marks comment/string/char tokens that reached end of
	// line or end of file before their closing delimiter.
	Unterminated bool
}

// IsTrivia reports whether the token carries no syntactic weight for
// the structural parser (rules still inspect trivia directly).
func (t Token) IsTrivia() bool {
	return t.Kind == KindWhitespace || t.Kind == KindNewline || t.Kind == KindComment
}

// SourceFile couples a file path with its raw text and token stream.
// Read-only after lexing.
type SourceFile struct {
	Path   string
	Text   string
	Tokens []Token
}
