package lexer

// Kind represents the type of token identified by the scanner.
type Kind uint8

const (
	KindEOF Kind = iota
	KindIdent
	KindIntLit
	KindFloatLit
	// Keywords
	KindInt
	KindChar
	KindReturn
	KindIf
	KindElse
	KindWhile
	// Operators
	KindPlus
	KindMinus
	KindStar
	KindSlash
	KindAssign
	KindEq
	KindNe
	KindLt
	KindGt
	KindLe
	KindGe
	// Punctuation
	KindSemicolon
	KindComma
	KindLParen
	KindRParen
	KindLBrace
	KindRBrace
)

var kindNames = [...]string{
	KindEOF:       "end of input",
	KindIdent:     "identifier",
	KindIntLit:    "integer literal",
	KindFloatLit:  "float literal",
	KindInt:       "'int'",
	KindChar:      "'char'",
	KindReturn:    "'return'",
	KindIf:        "'if'",
	KindElse:      "'else'",
	KindWhile:     "'while'",
	KindPlus:      "'+'",
	KindMinus:     "'-'",
	KindStar:      "'*'",
	KindSlash:     "'/'",
	KindAssign:    "'='",
	KindEq:        "'=='",
	KindNe:        "'!='",
	KindLt:        "'<'",
	KindGt:        "'>'",
	KindLe:        "'<='",
	KindGe:        "'>='",
	KindSemicolon: "';'",
	KindComma:     "','",
	KindLParen:    "'('",
	KindRParen:    "')'",
	KindLBrace:    "'{'",
	KindRBrace:    "'}'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown token"
}

// Token represents a lexical unit pointing back to the source.
// 12-byte struct to minimize stack overhead and avoid allocations.
type Token struct {
	Kind   Kind
	Offset uint32
	Length uint32
	Line   uint32
}

// Text returns the token's spelling within src.
func (t Token) Text(src []byte) string {
	return string(src[t.Offset : t.Offset+t.Length])
}
