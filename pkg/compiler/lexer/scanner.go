package lexer

import (
	"fmt"
	"strconv"
)

// LexError describes a malformed character or literal in the source text.
type LexError struct {
	Cause string
}

func (e *LexError) Error() string {
	return "lex: " + e.Cause
}

// Scanner performs lexical analysis on C source.
type Scanner struct {
	source []byte
	cursor int
	line   int
}

// NewScanner creates a new scanner for the given source.
func NewScanner(source []byte) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
	}
}

// Reset re-initializes the scanner with new source for reuse.
func (s *Scanner) Reset(source []byte) {
	s.source = source
	s.cursor = 0
	s.line = 1
}

// Tokenize scans the whole source into an EOF-terminated token sequence.
func Tokenize(source []byte) ([]Token, error) {
	s := NewScanner(source)
	var tokens []Token
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == KindEOF {
			return tokens, nil
		}
	}
}

// Next returns the next token from the source.
func (s *Scanner) Next() (Token, error) {
	s.skipWhitespace()

	if s.cursor >= len(s.source) {
		return Token{Kind: KindEOF, Offset: uint32(s.cursor), Line: uint32(s.line)}, nil
	}

	start := s.cursor
	ch := s.source[s.cursor]

	// Comments (// ...); a lone '/' is the divide operator.
	if ch == '/' && s.peek() == '/' {
		s.skipComment()
		return s.Next()
	}

	if isDigit(ch) {
		return s.scanNumber()
	}

	if isAlpha(ch) || ch == '_' {
		return s.scanIdentifier(), nil
	}

	s.cursor++
	var kind Kind
	switch ch {
	case '+':
		kind = KindPlus
	case '-':
		kind = KindMinus
	case '*':
		kind = KindStar
	case '/':
		kind = KindSlash
	case '=':
		if s.match('=') {
			kind = KindEq
		} else {
			kind = KindAssign
		}
	case '!':
		if !s.match('=') {
			return Token{}, &LexError{Cause: "unexpected character '!'"}
		}
		kind = KindNe
	case '<':
		if s.match('=') {
			kind = KindLe
		} else {
			kind = KindLt
		}
	case '>':
		if s.match('=') {
			kind = KindGe
		} else {
			kind = KindGt
		}
	case ';':
		kind = KindSemicolon
	case ',':
		kind = KindComma
	case '(':
		kind = KindLParen
	case ')':
		kind = KindRParen
	case '{':
		kind = KindLBrace
	case '}':
		kind = KindRBrace
	default:
		return Token{}, &LexError{Cause: fmt.Sprintf("unexpected character %q", ch)}
	}

	return Token{Kind: kind, Offset: uint32(start), Length: uint32(s.cursor - start), Line: uint32(s.line)}, nil
}

func (s *Scanner) skipWhitespace() {
	for s.cursor < len(s.source) {
		ch := s.source[s.cursor]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			s.cursor++
		} else if ch == '\n' {
			s.line++
			s.cursor++
		} else {
			break
		}
	}
}

func (s *Scanner) skipComment() {
	for s.cursor < len(s.source) && s.source[s.cursor] != '\n' {
		s.cursor++
	}
}

// scanNumber lexes a decimal run, and a fractional part if a dot follows.
// Literal values are validated here so malformed or overflowing runs fail
// the scan instead of surfacing later in the parser.
func (s *Scanner) scanNumber() (Token, error) {
	start := s.cursor
	for s.cursor < len(s.source) && isDigit(s.source[s.cursor]) {
		s.cursor++
	}

	kind := KindIntLit
	if s.cursor < len(s.source) && s.source[s.cursor] == '.' {
		kind = KindFloatLit
		s.cursor++
		for s.cursor < len(s.source) && isDigit(s.source[s.cursor]) {
			s.cursor++
		}
	}

	literal := string(s.source[start:s.cursor])
	if kind == KindIntLit {
		if _, err := strconv.ParseInt(literal, 10, 64); err != nil {
			return Token{}, &LexError{Cause: "bad integer literal " + literal}
		}
	} else {
		if _, err := strconv.ParseFloat(literal, 64); err != nil {
			return Token{}, &LexError{Cause: "bad float literal " + literal}
		}
	}

	return Token{Kind: kind, Offset: uint32(start), Length: uint32(s.cursor - start), Line: uint32(s.line)}, nil
}

func (s *Scanner) scanIdentifier() Token {
	start := s.cursor
	for s.cursor < len(s.source) && (isAlpha(s.source[s.cursor]) || isDigit(s.source[s.cursor]) || s.source[s.cursor] == '_') {
		s.cursor++
	}

	kind := KindIdent
	switch string(s.source[start:s.cursor]) {
	case "int":
		kind = KindInt
	case "char":
		kind = KindChar
	case "return":
		kind = KindReturn
	case "if":
		kind = KindIf
	case "else":
		kind = KindElse
	case "while":
		kind = KindWhile
	}

	return Token{Kind: kind, Offset: uint32(start), Length: uint32(s.cursor - start), Line: uint32(s.line)}
}

func (s *Scanner) peek() byte {
	if s.cursor+1 >= len(s.source) {
		return 0
	}
	return s.source[s.cursor+1]
}

func (s *Scanner) match(ch byte) bool {
	if s.cursor < len(s.source) && s.source[s.cursor] == ch {
		s.cursor++
		return true
	}
	return false
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
