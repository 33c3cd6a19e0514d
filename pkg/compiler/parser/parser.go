// Package parser compiles a minimal C subset straight to bytecode. There
// is no syntax tree: instructions are emitted as a side effect of the
// recursive descent, and jump targets are backpatched into the live
// instruction buffer as each construct closes.
package parser

import (
	"fmt"
	"strconv"

	"github.com/agenthands/nanocc/pkg/compiler/emitter"
	"github.com/agenthands/nanocc/pkg/compiler/lexer"
	"github.com/agenthands/nanocc/pkg/core/value"
	"github.com/agenthands/nanocc/pkg/vm"
)

// ParseError describes the first unmet expectation: an unexpected token,
// an unsupported construct, or an unresolved identifier.
type ParseError struct {
	Cause string
}

func (e *ParseError) Error() string {
	return "parse: " + e.Cause
}

// SymbolClass distinguishes where a name lives.
type SymbolClass uint8

const (
	SymbolGlobal SymbolClass = iota
	SymbolLocal
	// SymbolFunction is recognized but never populated: the only
	// callable construct is main itself.
	SymbolFunction
)

// Symbol binds a name to its class and, for locals, a stack slot index.
type Symbol struct {
	Name   string
	Class  SymbolClass
	Offset int
}

// Parser holds the full compilation state for one pass: the token cursor,
// both symbol scopes, and the live instruction buffer. A Parser is used
// once; Compile creates a fresh one per call.
type Parser struct {
	tokens []lexer.Token
	pos    int
	src    []byte

	emit *emitter.Builder

	globals     map[string]Symbol
	locals      map[string]Symbol
	localOffset int
	sawFunction bool
}

// Compile tokenizes and parses src in one pass, producing a program with
// all jump targets resolved.
func Compile(src []byte) (*vm.Bytecode, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(tokens, src).Parse()
}

// New creates a parser over an EOF-terminated token sequence.
func New(tokens []lexer.Token, src []byte) *Parser {
	return &Parser{
		tokens:  tokens,
		src:     src,
		emit:    emitter.New(),
		globals: make(map[string]Symbol),
		locals:  make(map[string]Symbol),
	}
}

// Parse consumes the whole token sequence and returns the bytecode.
func (p *Parser) Parse() (*vm.Bytecode, error) {
	if err := p.parseProgram(); err != nil {
		return nil, err
	}
	return p.emit.Bytecode(), nil
}

func (p *Parser) current() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return lexer.Token{Kind: lexer.KindEOF}
}

func (p *Parser) at(k lexer.Kind) bool {
	return p.current().Kind == k
}

func (p *Parser) eat(k lexer.Kind) bool {
	if p.at(k) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) expect(k lexer.Kind) error {
	if p.eat(k) {
		return nil
	}
	return &ParseError{Cause: fmt.Sprintf("expected %s, found %s", k, p.current().Kind)}
}

// lookup resolves a name, local scope before global.
func (p *Parser) lookup(name string) (Symbol, bool) {
	if sym, ok := p.locals[name]; ok {
		return sym, true
	}
	sym, ok := p.globals[name]
	return sym, ok
}

// parseProgram handles the top level: global variable declarations and
// the single permitted function definition.
func (p *Parser) parseProgram() error {
	for !p.at(lexer.KindEOF) {
		if !p.at(lexer.KindInt) && !p.at(lexer.KindChar) {
			return &ParseError{Cause: fmt.Sprintf("unexpected %s at top level", p.current().Kind)}
		}
		p.pos++ // type

		if !p.at(lexer.KindIdent) {
			return &ParseError{Cause: fmt.Sprintf("expected identifier after type, found %s", p.current().Kind)}
		}
		name := p.current().Text(p.src)
		p.pos++

		if p.eat(lexer.KindLParen) {
			if err := p.parseFunction(name); err != nil {
				return err
			}
		} else {
			// Global declaration. The declared type and any initializer
			// tokens are tolerated but not interpreted; the offset is a
			// placeholder, never used for addressing.
			p.globals[name] = Symbol{Name: name, Class: SymbolGlobal, Offset: 0}
			for !p.at(lexer.KindSemicolon) && !p.at(lexer.KindEOF) {
				p.pos++
			}
			if err := p.expect(lexer.KindSemicolon); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseFunction parses a function definition whose name and '(' have
// already been consumed.
func (p *Parser) parseFunction(name string) error {
	if name != "main" {
		return &ParseError{Cause: "only main is supported, found function " + name}
	}
	if p.sawFunction {
		return &ParseError{Cause: "only one function definition is supported"}
	}
	p.sawFunction = true

	if err := p.expect(lexer.KindRParen); err != nil {
		return err
	}
	if err := p.expect(lexer.KindLBrace); err != nil {
		return err
	}

	// Fresh local scope per function body.
	p.locals = make(map[string]Symbol)
	p.localOffset = 0

	for !p.at(lexer.KindRBrace) && !p.at(lexer.KindEOF) {
		if err := p.parseStmt(); err != nil {
			return err
		}
	}
	if err := p.expect(lexer.KindRBrace); err != nil {
		return err
	}

	// Implicit return covers fall-through to the end of the body.
	p.emit.Emit(vm.OP_RET, 0)
	return nil
}

func (p *Parser) parseStmt() error {
	switch p.current().Kind {
	case lexer.KindReturn:
		p.pos++
		if _, err := p.parseExpr(); err != nil {
			return err
		}
		if err := p.expect(lexer.KindSemicolon); err != nil {
			return err
		}
		p.emit.Emit(vm.OP_RET, 0)
		return nil

	case lexer.KindIf:
		return p.parseIf()

	case lexer.KindWhile:
		return p.parseWhile()

	case lexer.KindLBrace:
		// Blocks do not open a new scope: locals declared inside still
		// belong to the function-wide frame.
		p.pos++
		for !p.at(lexer.KindRBrace) && !p.at(lexer.KindEOF) {
			if err := p.parseStmt(); err != nil {
				return err
			}
		}
		return p.expect(lexer.KindRBrace)

	case lexer.KindInt, lexer.KindChar:
		return p.parseLocalDecl()

	default:
		// Expression statement. If the expression left its value on the
		// stack (anything but a top-level assignment, whose store already
		// consumed it), discard it.
		stored, err := p.parseExpr()
		if err != nil {
			return err
		}
		if err := p.expect(lexer.KindSemicolon); err != nil {
			return err
		}
		if !stored {
			p.emit.Emit(vm.OP_DROP, 0)
		}
		return nil
	}
}

// parseIf emits the two-slot backpatch pattern: a conditional jump over
// the then branch, and, when an else branch exists, an unconditional
// jump over it.
func (p *Parser) parseIf() error {
	p.pos++ // 'if'
	if err := p.expect(lexer.KindLParen); err != nil {
		return err
	}
	if _, err := p.parseExpr(); err != nil {
		return err
	}
	if err := p.expect(lexer.KindRParen); err != nil {
		return err
	}

	jz := p.emit.EmitJump(vm.OP_JZ)
	if err := p.parseStmt(); err != nil {
		return err
	}

	if p.eat(lexer.KindElse) {
		jmp := p.emit.EmitJump(vm.OP_JMP)
		p.emit.Patch(jz) // false branch lands on the else body
		if err := p.parseStmt(); err != nil {
			return err
		}
		p.emit.Patch(jmp)
	} else {
		p.emit.Patch(jz)
	}
	return nil
}

func (p *Parser) parseWhile() error {
	p.pos++ // 'while'
	loopStart := p.emit.Here()

	if err := p.expect(lexer.KindLParen); err != nil {
		return err
	}
	if _, err := p.parseExpr(); err != nil {
		return err
	}
	if err := p.expect(lexer.KindRParen); err != nil {
		return err
	}

	jz := p.emit.EmitJump(vm.OP_JZ)
	if err := p.parseStmt(); err != nil {
		return err
	}
	p.emit.Emit(vm.OP_JMP, uint32(loopStart))
	p.emit.Patch(jz)
	return nil
}

// parseLocalDecl handles `int a, b;`. Each name takes the next frame
// slot; re-declaring a name overwrites its earlier slot binding.
func (p *Parser) parseLocalDecl() error {
	p.pos++ // type
	for {
		if !p.at(lexer.KindIdent) {
			return &ParseError{Cause: fmt.Sprintf("expected identifier in declaration, found %s", p.current().Kind)}
		}
		name := p.current().Text(p.src)
		p.pos++

		p.localOffset++
		if p.localOffset >= vm.FrameSlots {
			return &ParseError{Cause: "too many local variables"}
		}
		p.locals[name] = Symbol{Name: name, Class: SymbolLocal, Offset: p.localOffset}

		if !p.eat(lexer.KindComma) {
			break
		}
	}
	return p.expect(lexer.KindSemicolon)
}

// parseExpr emits code for one expression and reports whether its value
// was already consumed by a top-level store.
func (p *Parser) parseExpr() (stored bool, err error) {
	return p.parseAssignment()
}

// parseAssignment detects `ident = ...` with a speculative two-token
// lookahead; when the '=' does not follow, the cursor is restored and the
// identifier parses as an ordinary factor.
func (p *Parser) parseAssignment() (bool, error) {
	start := p.pos
	if p.at(lexer.KindIdent) {
		name := p.current().Text(p.src)
		p.pos++
		if p.eat(lexer.KindAssign) {
			// Right-associative: a = b = ... recurses.
			if _, err := p.parseAssignment(); err != nil {
				return false, err
			}
			sym, ok := p.lookup(name)
			if !ok {
				return false, &ParseError{Cause: "undefined variable " + name}
			}
			p.emit.Emit(vm.OP_STORE, uint32(sym.Offset))
			return true, nil
		}
		p.pos = start
	}
	return false, p.parseAdditive()
}

func (p *Parser) parseAdditive() error {
	if err := p.parseTerm(); err != nil {
		return err
	}
	for {
		switch p.current().Kind {
		case lexer.KindPlus:
			p.pos++
			if err := p.parseTerm(); err != nil {
				return err
			}
			p.emit.Emit(vm.OP_ADD, 0)
		case lexer.KindMinus:
			p.pos++
			if err := p.parseTerm(); err != nil {
				return err
			}
			p.emit.Emit(vm.OP_SUB, 0)
		default:
			return nil
		}
	}
}

func (p *Parser) parseTerm() error {
	if err := p.parseFactor(); err != nil {
		return err
	}
	for {
		switch p.current().Kind {
		case lexer.KindStar:
			p.pos++
			if err := p.parseFactor(); err != nil {
				return err
			}
			p.emit.Emit(vm.OP_MUL, 0)
		case lexer.KindSlash:
			p.pos++
			if err := p.parseFactor(); err != nil {
				return err
			}
			p.emit.Emit(vm.OP_DIV, 0)
		default:
			return nil
		}
	}
}

func (p *Parser) parseFactor() error {
	tok := p.current()
	switch tok.Kind {
	case lexer.KindIntLit:
		p.pos++
		n, _ := strconv.ParseInt(tok.Text(p.src), 10, 64) // validated by the scanner
		p.emit.Emit(vm.OP_PUSH_C, p.emit.Constant(value.Int(n)))
		return nil

	case lexer.KindFloatLit:
		p.pos++
		f, _ := strconv.ParseFloat(tok.Text(p.src), 64)
		p.emit.Emit(vm.OP_PUSH_C, p.emit.Constant(value.Float(f)))
		return nil

	case lexer.KindIdent:
		name := tok.Text(p.src)
		p.pos++
		sym, ok := p.lookup(name)
		if !ok {
			return &ParseError{Cause: "undefined variable " + name}
		}
		p.emit.Emit(vm.OP_LOAD, uint32(sym.Offset))
		return nil

	case lexer.KindLParen:
		p.pos++
		if _, err := p.parseExpr(); err != nil {
			return err
		}
		return p.expect(lexer.KindRParen)

	default:
		return &ParseError{Cause: fmt.Sprintf("unexpected %s in expression", tok.Kind)}
	}
}
