package parser_test

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"

	"github.com/agenthands/nanocc/pkg/compiler/parser"
	"github.com/agenthands/nanocc/pkg/core/value"
	"github.com/agenthands/nanocc/pkg/vm"
)

func compile(t *testing.T, src string) *vm.Bytecode {
	t.Helper()
	bc, err := parser.Compile([]byte(src))
	be.Err(t, err, nil)
	return bc
}

func run(t *testing.T, src string) value.Value {
	t.Helper()
	res, err := vm.Execute(compile(t, src))
	be.Err(t, err, nil)
	return res
}

func TestReturnLiteral(t *testing.T) {
	be.Equal(t, run(t, "int main() { return 42; }"), value.Int(42))
}

func TestWhitespaceAndCommentsOnly(t *testing.T) {
	src := `
	// nothing to see here
	int main() { // entry point
		return 7;
	}
	`
	be.Equal(t, run(t, src), value.Int(7))
}

func TestPrecedence(t *testing.T) {
	be.Equal(t, run(t, "int main() { return 2 + 3 * 4 - 6 / 2; }"), value.Int(5))
	be.Equal(t, run(t, "int main() { return (2 + 3) * 4; }"), value.Int(20))
	be.Equal(t, run(t, "int main() { return 10 - 2 - 3; }"), value.Int(5))
}

func TestAssignmentAndSequencing(t *testing.T) {
	src := "int main() { int a, b; a = 5; b = 10; return a + b; }"
	be.Equal(t, run(t, src), value.Int(15))
}

func TestAssignmentOfExpression(t *testing.T) {
	// The full right-hand side is parsed before the store is emitted.
	src := "int main() { int a; a = 2 + 3; return a * a; }"
	be.Equal(t, run(t, src), value.Int(25))
}

func TestIfElseSelectsOneBranch(t *testing.T) {
	src := `
	int main() {
		if (1) {
			if (0) return 1;
			else return 2;
		} else return 3;
	}
	`
	be.Equal(t, run(t, src), value.Int(2))
}

func TestIfWithoutElse(t *testing.T) {
	src := `
	int main() {
		int a;
		a = 1;
		if (0) a = 2;
		return a;
	}
	`
	be.Equal(t, run(t, src), value.Int(1))
}

func TestNestedWhile(t *testing.T) {
	src := `
	int main() {
		int i;
		i = 3;
		while (i) {
			while (i - 1) {
				i = i - 1;
			}
			i = 0;
		}
		return i;
	}
	`
	be.Equal(t, run(t, src), value.Int(0))
}

func TestCountdownLoop(t *testing.T) {
	src := `
	int main() {
		int i, total;
		i = 5;
		total = 0;
		while (i) {
			total = total + i;
			i = i - 1;
		}
		return total;
	}
	`
	be.Equal(t, run(t, src), value.Int(15))
}

func TestGlobalVariable(t *testing.T) {
	src := `
	int g;
	int main() {
		g = 3;
		return g + 1;
	}
	`
	be.Equal(t, run(t, src), value.Int(4))
}

func TestGlobalDeclarationTokensSkipped(t *testing.T) {
	// Initializer and array tokens are tolerated syntactically even
	// though the grammar ignores them.
	src := `
	int g = 1 + 2;
	char buf[16];
	int main() { return 9; }
	`
	be.Equal(t, run(t, src), value.Int(9))
}

func TestFloatArithmetic(t *testing.T) {
	be.Equal(t, run(t, "int main() { return 1.5 + 2.5; }"), value.Float(4.0))
	be.Equal(t, run(t, "int main() { return 7.0 / 2.0; }"), value.Float(3.5))
}

func TestLocalRedeclarationLastWins(t *testing.T) {
	src := `
	int main() {
		int a;
		a = 1;
		int a;
		a = 2;
		return a;
	}
	`
	be.Equal(t, run(t, src), value.Int(2))
}

func TestExpressionStatementDiscarded(t *testing.T) {
	src := `
	int main() {
		int a;
		a = 1;
		2 + 3;
		a;
		return a;
	}
	`
	be.Equal(t, run(t, src), value.Int(1))
}

func TestMainWithoutReturnYieldsFrameZero(t *testing.T) {
	// The implicit return pops a frame slot, which Reset zeroed.
	be.Equal(t, run(t, "int main() { }"), value.Int(0))
}

func TestUndefinedVariable(t *testing.T) {
	_, err := parser.Compile([]byte("int main() { return x; }"))
	be.Err(t, err, "undefined variable")

	var perr *parser.ParseError
	be.True(t, errors.As(err, &perr))

	_, err = parser.Compile([]byte("int main() { x = 1; return 0; }"))
	be.Err(t, err, "undefined variable")
}

func TestOnlyMainSupported(t *testing.T) {
	_, err := parser.Compile([]byte("int foo() { return 1; }"))
	be.Err(t, err, "only main is supported")
}

func TestSecondFunctionRejected(t *testing.T) {
	src := `
	int main() { return 1; }
	int main() { return 2; }
	`
	_, err := parser.Compile([]byte(src))
	be.Err(t, err, "only one function definition")
}

func TestMismatchedDelimiters(t *testing.T) {
	for _, src := range []string{
		"int main( { return 0; }",
		"int main() { return 0;",
		"int main() { return (1 + 2; }",
		"int main() { return 0 }",
	} {
		_, err := parser.Compile([]byte(src))
		be.Err(t, err, "expected")
	}
}

func TestRelationalOperatorsNotInGrammar(t *testing.T) {
	// The scanner knows these tokens; the expression grammar does not.
	_, err := parser.Compile([]byte("int main() { return 1 == 1; }"))
	be.Err(t, err)

	_, err = parser.Compile([]byte("int main() { return 1 <= 2; }"))
	be.Err(t, err)
}

func TestDivisionByZeroIsRuntimeNotParse(t *testing.T) {
	bc := compile(t, "int main() { return 10 / 0; }")
	_, err := vm.Execute(bc)
	be.Err(t, err, "division by zero")

	bc = compile(t, "int main() { return 10.0 / 0.0; }")
	_, err = vm.Execute(bc)
	be.Err(t, err, "division by zero")
}

func TestMixedTypesFailAtRuntime(t *testing.T) {
	bc := compile(t, "int main() { return 1 + 2.0; }")
	_, err := vm.Execute(bc)
	be.Err(t, err, "type mismatch")
}

func TestCompileIsIdempotent(t *testing.T) {
	src := []byte(`
	int g;
	int main() {
		int a, b;
		a = 2;
		b = 3;
		while (a) { a = a - 1; }
		if (b) return b;
		else return g;
	}
	`)
	first, err := parser.Compile(src)
	be.Err(t, err, nil)
	second, err := parser.Compile(src)
	be.Err(t, err, nil)
	be.Equal(t, first.Instructions, second.Instructions)
	be.Equal(t, first.Constants, second.Constants)
}

func TestGeneratedInstructions(t *testing.T) {
	bc := compile(t, "int main() { return 1 + 2; }")
	be.Equal(t, bc.Instructions, []uint32{
		vm.Encode(vm.OP_PUSH_C, 0),
		vm.Encode(vm.OP_PUSH_C, 1),
		vm.Encode(vm.OP_ADD, 0),
		vm.Encode(vm.OP_RET, 0),
		vm.Encode(vm.OP_RET, 0), // implicit return
	})
	be.Equal(t, bc.Constants, []value.Value{value.Int(1), value.Int(2)})
}

func TestIfElseBackpatchTargets(t *testing.T) {
	bc := compile(t, "int main() { if (1) 2; else 3; return 0; }")
	// 0: PUSH_C 1
	// 1: JZ 5        -> else branch
	// 2: PUSH_C 2
	// 3: DROP
	// 4: JMP 7       -> after else
	// 5: PUSH_C 3
	// 6: DROP
	// 7: PUSH_C 0
	// 8: RET
	// 9: RET (implicit)
	op, arg := vm.Decode(bc.Instructions[1])
	be.Equal(t, op, vm.OP_JZ)
	be.Equal(t, arg, uint32(5))
	op, arg = vm.Decode(bc.Instructions[4])
	be.Equal(t, op, vm.OP_JMP)
	be.Equal(t, arg, uint32(7))
}

func TestWhileBackpatchTargets(t *testing.T) {
	bc := compile(t, "int main() { int i; while (i) i = i - 1; return i; }")
	// 0: LOAD 1       <- loop start
	// 1: JZ 7
	// 2: LOAD 1
	// 3: PUSH_C 0 (1)
	// 4: SUB
	// 5: STORE 1
	// 6: JMP 0
	// 7: LOAD 1
	// 8: RET
	// 9: RET (implicit)
	op, arg := vm.Decode(bc.Instructions[1])
	be.Equal(t, op, vm.OP_JZ)
	be.Equal(t, arg, uint32(7))
	op, arg = vm.Decode(bc.Instructions[6])
	be.Equal(t, op, vm.OP_JMP)
	be.Equal(t, arg, uint32(0))
}

func TestTooManyLocals(t *testing.T) {
	src := "int main() { int "
	for i := 0; i < vm.FrameSlots; i++ {
		if i > 0 {
			src += ", "
		}
		src += "v" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	src += "; return 0; }"
	_, err := parser.Compile([]byte(src))
	be.Err(t, err, "too many local variables")
}
