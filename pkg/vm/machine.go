package vm

import (
	"github.com/agenthands/nanocc/pkg/core/value"
)

// RuntimeError is an execution fault: stack misuse, a bad local offset,
// mixed-type arithmetic, division by zero, or running off the end of the
// instruction sequence.
type RuntimeError struct {
	Cause string
}

func (e *RuntimeError) Error() string {
	return "vm: " + e.Cause
}

var (
	ErrStackOverflow  = &RuntimeError{Cause: "stack overflow"}
	ErrStackUnderflow = &RuntimeError{Cause: "stack underflow"}
	ErrGasExhausted   = &RuntimeError{Cause: "gas exhausted"}
	ErrNoReturn       = &RuntimeError{Cause: "no return encountered"}
)

const (
	// FrameSlots is the number of zero-initialized slots reserved below
	// the operand stack. Local offsets address into this region, so it
	// must exist before the first push.
	FrameSlots = 64
	// MaxStack bounds stack growth. Conditional jumps inspect their
	// operand without popping it, so long loops legitimately accumulate
	// condition values; the cap only guards runaway programs.
	MaxStack = 1 << 16
	// DefaultGas is the instruction budget used by Execute.
	DefaultGas = 1 << 20
)

// Machine executes one instruction sequence on a growable value stack.
// The zero Machine has no local frame; call Reset (or New) before Run.
type Machine struct {
	Stack []value.Value
	SP    int // Stack Pointer

	IP   int      // Instruction Pointer
	Code []uint32 // Bytecode instructions

	Constants []value.Value // Constant pool
}

// New returns a machine with a reserved local frame.
func New() *Machine {
	m := &Machine{}
	m.Reset()
	return m
}

// Reset clears the machine state for reuse and re-reserves the local
// frame: FrameSlots integer zeros below the operand stack.
func (m *Machine) Reset() {
	m.IP = 0
	m.Stack = m.Stack[:0]
	for i := 0; i < FrameSlots; i++ {
		m.Stack = append(m.Stack, value.Int(0))
	}
	m.SP = FrameSlots
}

// Execute runs a compiled program on a fresh machine with the default
// gas budget.
func Execute(bc *Bytecode) (value.Value, error) {
	m := New()
	m.Code = bc.Instructions
	m.Constants = bc.Constants
	return m.Run(DefaultGas)
}

// Run executes instructions until a RET yields a result, a fault occurs,
// or the gas budget runs out.
func (m *Machine) Run(gasLimit int) (value.Value, error) {
	// Cache hot fields in locals for register allocation.
	ip := m.IP
	sp := m.SP
	code := m.Code

	fail := func(err error) (value.Value, error) {
		m.IP = ip
		m.SP = sp
		return value.Value{}, err
	}

	push := func(v value.Value) {
		if sp < len(m.Stack) {
			m.Stack[sp] = v
		} else {
			m.Stack = append(m.Stack, v)
		}
		sp++
	}

	for i := 0; i < gasLimit; i++ {
		if ip < 0 || ip >= len(code) {
			return fail(ErrNoReturn)
		}

		op, arg := Decode(code[ip])

		switch op {
		case OP_HALT:
			// Stopping without RET means the program produced no result.
			return fail(ErrNoReturn)

		case OP_PUSH_C:
			if int(arg) >= len(m.Constants) {
				return fail(&RuntimeError{Cause: "bad constant index in PUSH_C"})
			}
			if sp >= MaxStack {
				return fail(ErrStackOverflow)
			}
			push(m.Constants[arg])
			ip++

		case OP_LOAD:
			if int(arg) >= sp {
				return fail(&RuntimeError{Cause: "invalid offset in LOAD"})
			}
			if sp >= MaxStack {
				return fail(ErrStackOverflow)
			}
			push(m.Stack[arg])
			ip++

		case OP_STORE:
			if sp <= 0 {
				return fail(ErrStackUnderflow)
			}
			sp--
			v := m.Stack[sp]
			if int(arg) >= sp {
				return fail(&RuntimeError{Cause: "invalid offset in STORE"})
			}
			m.Stack[arg] = v
			ip++

		case OP_DROP:
			if sp <= 0 {
				return fail(ErrStackUnderflow)
			}
			sp--
			ip++

		case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
			if sp < 2 {
				return fail(ErrStackUnderflow)
			}
			b := m.Stack[sp-1]
			a := m.Stack[sp-2]
			res, err := arith(op, a, b)
			if err != nil {
				return fail(err)
			}
			m.Stack[sp-2] = res
			sp--
			ip++

		case OP_JMP:
			ip = int(arg)

		case OP_JZ:
			// Inspects the top of stack without popping it.
			if sp <= 0 {
				return fail(ErrStackUnderflow)
			}
			if m.Stack[sp-1].IsZero() {
				ip = int(arg)
			} else {
				ip++
			}

		case OP_RET:
			if sp <= 0 {
				return fail(ErrStackUnderflow)
			}
			sp--
			m.IP = ip
			m.SP = sp
			return m.Stack[sp], nil

		default:
			return fail(&RuntimeError{Cause: "unknown opcode"})
		}
	}

	return fail(ErrGasExhausted)
}

// arith applies a binary opcode to a same-tag pair of operands; b is the
// right operand (popped first).
func arith(op uint8, a, b value.Value) (value.Value, error) {
	if a.Type != b.Type || (a.Type != value.TypeInt && a.Type != value.TypeFloat) {
		return value.Value{}, &RuntimeError{Cause: "type mismatch in " + opName(op)}
	}
	if op == OP_DIV && b.IsZero() {
		return value.Value{}, &RuntimeError{Cause: "division by zero"}
	}

	if a.Type == value.TypeInt {
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case OP_ADD:
			return value.Int(x + y), nil
		case OP_SUB:
			return value.Int(x - y), nil
		case OP_MUL:
			return value.Int(x * y), nil
		default:
			return value.Int(x / y), nil
		}
	}

	x, y := a.AsFloat(), b.AsFloat()
	switch op {
	case OP_ADD:
		return value.Float(x + y), nil
	case OP_SUB:
		return value.Float(x - y), nil
	case OP_MUL:
		return value.Float(x * y), nil
	default:
		return value.Float(x / y), nil
	}
}

func opName(op uint8) string {
	switch op {
	case OP_ADD:
		return "ADD"
	case OP_SUB:
		return "SUB"
	case OP_MUL:
		return "MUL"
	case OP_DIV:
		return "DIV"
	default:
		return "?"
	}
}
