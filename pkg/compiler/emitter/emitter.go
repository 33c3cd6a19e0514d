package emitter

import (
	"github.com/agenthands/nanocc/pkg/core/value"
	"github.com/agenthands/nanocc/pkg/vm"
)

// Builder accumulates the instruction sequence while the parser walks the
// token stream. An instruction's index in the sequence is its address;
// jumps are emitted with a dummy target and patched by index once the
// real target address is known.
type Builder struct {
	instructions []uint32
	constants    []value.Value
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{}
}

// Here returns the address the next emitted instruction will occupy.
func (b *Builder) Here() int {
	return len(b.instructions)
}

// Emit appends an instruction and returns its address.
func (b *Builder) Emit(op uint8, arg uint32) int {
	b.instructions = append(b.instructions, vm.Encode(op, arg))
	return len(b.instructions) - 1
}

// EmitJump appends a jump with a dummy target for later patching.
func (b *Builder) EmitJump(op uint8) int {
	return b.Emit(op, 0)
}

// Patch rewrites the jump at addr to target the current sequence length,
// i.e. the address immediately after everything emitted so far.
func (b *Builder) Patch(addr int) {
	op, _ := vm.Decode(b.instructions[addr])
	b.instructions[addr] = vm.Encode(op, uint32(len(b.instructions)))
}

// Constant interns v in the constant pool and returns its index.
func (b *Builder) Constant(v value.Value) uint32 {
	for i, c := range b.constants {
		if c.Type == v.Type && c.Data == v.Data {
			return uint32(i)
		}
	}
	b.constants = append(b.constants, v)
	return uint32(len(b.constants) - 1)
}

// Bytecode returns the finished program.
func (b *Builder) Bytecode() *vm.Bytecode {
	return &vm.Bytecode{
		Instructions: b.instructions,
		Constants:    b.constants,
	}
}
