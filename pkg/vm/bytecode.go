package vm

import "github.com/agenthands/nanocc/pkg/core/value"

// Bytecode represents the compiled output of a program.
// An instruction's position in Instructions is its address; jump
// arguments are absolute indices into the same slice.
type Bytecode struct {
	Instructions []uint32
	Constants    []value.Value
}
