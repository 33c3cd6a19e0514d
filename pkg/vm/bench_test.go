package vm_test

import (
	"testing"

	"github.com/agenthands/nanocc/pkg/core/value"
	"github.com/agenthands/nanocc/pkg/vm"
)

func BenchmarkVMLoop(b *testing.B) {
	// Bytecode for: i = 100; while (i) i = i - 1; return i;
	// (i lives in frame slot 1)
	//
	//  0: PUSH_C 0 (100)
	//  1: STORE 1
	//  2: LOAD 1          <- loop start: condition
	//  3: JZ 9
	//  4: LOAD 1
	//  5: PUSH_C 1 (1)
	//  6: SUB
	//  7: STORE 1
	//  8: JMP 2
	//  9: LOAD 1
	// 10: RET
	code := []uint32{
		vm.Encode(vm.OP_PUSH_C, 0),
		vm.Encode(vm.OP_STORE, 1),
		vm.Encode(vm.OP_LOAD, 1),
		vm.Encode(vm.OP_JZ, 9),
		vm.Encode(vm.OP_LOAD, 1),
		vm.Encode(vm.OP_PUSH_C, 1),
		vm.Encode(vm.OP_SUB, 0),
		vm.Encode(vm.OP_STORE, 1),
		vm.Encode(vm.OP_JMP, 2),
		vm.Encode(vm.OP_LOAD, 1),
		vm.Encode(vm.OP_RET, 0),
	}
	constants := []value.Value{
		value.Int(100),
		value.Int(1),
	}

	m := vm.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Reset()
		m.Code = code
		m.Constants = constants
		res, err := m.Run(10000)
		if err != nil {
			b.Fatal(err)
		}
		if res.AsInt() != 0 {
			b.Fatalf("expected 0, got %s", res.Format())
		}
	}
}

func BenchmarkFloatArith(b *testing.B) {
	code := []uint32{
		vm.Encode(vm.OP_PUSH_C, 0),
		vm.Encode(vm.OP_PUSH_C, 1),
		vm.Encode(vm.OP_MUL, 0),
		vm.Encode(vm.OP_RET, 0),
	}
	constants := []value.Value{
		value.Float(1.5),
		value.Float(4.0),
	}

	m := vm.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Reset()
		m.Code = code
		m.Constants = constants
		if _, err := m.Run(100); err != nil {
			b.Fatal(err)
		}
	}
}
