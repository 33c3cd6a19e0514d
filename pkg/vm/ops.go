package vm

const (
	OP_HALT   uint8 = 0x00
	OP_PUSH_C uint8 = 0x01
	OP_LOAD   uint8 = 0x02
	OP_STORE  uint8 = 0x03
	OP_DROP   uint8 = 0x04
	OP_ADD    uint8 = 0x10
	OP_SUB    uint8 = 0x11
	OP_MUL    uint8 = 0x12
	OP_DIV    uint8 = 0x13
	OP_JMP    uint8 = 0x20
	OP_JZ     uint8 = 0x21
	OP_RET    uint8 = 0x22
)

// Encode packs an opcode and its 24-bit argument into one instruction word.
func Encode(op uint8, arg uint32) uint32 {
	return (uint32(op) << 24) | (arg & 0x00FFFFFF)
}

// Decode splits an instruction word into opcode and argument.
func Decode(instr uint32) (uint8, uint32) {
	return uint8(instr >> 24), instr & 0x00FFFFFF
}
