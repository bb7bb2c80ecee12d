package vm

// Instruction is a decoded opcode. It is scratch state recomputed on every
// cycle.
type Instruction struct {
	Opcode uint16
	Family uint8  // top nibble
	X      uint8  // second nibble
	Y      uint8  // third nibble
	N      uint8  // low nibble
	KK     uint8  // low byte
	NNN    uint16 // low 12 bits
}

// Decode splits opcode into its fields.
func Decode(opcode uint16) Instruction {
	return Instruction{
		Opcode: opcode,
		Family: uint8((opcode & 0xF000) >> 12),
		X:      uint8((opcode & 0x0F00) >> 8),
		Y:      uint8((opcode & 0x00F0) >> 4),
		N:      uint8(opcode & 0x000F),
		KK:     uint8(opcode & 0x00FF),
		NNN:    opcode & 0x0FFF,
	}
}

// Fetch reads the big-endian opcode at PC and advances PC.
func (vm *VM) Fetch() uint16 {
	hi := vm.read(vm.pc)
	lo := vm.read(vm.pc + 1)

	opcode := uint16(hi)<<8 | uint16(lo) // Op code is two bytes
	vm.pc += InstructionSize
	return opcode
}

// Decode is a convenience wrapper around the package level Decode.
func (vm *VM) Decode(opcode uint16) Instruction {
	return Decode(opcode)
}

// Step fetches, decodes and executes one instruction.
func (vm *VM) Step() error {
	return vm.Execute(Decode(vm.Fetch()))
}
