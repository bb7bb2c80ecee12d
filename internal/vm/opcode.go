package vm

import (
	"context"
	"fmt"
	"log/slog"
)

// Execute runs a decoded instruction. PC must already point past it, as
// Fetch leaves it.
func (vm *VM) Execute(instr Instruction) error {
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", vm.pc-InstructionSize),
			"opcode", fmt.Sprintf("0x%04x", instr.Opcode),
			"instr", Disassemble(instr.Opcode),
		)
	}

	vm.lastFamily = instr.Family

	switch instr.Family {
	case 0x0:
		return vm.executeSystem(instr)

	case 0x1:
		// 1NNN - Jumps to address NNN
		vm.pc = instr.NNN

	case 0x2:
		// 2NNN - Calls subroutine at NNN
		if int(vm.sp) >= StackSize {
			return vm.fault(instr, ErrStackOverflow)
		}
		vm.stack[vm.sp] = vm.pc
		vm.sp++
		vm.pc = instr.NNN

	case 0x3:
		// 3XNN - Skips the next instruction if VX equals NN
		vm.skipIf(vm.registers[instr.X] == instr.KK)

	case 0x4:
		// 4XNN - Skips the next instruction if VX does not equal NN
		vm.skipIf(vm.registers[instr.X] != instr.KK)

	case 0x5:
		// 5XY_ - Skips the next instruction if VX equals VY
		vm.skipIf(vm.registers[instr.X] == vm.registers[instr.Y])

	case 0x6:
		// 6XNN - Sets VX to NN
		vm.registers[instr.X] = instr.KK

	case 0x7:
		// 7XNN - Adds NN to VX, no carry
		vm.registers[instr.X] += instr.KK

	case 0x8:
		return vm.executeALU(instr)

	case 0x9:
		// 9XY_ - Skips the next instruction if VX doesn't equal VY
		vm.skipIf(vm.registers[instr.X] != vm.registers[instr.Y])

	case 0xA:
		// ANNN - Sets I to the address NNN
		vm.index = instr.NNN

	case 0xB:
		// BNNN - Jumps to the address NNN plus V0
		vm.pc = (instr.NNN + uint16(vm.registers[0])) & addrMask

	case 0xC:
		// CXNN - Sets VX to a random byte masked by NN
		vm.registers[instr.X] = uint8(vm.rand.IntN(256)) & instr.KK

	case 0xD:
		// DXYN - Draws an 8xN sprite from memory at I at (VX, VY).
		// VF is set when a lit pixel is turned off.
		vm.draw(instr)

	case 0xE:
		return vm.executeKey(instr)

	case 0xF:
		return vm.executeMisc(instr)
	}

	return nil
}

func (vm *VM) executeSystem(instr Instruction) error {
	switch instr.Opcode {
	case 0x00E0:
		// 00E0 - Clear screen
		vm.screen.Clear()

	case 0x00EE:
		// 00EE - Return from subroutine
		if vm.sp == 0 {
			return vm.fault(instr, ErrStackUnderflow)
		}
		vm.sp--
		vm.pc = vm.stack[vm.sp]

	default:
		// 0NNN - Machine code routine on the original hardware, ignored
	}

	return nil
}

func (vm *VM) executeALU(instr Instruction) error {
	x := vm.registers[instr.X]
	y := vm.registers[instr.Y]

	switch instr.N {
	case 0x0:
		// 8XY0 - Sets VX to the value of VY
		vm.registers[instr.X] = y

	case 0x1:
		// 8XY1 - Sets VX to (VX OR VY), VF reset
		vm.registers[instr.X] = x | y
		vm.registers[0xF] = 0

	case 0x2:
		// 8XY2 - Sets VX to (VX AND VY), VF reset
		vm.registers[instr.X] = x & y
		vm.registers[0xF] = 0

	case 0x3:
		// 8XY3 - Sets VX to (VX XOR VY), VF reset
		vm.registers[instr.X] = x ^ y
		vm.registers[0xF] = 0

	case 0x4:
		// 8XY4 - Adds VY to VX, VF is the carry
		sum := uint16(x) + uint16(y)
		vm.registers[instr.X] = uint8(sum)
		vm.registers[0xF] = flag(sum > 0xFF)

	case 0x5:
		// 8XY5 - VX = VX - VY, VF is NOT borrow
		vm.registers[instr.X] = x - y
		vm.registers[0xF] = flag(x >= y)

	case 0x6:
		// 8XY6 - VX = VY >> 1, VF is the bit shifted out
		vm.registers[instr.X] = y
		v := vm.registers[instr.X]
		vm.registers[instr.X] = v >> 1
		vm.registers[0xF] = v & 0x1

	case 0x7:
		// 8XY7 - VX = VY - VX, VF is NOT borrow.
		// The flag compares VY against the new VX.
		vm.registers[instr.X] = y - x
		vm.registers[0xF] = flag(vm.registers[instr.Y] >= vm.registers[instr.X])

	case 0xE:
		// 8XYE - VX = VY << 1, VF is the bit shifted out
		vm.registers[instr.X] = y
		v := vm.registers[instr.X]
		vm.registers[instr.X] = v << 1
		vm.registers[0xF] = v >> 7

	default:
		return vm.fault(instr, ErrUnknownOpcode)
	}

	return nil
}

func (vm *VM) executeKey(instr Instruction) error {
	key := Key(vm.registers[instr.X] & 0xF)

	switch instr.KK {
	case 0x9E:
		// EX9E - Skips the next instruction if the key in VX is pressed
		vm.skipIf(vm.keypad.Pressed(key))

	case 0xA1:
		// EXA1 - Skips the next instruction if the key in VX isn't pressed
		vm.skipIf(!vm.keypad.Pressed(key))

	default:
		return vm.fault(instr, ErrUnknownOpcode)
	}

	return nil
}

func (vm *VM) executeMisc(instr Instruction) error {
	switch instr.KK {
	case 0x07:
		// FX07 - Sets VX to the value of the delay timer
		vm.registers[instr.X] = vm.delayTimer

	case 0x0A:
		// FX0A - Waits for a key to be pressed and released, stores it in VX.
		// Without a release the instruction is repeated on the next cycle.
		if key, ok := vm.keypad.firstReleased(); ok {
			vm.registers[instr.X] = uint8(key)
		} else {
			vm.pc -= InstructionSize
		}

	case 0x15:
		// FX15 - Sets the delay timer to VX
		vm.delayTimer = vm.registers[instr.X]

	case 0x18:
		// FX18 - Sets the sound timer to VX
		vm.soundTimer = vm.registers[instr.X]

	case 0x1E:
		// FX1E - Adds VX to I
		vm.index += uint16(vm.registers[instr.X])

	case 0x29:
		// FX29 - Sets I to the font glyph for the digit in VX
		vm.index = FontStart + uint16(vm.registers[instr.X])*GlyphHeight

	case 0x33:
		// FX33 - Stores the BCD representation of VX at I, I+1 and I+2
		x := vm.registers[instr.X]
		vm.write(vm.index, x/100)
		vm.write(vm.index+1, (x/10)%10)
		vm.write(vm.index+2, x%10)

	case 0x55:
		// FX55 - Stores V0 to VX in memory starting at I, then I = I + X + 1
		n := uint16(instr.X)
		for i := uint16(0); i <= n; i++ {
			vm.write(vm.index+i, vm.registers[i])
		}
		vm.index += n + 1

	case 0x65:
		// FX65 - Reads V0 to VX from memory starting at I, then I = I + X + 1
		n := uint16(instr.X)
		for i := uint16(0); i <= n; i++ {
			vm.registers[i] = vm.read(vm.index + i)
		}
		vm.index += n + 1

	default:
		return vm.fault(instr, ErrUnknownOpcode)
	}

	return nil
}

func (vm *VM) draw(instr Instruction) {
	rows := make([]uint8, instr.N)
	for i := range rows {
		rows[i] = vm.read(vm.index + uint16(i))
	}

	x, y := vm.registers[instr.X], vm.registers[instr.Y]

	vm.registers[0xF] = 0
	if vm.screen.Draw(x, y, rows) {
		vm.registers[0xF] = 1
	}
}

func (vm *VM) skipIf(cond bool) {
	if cond {
		vm.pc += InstructionSize
	}
}

func (vm *VM) fault(instr Instruction, err error) error {
	return &InstructionError{
		Opcode: instr.Opcode,
		PC:     vm.pc - InstructionSize,
		Err:    err,
	}
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
