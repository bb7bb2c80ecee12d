package vm

import "fmt"

// Disassemble returns the mnemonic form of opcode.
func Disassemble(opcode uint16) string {
	in := Decode(opcode)

	switch in.Family {
	case 0x0:
		switch opcode {
		case 0x00E0:
			return "cls"
		case 0x00EE:
			return "ret"
		}
		return fmt.Sprintf("sys 0x%04x", in.NNN)

	case 0x1:
		return fmt.Sprintf("jp 0x%04x", in.NNN)

	case 0x2:
		return fmt.Sprintf("call 0x%04x", in.NNN)

	case 0x3:
		return fmt.Sprintf("se v%x, 0x%02x", in.X, in.KK)

	case 0x4:
		return fmt.Sprintf("sne v%x, 0x%02x", in.X, in.KK)

	case 0x5:
		return fmt.Sprintf("se v%x, v%x", in.X, in.Y)

	case 0x6:
		return fmt.Sprintf("ld v%x, 0x%02x", in.X, in.KK)

	case 0x7:
		return fmt.Sprintf("add v%x, 0x%02x", in.X, in.KK)

	case 0x8:
		if name, ok := aluNames[in.N]; ok {
			return fmt.Sprintf("%s v%x, v%x", name, in.X, in.Y)
		}

	case 0x9:
		return fmt.Sprintf("sne v%x, v%x", in.X, in.Y)

	case 0xA:
		return fmt.Sprintf("ld i, 0x%04x", in.NNN)

	case 0xB:
		return fmt.Sprintf("jp v0, 0x%04x", in.NNN)

	case 0xC:
		return fmt.Sprintf("rnd v%x, 0x%02x", in.X, in.KK)

	case 0xD:
		return fmt.Sprintf("drw v%x, v%x, %d", in.X, in.Y, in.N)

	case 0xE:
		switch in.KK {
		case 0x9E:
			return fmt.Sprintf("skp v%x", in.X)
		case 0xA1:
			return fmt.Sprintf("sknp v%x", in.X)
		}

	case 0xF:
		if format, ok := miscFormats[in.KK]; ok {
			return fmt.Sprintf(format, in.X)
		}
	}

	return fmt.Sprintf("unknown 0x%04X", opcode)
}

var aluNames = map[uint8]string{
	0x0: "ld",
	0x1: "or",
	0x2: "and",
	0x3: "xor",
	0x4: "add",
	0x5: "sub",
	0x6: "shr",
	0x7: "subn",
	0xE: "shl",
}

var miscFormats = map[uint8]string{
	0x07: "ld v%x, dt",
	0x0A: "ld v%x, k",
	0x15: "ld dt, v%x",
	0x18: "ld st, v%x",
	0x1E: "add i, v%x",
	0x29: "ld f, v%x",
	0x33: "ld b, v%x",
	0x55: "ld [i], v%x",
	0x65: "ld v%x, [i]",
}

// Listing disassembles program as if it were loaded at ProgramStart, one
// line per two-byte word. A trailing odd byte is shown as data.
func Listing(program []byte) []string {
	lines := make([]string, 0, len(program)/2+1)
	for i := 0; i+1 < len(program); i += InstructionSize {
		opcode := uint16(program[i])<<8 | uint16(program[i+1])
		lines = append(lines, fmt.Sprintf("0x%04x  %04X  %s", int(ProgramStart)+i, opcode, Disassemble(opcode)))
	}

	if len(program)%2 == 1 {
		i := len(program) - 1
		lines = append(lines, fmt.Sprintf("0x%04x  %02X    db 0x%02x", int(ProgramStart)+i, program[i], program[i]))
	}

	return lines
}
