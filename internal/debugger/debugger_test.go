package debugger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kapitanov/chipate/internal/vm"
	"github.com/retroenv/retrogolib/assert"
)

func run(t *testing.T, machine *vm.VM, script string) string {
	t.Helper()

	var out bytes.Buffer
	d := New(machine, vm.DefaultHz)
	assert.NoError(t, d.RunCommands(strings.NewReader(script), &out, false))
	return out.String()
}

func newMachine(t *testing.T, program ...byte) *vm.VM {
	t.Helper()

	machine := vm.New()
	assert.NoError(t, machine.LoadBytes(program))
	return machine
}

func TestStepAndRegisters(t *testing.T) {
	machine := newMachine(t, 0x61, 0x02, 0x72, 0x05)

	out := run(t, machine, "step\n\nregisters\n")

	assert.True(t, strings.HasPrefix(out, "0200  6102  ld v1, 0x02\n"), out)
	assert.True(t, strings.Contains(out, "0202  7205  add v2, 0x05\n"), out)
	assert.True(t, strings.Contains(out, "V1=02 V2=05"), out)
	assert.True(t, strings.Contains(out, "PC=0204 I=0000 SP=0"), out)
	assert.Equal(t, uint16(0x204), machine.PC())
}

func TestStepFault(t *testing.T) {
	machine := newMachine(t, 0x00, 0xE0, 0xE0, 0x00)

	out := run(t, machine, "step 5\n")

	assert.True(t, strings.Contains(out, "FAULT: unknown opcode\n0202  E000  unknown 0xE000\n"), out)
	assert.Equal(t, uint16(0x204), machine.PC())
}

func TestFrameAndKeys(t *testing.T) {
	// ld v0, k; jp 0x202
	machine := newMachine(t, 0xF0, 0x0A, 0x12, 0x02)

	out := run(t, machine, "key a down\nframe 2\nkey a up\nframe\nquit\nstep\n")

	assert.True(t, strings.Contains(out, "Key A down."), out)
	assert.Equal(t, uint8(0xA), machine.Registers()[0])
	assert.Equal(t, uint16(0x202), machine.PC())
}

func TestMemoryAndDisassemble(t *testing.T) {
	machine := newMachine(t, 0x61, 0x02, 0x00, 0xE0)

	out := run(t, machine, "memory 200 4\ndisassemble 0x200 2\nmemory 50 5\n")

	assert.True(t, strings.Contains(out, "0200  61 02 00 E0\n"), out)
	assert.True(t, strings.Contains(out, "0200  6102  ld v1, 0x02\n0202  00E0  cls\n"), out)
	assert.True(t, strings.Contains(out, "0050  F0 90 90 90 F0\n"), out)
}

func TestUnknownCommand(t *testing.T) {
	machine := newMachine(t, 0x12, 0x00)

	out := run(t, machine, "bogus\nmemory zz\n")

	assert.True(t, strings.Contains(out, "Command not found."), out)
	assert.True(t, strings.Contains(out, "invalid address"), out)
}

func TestSet(t *testing.T) {
	machine := newMachine(t, 0x12, 0x00)

	out := run(t, machine, "set memdump 8\nset\nset hz -1\n")

	assert.True(t, strings.Contains(out, "Setting MemDumpBytes updated."), out)
	assert.True(t, strings.Contains(out, "MemDumpBytes     8"), out)
	assert.True(t, strings.Contains(out, "invalid positive number"), out)
}

func TestLoadAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rom.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0x65, 0x42}, 0o600))

	machine := vm.New()
	out := run(t, machine, "load "+path+"\nstep\nreset\n")

	assert.True(t, strings.Contains(out, "Loaded "+path+"."), out)
	assert.Equal(t, path, machine.ROMPath())
	assert.Equal(t, uint16(0x200), machine.PC())
	assert.Equal(t, uint8(0), machine.Registers()[5])
	assert.Equal(t, []uint8{0x65, 0x42}, machine.Memory(0x200, 2))
}

func TestScreen(t *testing.T) {
	// ld i, 0x050; drw v0, v0, 5
	machine := newMachine(t, 0xA0, 0x50, 0xD0, 0x05)

	out := run(t, machine, "step 2\nscreen\n")

	assert.True(t, strings.Contains(out, "####...."), out)
}
