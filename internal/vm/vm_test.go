package vm

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

func newTestVM(t *testing.T, program ...byte) *VM {
	t.Helper()

	vm := New(WithRand(rand.New(rand.NewPCG(1, 2))))
	if len(program) > 0 {
		assert.NoError(t, vm.LoadBytes(program))
	}
	return vm
}

func writeROM(t *testing.T, name string, size int, fill byte) string {
	t.Helper()

	bs := make([]byte, size)
	for i := range bs {
		bs[i] = fill
	}

	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, bs, 0o600))
	return path
}

func TestReset(t *testing.T) {
	vm := newTestVM(t, 0x61, 0x02, 0xA2, 0x22)
	assert.NoError(t, vm.Step())
	assert.NoError(t, vm.Step())
	vm.SetDelayTimer(3)
	vm.SetSoundTimer(4)
	vm.Keypad().Set(Key3, true)
	vm.Keypad().Snapshot()
	vm.Screen().Draw(0, 0, []uint8{0xFF})

	vm.Reset()

	if diff := cmp.Diff(Font(), vm.Memory(FontStart, len(font))); diff != "" {
		t.Errorf("font: (-want, +got)\n%s", diff)
	}

	mem := vm.Memory(0, MemorySize)
	for addr, b := range mem {
		if addr >= int(FontStart) && addr < int(FontStart)+len(font) {
			continue
		}
		if b != 0 {
			t.Fatalf("memory at 0x%04x is 0x%02x, want 0", addr, b)
		}
	}

	assert.Equal(t, [RegisterCount]uint8{}, vm.Registers())
	assert.Equal(t, [StackSize]uint16{}, vm.stack)
	assert.Equal(t, ProgramStart, vm.PC())
	assert.Equal(t, uint16(0), vm.SP())
	assert.Equal(t, uint16(0), vm.I())
	assert.Equal(t, uint8(0), vm.DelayTimer())
	assert.Equal(t, uint8(0), vm.SoundTimer())
	assert.Equal(t, Keypad{}, *vm.Keypad())
	assert.False(t, vm.DisplayWait())

	if diff := cmp.Diff(make([]uint8, ScreenWidth*ScreenHeight), vm.Screen().Pixels()); diff != "" {
		t.Errorf("screen: (-want, +got)\n%s", diff)
	}
}

func TestResetKeepsROMPath(t *testing.T) {
	vm := newTestVM(t)
	path := writeROM(t, "rom.ch8", 4, 0x12)
	assert.NoError(t, vm.LoadROM(path))

	vm.Reset()

	assert.True(t, vm.ROMLoaded())
	assert.Equal(t, path, vm.ROMPath())
	assert.Equal(t, uint8(0), vm.Memory(ProgramStart, 1)[0])
}

func TestLoadROM(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "empty", size: 0},
		{name: "small", size: 2},
		{name: "max", size: MaxProgramSize},
		{name: "too large", size: MaxProgramSize + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t)
			path := writeROM(t, "rom.ch8", tt.size, 0xAB)

			err := vm.LoadROM(path)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrROMTooLarge))
				assert.False(t, vm.ROMLoaded())
				assert.Equal(t, "", vm.ROMPath())
				return
			}

			assert.NoError(t, err)
			assert.True(t, vm.ROMLoaded())
			assert.Equal(t, path, vm.ROMPath())

			got := vm.Memory(ProgramStart, tt.size)
			for i, b := range got {
				if b != 0xAB {
					t.Fatalf("memory at 0x%04x is 0x%02x, want 0xab", int(ProgramStart)+i, b)
				}
			}
		})
	}
}

func TestLoadROMFailureKeepsState(t *testing.T) {
	vm := newTestVM(t)
	path := writeROM(t, "good.ch8", MaxProgramSize, 0x6A)
	assert.NoError(t, vm.LoadROM(path))
	assert.NoError(t, vm.Step())

	before := *vm

	tooLarge := writeROM(t, "big.ch8", MaxProgramSize+1, 0x00)
	assert.Error(t, vm.LoadROM(tooLarge))
	assert.True(t, before == *vm, "state changed after oversized rom")

	missing := filepath.Join(t.TempDir(), "missing.ch8")
	err := vm.LoadROM(missing)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.True(t, before == *vm, "state changed after missing rom")

	assert.True(t, vm.ROMLoaded())
	assert.Equal(t, path, vm.ROMPath())
	assert.Equal(t, uint8(0x6A), vm.Registers()[0xA])
}

func TestLoadBytesTooLarge(t *testing.T) {
	vm := newTestVM(t, 0x60, 0x01)

	err := vm.LoadBytes(make([]byte, MaxProgramSize+1))
	assert.True(t, errors.Is(err, ErrROMTooLarge))
	assert.Equal(t, uint8(0x60), vm.Memory(ProgramStart, 1)[0])
}

func TestMemoryWraps(t *testing.T) {
	vm := newTestVM(t)
	vm.write(MemorySize-1, 0x12)
	vm.write(MemorySize, 0x34)

	assert.Equal(t, uint8(0x34), vm.read(0))
	if diff := cmp.Diff([]uint8{0x12, 0x34}, vm.Memory(MemorySize-1, 2)); diff != "" {
		t.Errorf("memory: (-want, +got)\n%s", diff)
	}
}
