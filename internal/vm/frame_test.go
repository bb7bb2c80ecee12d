package vm

import (
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func TestTickTimers(t *testing.T) {
	vm := newTestVM(t)
	vm.SetSoundTimer(5)
	vm.SetDelayTimer(2)

	for i := 0; i < 5; i++ {
		vm.TickTimers()
	}
	assert.Equal(t, uint8(0), vm.SoundTimer())
	assert.Equal(t, uint8(0), vm.DelayTimer())
	assert.False(t, vm.Beeping())

	vm.TickTimers()
	assert.Equal(t, uint8(0), vm.SoundTimer())
}

func TestWaitForKeyRelease(t *testing.T) {
	// ld v5, k
	vm := newTestVM(t, 0xF5, 0x0A)
	vm.SetRegister(5, 0xEE)

	// frame 1: key 3 goes down
	vm.Keypad().Snapshot()
	vm.Keypad().Set(Key3, true)
	assert.NoError(t, vm.Step())
	assert.Equal(t, ProgramStart, vm.PC())
	assert.Equal(t, uint8(0xEE), vm.Registers()[5])

	// frame 2: key 3 comes up
	vm.Keypad().Snapshot()
	vm.Keypad().Set(Key3, false)
	assert.True(t, vm.Keypad().Released(Key3))
	assert.NoError(t, vm.Step())

	assert.Equal(t, uint8(3), vm.Registers()[5])
	assert.Equal(t, ProgramStart+InstructionSize, vm.PC())
}

func TestWaitForKeyHeld(t *testing.T) {
	vm := newTestVM(t, 0xF5, 0x0A)
	vm.SetRegister(5, 0xEE)

	for frame := 0; frame < 10; frame++ {
		vm.Keypad().Snapshot()
		vm.Keypad().Set(Key3, true)

		for i := 0; i < 3; i++ {
			assert.NoError(t, vm.Step())
			assert.Equal(t, ProgramStart, vm.PC())
		}
	}

	assert.Equal(t, uint8(0xEE), vm.Registers()[5])
}

func TestWaitForKeyLowestRelease(t *testing.T) {
	vm := newTestVM(t, 0xF0, 0x0A)

	var keys KeyState
	keys[0x9] = true
	keys[0x4] = true
	vm.Keypad().SetAll(keys)
	vm.Keypad().Snapshot()
	vm.Keypad().SetAll(KeyState{})

	assert.NoError(t, vm.Step())
	assert.Equal(t, uint8(4), vm.Registers()[0])
}

func TestPacer(t *testing.T) {
	p := NewPacer(20)

	p.Add(time.Second / 2)
	n := 0
	for p.Take() {
		n++
	}
	assert.Equal(t, 10, n)

	p = NewPacer(1)
	p.Add(time.Second / 2)
	assert.False(t, p.Take())
	p.Add(time.Second / 2)
	assert.True(t, p.Take())
	assert.False(t, p.Take())

	assert.Equal(t, float64(DefaultHz), NewPacer(0).Hz)
}

func TestRunFrameStopsAfterDraw(t *testing.T) {
	// add v0, 1; drw v1, v1, 0; jp 0x200
	vm := newTestVM(t, 0x70, 0x01, 0xD1, 0x10, 0x12, 0x00)
	p := NewPacer(TimerHz * 100)
	vm.SetDelayTimer(10)

	assert.NoError(t, vm.RunFrame(p, time.Second/TimerHz, KeyState{}))

	assert.Equal(t, uint8(1), vm.Registers()[0])
	assert.Equal(t, uint16(0x204), vm.PC())
	assert.Equal(t, uint8(9), vm.DelayTimer())
	assert.True(t, p.Budget() >= 97)
}

func TestRunFrameKeyEdge(t *testing.T) {
	// ld v2, k; jp 0x202
	vm := newTestVM(t, 0xF2, 0x0A, 0x12, 0x02)
	p := NewPacer(TimerHz * 4)
	frame := time.Second / TimerHz

	var down KeyState
	down[0xB] = true

	assert.NoError(t, vm.RunFrame(p, frame, down))
	assert.Equal(t, ProgramStart, vm.PC())

	assert.NoError(t, vm.RunFrame(p, frame, down))
	assert.Equal(t, ProgramStart, vm.PC())

	assert.NoError(t, vm.RunFrame(p, frame, KeyState{}))
	assert.Equal(t, uint8(0xB), vm.Registers()[2])
	assert.Equal(t, uint16(0x202), vm.PC())
}

func TestRunFrameFault(t *testing.T) {
	vm := newTestVM(t, 0xFF, 0xFF)
	vm.SetSoundTimer(2)

	err := vm.RunFrame(NewPacer(DefaultHz), time.Second/TimerHz, KeyState{})
	assert.Error(t, err)
	assert.Equal(t, uint8(1), vm.SoundTimer())
}
