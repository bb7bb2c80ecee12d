package emulator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kapitanov/chipate/internal/vm"
	"github.com/retroenv/retrogolib/assert"
)

type frameInput struct {
	keys vm.KeyState
	err  error
}

type fakeHAL struct {
	frames []frameInput
	frame  int

	tones  []bool
	draws  int
	screen string
}

func (h *fakeHAL) WaitForNextFrame() (time.Duration, error) {
	return time.Second / vm.TimerHz, nil
}

func (h *fakeHAL) ReadInput(keys *vm.KeyState) error {
	if h.frame >= len(h.frames) {
		return ErrQuit
	}

	in := h.frames[h.frame]
	h.frame++
	*keys = in.keys
	return in.err
}

func (h *fakeHAL) SetTone(on bool) error {
	h.tones = append(h.tones, on)
	return nil
}

func (h *fakeHAL) Draw(screen *vm.Screen) error {
	h.draws++
	h.screen = screen.String()
	return nil
}

func loadROM(t *testing.T, program ...byte) *vm.VM {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.ch8")
	assert.NoError(t, os.WriteFile(path, program, 0o600))

	machine := vm.New()
	assert.NoError(t, machine.LoadROM(path))
	return machine
}

func TestRunUntilQuit(t *testing.T) {
	// ld v0, 3; ld st, v0; jp 0x204
	machine := loadROM(t, 0x60, 0x03, 0xF0, 0x18, 0x12, 0x04)
	hal := &fakeHAL{frames: make([]frameInput, 4)}

	err := New(machine, hal, vm.NewPacer(vm.DefaultHz)).Run(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, 4, hal.draws)
	assert.Equal(t, []bool{true, true, false, false}, hal.tones)
}

func TestRunHaltsOnFault(t *testing.T) {
	machine := loadROM(t, 0xFF, 0xFF)
	hal := &fakeHAL{frames: make([]frameInput, 3)}
	emu := New(machine, hal, vm.NewPacer(vm.DefaultHz))

	assert.NoError(t, emu.Run(context.Background()))
	assert.True(t, emu.Halted())
	assert.Equal(t, 3, hal.draws)
	assert.Equal(t, uint16(0x202), machine.PC())
}

func TestRunReboot(t *testing.T) {
	// add v1, 1; unknown
	machine := loadROM(t, 0x71, 0x01, 0xFF, 0xFF)
	hal := &fakeHAL{frames: []frameInput{
		{},
		{err: ErrReboot},
		{},
	}}
	emu := New(machine, hal, vm.NewPacer(vm.DefaultHz))

	assert.NoError(t, emu.Run(context.Background()))
	assert.True(t, emu.Halted())
	assert.Equal(t, uint8(1), machine.Registers()[1])
	assert.Equal(t, 2, hal.draws)
}

func TestRunPassesKeys(t *testing.T) {
	// ld v4, k; jp 0x202
	machine := loadROM(t, 0xF4, 0x0A, 0x12, 0x02)

	var down vm.KeyState
	down[0x7] = true
	hal := &fakeHAL{frames: []frameInput{{keys: down}, {}}}

	assert.NoError(t, New(machine, hal, vm.NewPacer(vm.DefaultHz)).Run(context.Background()))
	assert.Equal(t, uint8(7), machine.Registers()[4])
}

func TestRunContextCanceled(t *testing.T) {
	machine := loadROM(t, 0x12, 0x00)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(machine, &fakeHAL{}, vm.NewPacer(vm.DefaultHz)).Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
