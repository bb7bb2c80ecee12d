// Package emulator drives a vm.VM from a host: one call to the HAL per
// frame for time, input, sound and video.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kapitanov/chipate/internal/vm"
)

var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

// HAL is the host side of the emulator.
type HAL interface {
	// WaitForNextFrame blocks until the next frame and returns the time
	// elapsed since the previous one.
	WaitForNextFrame() (time.Duration, error)
	// ReadInput updates keys from pending host events. It returns ErrQuit
	// or ErrReboot when the user asks for it.
	ReadInput(keys *vm.KeyState) error
	SetTone(on bool) error
	Draw(screen *vm.Screen) error
}

type Emulator struct {
	machine *vm.VM
	hal     HAL
	pacer   *vm.Pacer
	keys    vm.KeyState
	halted  bool
}

func New(machine *vm.VM, hal HAL, pacer *vm.Pacer) *Emulator {
	return &Emulator{
		machine: machine,
		hal:     hal,
		pacer:   pacer,
	}
}

// Halted reports whether execution stopped on an instruction fault.
func (e *Emulator) Halted() bool {
	return e.halted
}

// Run executes frames until the user quits or ctx is done. An instruction
// fault halts the machine; the last frame stays on screen until a reboot
// or quit.
func (e *Emulator) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := e.runFrame()
		if errors.Is(err, ErrQuit) {
			return nil
		}

		if errors.Is(err, ErrReboot) {
			if err := e.reboot(); err != nil {
				return err
			}
			continue
		}

		if err != nil {
			return err
		}
	}
}

func (e *Emulator) runFrame() error {
	elapsed, err := e.hal.WaitForNextFrame()
	if err != nil {
		return err
	}

	if err := e.hal.ReadInput(&e.keys); err != nil {
		return err
	}

	if !e.halted {
		err := e.machine.RunFrame(e.pacer, elapsed, e.keys)

		var ierr *vm.InstructionError
		if errors.As(err, &ierr) {
			slog.Error("machine halted",
				"err", err,
				"pc", fmt.Sprintf("0x%04x", ierr.PC),
				"opcode", fmt.Sprintf("0x%04x", ierr.Opcode),
			)
			e.halted = true
		} else if err != nil {
			return err
		}
	}

	if err := e.hal.SetTone(!e.halted && e.machine.Beeping()); err != nil {
		return err
	}

	return e.hal.Draw(e.machine.Screen())
}

func (e *Emulator) reboot() error {
	slog.Info("reboot", "rom", e.machine.ROMPath())

	e.halted = false
	e.pacer.Reset()

	if path := e.machine.ROMPath(); path != "" {
		return e.machine.LoadROM(path)
	}

	e.machine.Reset()
	return nil
}
