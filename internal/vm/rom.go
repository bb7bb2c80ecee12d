package vm

import (
	"fmt"
	"log/slog"
	"os"
)

// LoadROM reads a raw CHIP-8 image from path, resets the machine and installs
// the image at ProgramStart. On failure the machine is left untouched.
func (vm *VM) LoadROM(path string) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to load file %q: %w", path, err)
	}

	if err := vm.install(bs); err != nil {
		return fmt.Errorf("unable to load file %q: %w", path, err)
	}

	vm.romLoaded = true
	vm.romPath = path
	return nil
}

// LoadBytes installs program the same way LoadROM does, without a source path.
func (vm *VM) LoadBytes(program []byte) error {
	if err := vm.install(program); err != nil {
		return err
	}

	vm.romLoaded = true
	vm.romPath = ""
	return nil
}

func (vm *VM) install(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrROMTooLarge, len(program), MaxProgramSize)
	}

	vm.Reset()

	slog.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(program))
	copy(vm.memory[ProgramStart:], program)
	return nil
}
