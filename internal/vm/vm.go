package vm

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

const (
	MemorySize    = 4096
	StackSize     = 16
	RegisterCount = 16
	KeyCount      = 16

	FontStart       = uint16(0x050)
	ProgramStart    = uint16(0x200)
	MaxProgramSize  = MemorySize - int(ProgramStart)
	InstructionSize = 2

	addrMask = MemorySize - 1
)

// Rand is the source of random bytes for the RND instruction.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type Option func(*VM)

// WithRand replaces the default time-seeded generator.
func WithRand(r Rand) Option {
	return func(vm *VM) {
		vm.rand = r
	}
}

// VM is a CHIP-8 interpreter. It is driven by a single caller and is not
// safe for concurrent use.
type VM struct {
	memory    [MemorySize]uint8    // Memory (4k)
	registers [RegisterCount]uint8 // V registers (V0-VF)

	stack [StackSize]uint16 // Stack
	sp    uint16            // Stack pointer

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer uint8 // Delay timer
	soundTimer uint8 // Sound timer

	screen Screen
	keypad Keypad

	lastFamily uint8 // Family of the last executed instruction

	romLoaded bool
	romPath   string

	rand Rand
}

func New(opts ...Option) *VM {
	seed := uint64(time.Now().UnixNano())
	vm := &VM{
		rand: rand.New(rand.NewPCG(seed, seed>>32|1)),
	}

	for _, opt := range opts {
		opt(vm)
	}

	vm.Reset()
	return vm
}

// Reset reinitializes memory, registers, stack, timers, keypad and display.
// The loaded ROM bytes are not reinstalled; use LoadROM for that.
func (vm *VM) Reset() {
	vm.memory = [MemorySize]uint8{}

	slog.Debug("load font", "at", fmt.Sprintf("0x%04x", FontStart), "n", len(font))
	copy(vm.memory[FontStart:], font[:])

	vm.registers = [RegisterCount]uint8{}
	vm.stack = [StackSize]uint16{}
	vm.keypad = Keypad{}
	vm.screen.Clear()

	vm.delayTimer = 0
	vm.soundTimer = 0

	vm.pc = ProgramStart
	vm.sp = 0
	vm.index = 0
	vm.lastFamily = 0
}

func (vm *VM) ROMLoaded() bool {
	return vm.romLoaded
}

func (vm *VM) ROMPath() string {
	return vm.romPath
}

func (vm *VM) Screen() *Screen {
	return &vm.screen
}

func (vm *VM) Keypad() *Keypad {
	return &vm.keypad
}

func (vm *VM) DelayTimer() uint8 {
	return vm.delayTimer
}

func (vm *VM) SetDelayTimer(v uint8) {
	vm.delayTimer = v
}

func (vm *VM) SoundTimer() uint8 {
	return vm.soundTimer
}

func (vm *VM) SetSoundTimer(v uint8) {
	vm.soundTimer = v
}

// Beeping reports whether the host should be playing the tone.
func (vm *VM) Beeping() bool {
	return vm.soundTimer > 0
}

// TickTimers decrements both timers by one if they are above zero. Hosts
// call it exactly once per 60 Hz frame.
func (vm *VM) TickTimers() {
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}

	if vm.soundTimer > 0 {
		vm.soundTimer--
	}
}

// DisplayWait reports whether the most recently executed instruction was a
// sprite draw.
func (vm *VM) DisplayWait() bool {
	return vm.lastFamily == 0xD
}

func (vm *VM) PC() uint16 {
	return vm.pc
}

func (vm *VM) SetPC(pc uint16) {
	vm.pc = pc & addrMask
}

func (vm *VM) I() uint16 {
	return vm.index
}

func (vm *VM) SP() uint16 {
	return vm.sp
}

func (vm *VM) Registers() [RegisterCount]uint8 {
	return vm.registers
}

func (vm *VM) SetRegister(r uint8, v uint8) {
	vm.registers[r&0xF] = v
}

func (vm *VM) Stack() []uint16 {
	return append([]uint16(nil), vm.stack[:vm.sp]...)
}

// Memory returns a copy of n bytes starting at addr. Reads wrap at the end
// of the address space.
func (vm *VM) Memory(addr uint16, n int) []uint8 {
	bs := make([]uint8, n)
	for i := range bs {
		bs[i] = vm.read(addr + uint16(i))
	}
	return bs
}

func (vm *VM) read(addr uint16) uint8 {
	return vm.memory[addr&addrMask]
}

func (vm *VM) write(addr uint16, v uint8) {
	vm.memory[addr&addrMask] = v
}
