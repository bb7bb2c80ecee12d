package vm

import "time"

const (
	DefaultHz = 700
	TimerHz   = 60
)

// Pacer converts elapsed wall time into a whole-instruction budget. The
// fractional remainder carries over to the next frame.
type Pacer struct {
	Hz     float64
	budget float64
}

func NewPacer(hz float64) *Pacer {
	if hz <= 0 {
		hz = DefaultHz
	}
	return &Pacer{Hz: hz}
}

// Add credits the budget with the instructions due for elapsed.
func (p *Pacer) Add(elapsed time.Duration) {
	p.budget += elapsed.Seconds() * p.Hz
}

// Take consumes one instruction from the budget if a whole one is left.
func (p *Pacer) Take() bool {
	if p.budget < 1 {
		return false
	}
	p.budget--
	return true
}

func (p *Pacer) Budget() float64 {
	return p.budget
}

func (p *Pacer) Reset() {
	p.budget = 0
}

// RunFrame advances the machine by one host frame: the keypad is
// snapshotted and set to keys, instructions run while the pacer has budget
// and no sprite was drawn, then the timers tick once.
//
// The timers tick even when an instruction faults, so the error reports the
// state of a complete frame.
func (vm *VM) RunFrame(p *Pacer, elapsed time.Duration, keys KeyState) error {
	vm.keypad.Snapshot()
	vm.keypad.SetAll(keys)

	p.Add(elapsed)

	var err error
	for p.Take() {
		if err = vm.Step(); err != nil {
			break
		}

		if vm.DisplayWait() {
			break
		}
	}

	vm.TickTimers()
	return err
}
