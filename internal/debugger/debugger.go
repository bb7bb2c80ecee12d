// Package debugger implements a line oriented CHIP-8 debugger. It reads
// commands from a reader, runs them against a vm.VM and writes the results
// to a writer.
package debugger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/cmd"
	"github.com/kapitanov/chipate/internal/vm"
)

var errQuit = errors.New("quit")

type Debugger struct {
	machine  *vm.VM
	pacer    *vm.Pacer
	keys     vm.KeyState
	settings *settings

	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *cmd.Selection

	nextDisasmAddr  uint16
	nextMemDumpAddr uint16
}

func New(machine *vm.VM, hz int) *Debugger {
	return &Debugger{
		machine:         machine,
		pacer:           vm.NewPacer(float64(hz)),
		settings:        newSettings(hz),
		nextDisasmAddr:  machine.PC(),
		nextMemDumpAddr: machine.PC(),
	}
}

// RunCommands accepts commands from r and writes the results to w until
// the input ends or a quit command is read. If interactive, a prompt is
// shown before each command.
func (d *Debugger) RunCommands(r io.Reader, w io.Writer, interactive bool) error {
	d.input = bufio.NewScanner(r)
	d.output = bufio.NewWriter(w)
	d.interactive = interactive
	defer d.flush()

	d.displayPC()

	for {
		d.prompt()

		line, err := d.getLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case errors.Is(err, cmd.ErrNotFound):
				d.println("Command not found.")
				continue
			case errors.Is(err, cmd.ErrAmbiguous):
				d.println("Command is ambiguous.")
				continue
			case err != nil:
				d.printf("ERROR: %v.\n", err)
				continue
			}
		} else if d.lastCmd != nil {
			c = *d.lastCmd
		}

		if c.Command == nil {
			continue
		}
		d.lastCmd = &c

		handler := c.Command.Data.(func(*Debugger, cmd.Selection) error)
		err = handler(d, c)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (d *Debugger) cmdHelp(c cmd.Selection) error {
	d.println("Commands:")
	for _, h := range cmdsHelp {
		d.printf("    %-12s %s\n", h.Name, h.Brief)
	}
	return nil
}

func (d *Debugger) cmdStep(c cmd.Selection) error {
	n, ok := d.parseCount(c, 0, 1)
	if !ok {
		return nil
	}

	d.machine.Keypad().SetAll(d.keys)
	for i := 0; i < n; i++ {
		if err := d.machine.Step(); err != nil {
			d.printFault(err)
			break
		}
		if d.settings.TraceSteps {
			d.displayPC()
		}
	}

	if !d.settings.TraceSteps {
		d.displayPC()
	}
	return nil
}

func (d *Debugger) cmdFrame(c cmd.Selection) error {
	n, ok := d.parseCount(c, 0, 1)
	if !ok {
		return nil
	}

	d.pacer.Hz = float64(d.settings.Hz)
	for i := 0; i < n; i++ {
		if err := d.machine.RunFrame(d.pacer, time.Second/vm.TimerHz, d.keys); err != nil {
			d.printFault(err)
			break
		}
	}

	d.displayPC()
	return nil
}

func (d *Debugger) cmdRegisters(c cmd.Selection) error {
	regs := d.machine.Registers()
	for i, v := range regs {
		sep := " "
		if i%8 == 7 {
			sep = "\n"
		}
		d.printf("V%X=%02X%s", i, v, sep)
	}

	d.printf("PC=%04X I=%04X SP=%d DT=%02X ST=%02X\n",
		d.machine.PC(), d.machine.I(), d.machine.SP(),
		d.machine.DelayTimer(), d.machine.SoundTimer())

	stack := d.machine.Stack()
	if len(stack) > 0 {
		parts := make([]string, len(stack))
		for i, a := range stack {
			parts[i] = fmt.Sprintf("%04X", a)
		}
		d.printf("Stack: %s\n", strings.Join(parts, " "))
	}
	return nil
}

func (d *Debugger) cmdMemory(c cmd.Selection) error {
	addr := d.nextMemDumpAddr
	if len(c.Args) > 0 {
		a, err := parseAddr(c.Args[0])
		if err != nil {
			d.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	n, ok := d.parseCount(c, 1, d.settings.MemDumpBytes)
	if !ok {
		return nil
	}

	bs := d.machine.Memory(addr, n)
	for i := 0; i < len(bs); i += 16 {
		end := min(i+16, len(bs))

		parts := make([]string, 0, 16)
		for _, b := range bs[i:end] {
			parts = append(parts, fmt.Sprintf("%02X", b))
		}
		d.printf("%04X  %s\n", (addr+uint16(i))&(vm.MemorySize-1), strings.Join(parts, " "))
	}

	d.nextMemDumpAddr = (addr + uint16(n)) & (vm.MemorySize - 1)
	return nil
}

func (d *Debugger) cmdDisassemble(c cmd.Selection) error {
	addr := d.nextDisasmAddr
	if len(c.Args) > 0 {
		a, err := parseAddr(c.Args[0])
		if err != nil {
			d.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	n, ok := d.parseCount(c, 1, d.settings.DisasmLines)
	if !ok {
		return nil
	}

	for i := 0; i < n; i++ {
		d.println(d.disassemble(addr))
		addr = (addr + vm.InstructionSize) & (vm.MemorySize - 1)
	}

	d.nextDisasmAddr = addr
	return nil
}

func (d *Debugger) cmdKey(c cmd.Selection) error {
	if len(c.Args) < 2 {
		d.printf("Syntax: %s\n", "key <0-f> <down|up>")
		return nil
	}

	k, err := strconv.ParseUint(c.Args[0], 16, 8)
	if err != nil || k >= vm.KeyCount {
		d.printf("Invalid key %q.\n", c.Args[0])
		return nil
	}

	switch strings.ToLower(c.Args[1]) {
	case "down", "d", "1":
		d.keys[k] = true
	case "up", "u", "0":
		d.keys[k] = false
	default:
		d.printf("Invalid key state %q.\n", c.Args[1])
		return nil
	}

	d.printf("Key %X %s.\n", k, strings.ToLower(c.Args[1]))
	return nil
}

func (d *Debugger) cmdLoad(c cmd.Selection) error {
	if len(c.Args) < 1 {
		d.printf("Syntax: %s\n", "load <filename>")
		return nil
	}

	if err := d.machine.LoadROM(c.Args[0]); err != nil {
		d.printf("ERROR: %v.\n", err)
		return nil
	}

	d.resetView()
	d.printf("Loaded %s.\n", c.Args[0])
	d.displayPC()
	return nil
}

func (d *Debugger) cmdReset(c cmd.Selection) error {
	if path := d.machine.ROMPath(); path != "" {
		if err := d.machine.LoadROM(path); err != nil {
			d.printf("ERROR: %v.\n", err)
			return nil
		}
	} else {
		d.machine.Reset()
	}

	d.resetView()
	d.displayPC()
	return nil
}

func (d *Debugger) cmdScreen(c cmd.Selection) error {
	d.print(d.machine.Screen().String())
	d.flush()
	return nil
}

func (d *Debugger) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		d.println("Settings:")
		d.settings.Display(d.output)
		d.flush()
	case 1:
		d.printf("Syntax: %s\n", "set [<name> <value>]")
	default:
		name, err := d.settings.Set(c.Args[0], c.Args[1])
		if err != nil {
			d.printf("ERROR: %v.\n", err)
			return nil
		}
		d.printf("Setting %s updated.\n", name)
	}
	return nil
}

func (d *Debugger) cmdQuit(c cmd.Selection) error {
	return errQuit
}

func (d *Debugger) resetView() {
	d.keys = vm.KeyState{}
	d.pacer.Reset()
	d.nextDisasmAddr = d.machine.PC()
	d.nextMemDumpAddr = d.machine.PC()
}

func (d *Debugger) parseCount(c cmd.Selection, arg, def int) (int, bool) {
	if len(c.Args) <= arg {
		return def, true
	}

	n, err := strconv.Atoi(c.Args[arg])
	if err != nil || n <= 0 {
		d.printf("Invalid count %q.\n", c.Args[arg])
		return 0, false
	}
	return n, true
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "$")
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}

	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil || v >= vm.MemorySize {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}

func (d *Debugger) printFault(err error) {
	var ierr *vm.InstructionError
	if errors.As(err, &ierr) {
		d.printf("FAULT: %v\n", ierr.Err)
		d.println(d.disassemble(ierr.PC))
		return
	}
	d.printf("ERROR: %v.\n", err)
}

func (d *Debugger) disassemble(addr uint16) string {
	bs := d.machine.Memory(addr, vm.InstructionSize)
	opcode := uint16(bs[0])<<8 | uint16(bs[1])
	return fmt.Sprintf("%04X  %04X  %s", addr, opcode, vm.Disassemble(opcode))
}

func (d *Debugger) displayPC() {
	d.println(d.disassemble(d.machine.PC()))
}

func (d *Debugger) print(args ...any) {
	fmt.Fprint(d.output, args...)
}

func (d *Debugger) printf(format string, args ...any) {
	fmt.Fprintf(d.output, format, args...)
	d.flush()
}

func (d *Debugger) println(args ...any) {
	fmt.Fprintln(d.output, args...)
	d.flush()
}

func (d *Debugger) flush() {
	d.output.Flush()
}

func (d *Debugger) getLine() (string, error) {
	if d.input.Scan() {
		return strings.TrimSpace(d.input.Text()), nil
	}
	if d.input.Err() != nil {
		return "", d.input.Err()
	}
	return "", io.EOF
}

func (d *Debugger) prompt() {
	if d.interactive {
		d.print("* ")
		d.flush()
	}
}
