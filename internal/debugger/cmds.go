package debugger

import "github.com/beevik/cmd"

var (
	cmds     *cmd.Tree
	cmdsHelp []cmd.CommandDescriptor
)

func init() {
	cmdsHelp = []cmd.CommandDescriptor{
		{
			Name:        "help",
			Brief:       "Display help",
			Description: "Display the list of commands.",
			Usage:       "help",
			Data:        (*Debugger).cmdHelp,
		},
		{
			Name:  "disassemble",
			Brief: "Disassemble code",
			Description: "Disassemble instructions starting at the requested" +
				" address. If no address is given, the disassembly continues" +
				" from where the last one left off.",
			Usage: "disassemble [<address>] [<lines>]",
			Data:  (*Debugger).cmdDisassemble,
		},
		{
			Name:  "frame",
			Brief: "Run whole frames",
			Description: "Run one or more 60 Hz frames: snapshot the keypad," +
				" execute the instruction budget for the configured speed and" +
				" tick the timers.",
			Usage: "frame [<count>]",
			Data:  (*Debugger).cmdFrame,
		},
		{
			Name:  "key",
			Brief: "Press or release a key",
			Description: "Change the state of a keypad key. The new state is" +
				" applied by the next step or frame. Key releases are only" +
				" detected across frames.",
			Usage: "key <0-f> <down|up>",
			Data:  (*Debugger).cmdKey,
		},
		{
			Name:        "load",
			Brief:       "Load a ROM",
			Description: "Reset the machine and load a ROM file at 0x200.",
			Usage:       "load <filename>",
			Data:        (*Debugger).cmdLoad,
		},
		{
			Name:  "memory",
			Brief: "Dump memory",
			Description: "Dump memory starting at the requested address. If no" +
				" address is given, the dump continues from where the last one" +
				" left off.",
			Usage: "memory [<address>] [<bytes>]",
			Data:  (*Debugger).cmdMemory,
		},
		{
			Name:        "quit",
			Brief:       "Quit the debugger",
			Description: "Quit the debugger.",
			Usage:       "quit",
			Data:        (*Debugger).cmdQuit,
		},
		{
			Name:        "registers",
			Brief:       "Display registers",
			Description: "Display the V registers, I, PC, the timers and the stack.",
			Usage:       "registers",
			Data:        (*Debugger).cmdRegisters,
		},
		{
			Name:  "reset",
			Brief: "Reset the machine",
			Description: "Reset memory, registers and the display. The ROM is" +
				" reloaded from disk if one was loaded.",
			Usage: "reset",
			Data:  (*Debugger).cmdReset,
		},
		{
			Name:        "screen",
			Brief:       "Display the screen",
			Description: "Print the 64x32 display plane.",
			Usage:       "screen",
			Data:        (*Debugger).cmdScreen,
		},
		{
			Name:  "set",
			Brief: "Set a debugger setting",
			Description: "Set the value of a debugger setting. With no" +
				" arguments, display all settings.",
			Usage: "set [<name> <value>]",
			Data:  (*Debugger).cmdSet,
		},
		{
			Name:  "step",
			Brief: "Step instructions",
			Description: "Execute one or more instructions, ignoring the frame" +
				" budget and timers.",
			Usage: "step [<count>]",
			Data:  (*Debugger).cmdStep,
		},
	}

	cmds = cmd.NewTree(cmd.TreeDescriptor{Name: "chipate"})
	for _, c := range cmdsHelp {
		cmds.AddCommand(c)
	}
}
