package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/beevik/term"
	"github.com/kapitanov/chipate/internal/config"
	"github.com/kapitanov/chipate/internal/debugger"
	"github.com/kapitanov/chipate/internal/emulator"
	"github.com/kapitanov/chipate/internal/hal"
	"github.com/kapitanov/chipate/internal/vm"
	"github.com/spf13/cobra"
	"github.com/sqweek/dialog"
)

func init() {
	// SDL must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	cfg := config.Default()

	root := &cobra.Command{
		Use:           filepath.Base(os.Args[0]),
		Short:         "CHIP-8 interpreter",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	cfg.BindFlags(root.PersistentFlags())

	root.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		loggerOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		if *verbose {
			loggerOpts.Level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))
		return cfg.Validate()
	}

	runCmd := &cobra.Command{
		Use:   "run [PATH_TO_ROM_FILE]",
		Short: "Run a ROM in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runROM(cmd.Context(), cfg, args)
		},
	}

	debugCmd := &cobra.Command{
		Use:   "debug PATH_TO_ROM_FILE",
		Short: "Step through a ROM on the console",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return debugROM(cfg, args[0])
		},
	}

	disasmCmd := &cobra.Command{
		Use:   "disasm PATH_TO_ROM_FILE",
		Short: "Print a disassembly of a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disassembleROM(cmd, args[0])
		},
	}

	root.AddCommand(runCmd, debugCmd, disasmCmd)

	// run is the default command
	root.Args = runCmd.Args
	root.RunE = runCmd.RunE

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("fatal error", "err", err)
		stop()
		os.Exit(1)
	}
}

func newMachine(cfg config.Config) *vm.VM {
	var opts []vm.Option
	if cfg.Seed != 0 {
		opts = append(opts, vm.WithRand(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))))
	}
	return vm.New(opts...)
}

func runROM(ctx context.Context, cfg config.Config, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		p, err := chooseROM(cfg.ROMFolder)
		if errors.Is(err, dialog.ErrCancelled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("unable to choose rom: %w", err)
		}
		path = p
	}

	machine := newMachine(cfg)
	if err := machine.LoadROM(path); err != nil {
		return err
	}

	title := fmt.Sprintf("CHIP-8 - %s", strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	h, err := hal.New(cfg, title)
	if err != nil {
		return fmt.Errorf("unable to initialize hal: %w", err)
	}
	defer h.Shutdown()

	emu := emulator.New(machine, h, vm.NewPacer(float64(cfg.Hz)))
	if err := emu.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if emu.Halted() {
		slog.Info("stopped after an instruction fault", "rom", path)
	}
	return nil
}

func chooseROM(folder string) (string, error) {
	b := dialog.File().
		Title("Load CHIP-8 ROM").
		Filter("CHIP-8 ROM", "ch8", "c8").
		Filter("All files", "*")
	if folder != "" {
		b = b.SetStartDir(folder)
	}
	return b.Load()
}

func debugROM(cfg config.Config, path string) error {
	machine := newMachine(cfg)
	if err := machine.LoadROM(path); err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	return debugger.New(machine, cfg.Hz).RunCommands(os.Stdin, os.Stdout, interactive)
}

func disassembleROM(cmd *cobra.Command, path string) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to load file %q: %w", path, err)
	}

	if len(bs) > vm.MaxProgramSize {
		return fmt.Errorf("unable to load file %q: %w", path, vm.ErrROMTooLarge)
	}

	out := cmd.OutOrStdout()
	for _, line := range vm.Listing(bs) {
		fmt.Fprintln(out, line)
	}
	return nil
}
