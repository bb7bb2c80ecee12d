// Package config holds the user facing emulator options.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kapitanov/chipate/internal/vm"
	"github.com/spf13/pflag"
)

var (
	ErrInvalidColor = errors.New("invalid color")
)

// Color is a 24-bit RGB color. It implements pflag.Value so it can be set
// as "#rrggbb" or "rrggbb" on the command line.
type Color uint32

func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}

func (c *Color) Set(s string) error {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(s, "#")) != 6 {
		return fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	*c = Color(v)
	return nil
}

func (c *Color) Type() string {
	return "color"
}

// RGB returns the red, green and blue components.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

type Config struct {
	Hz            int     // Instructions per second
	Scale         int     // Window pixels per CHIP-8 pixel
	Foreground    Color   // Lit pixel color
	Background    Color   // Unlit pixel color
	SoundEnabled  bool    // Play the tone while the sound timer runs
	Volume        float64 // 0..1
	BeepFrequency int     // Tone frequency in Hz
	ROMFolder     string  // Where the ROM dialog starts
	Seed          uint64  // RND seed, 0 picks one from the clock
}

func Default() Config {
	return Config{
		Hz:            vm.DefaultHz,
		Scale:         16,
		Foreground:    0xFFFFFF,
		Background:    0x000000,
		SoundEnabled:  true,
		Volume:        1.0,
		BeepFrequency: 440,
	}
}

// BindFlags registers the options on fs, using the current values as
// defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.Hz, "hz", c.Hz, "instructions executed per second")
	fs.IntVar(&c.Scale, "scale", c.Scale, "window pixels per CHIP-8 pixel")
	fs.Var(&c.Foreground, "fg", "foreground color (#rrggbb)")
	fs.Var(&c.Background, "bg", "background color (#rrggbb)")
	fs.BoolVar(&c.SoundEnabled, "sound", c.SoundEnabled, "play the beep tone")
	fs.Float64Var(&c.Volume, "volume", c.Volume, "beep volume between 0 and 1")
	fs.IntVar(&c.BeepFrequency, "beep-frequency", c.BeepFrequency, "beep tone frequency in Hz")
	fs.StringVar(&c.ROMFolder, "rom-folder", c.ROMFolder, "folder the ROM dialog starts in")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed, 0 uses the clock")
}

func (c *Config) Validate() error {
	if c.Hz <= 0 {
		return fmt.Errorf("hz must be positive, got %d", c.Hz)
	}

	if c.Scale <= 0 || c.Scale > 64 {
		return fmt.Errorf("scale must be within 1..64, got %d", c.Scale)
	}

	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be within 0..1, got %v", c.Volume)
	}

	if c.BeepFrequency < 20 || c.BeepFrequency > 20000 {
		return fmt.Errorf("beep frequency must be within 20..20000, got %d", c.BeepFrequency)
	}

	return nil
}
