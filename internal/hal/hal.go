package hal

import (
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"github.com/kapitanov/chipate/internal/config"
	"github.com/kapitanov/chipate/internal/emulator"
	"github.com/kapitanov/chipate/internal/vm"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	borderPixels = 1
	frameTime    = time.Second / vm.TimerHz
)

type HAL struct {
	window          *sdl.Window
	renderer        *sdl.Renderer
	texture         *sdl.Texture
	backBuffer      []uint32
	backBufferPitch int

	fgColor     uint32
	bgColor     uint32
	borderColor config.Color

	beeper *beeper

	lastFrame time.Time
}

var _ emulator.HAL = (*HAL)(nil)

func New(cfg config.Config, title string) (*HAL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to init sdl: %w", err)
	}

	width := int32((vm.ScreenWidth + 2*borderPixels) * cfg.Scale)
	height := int32((vm.ScreenHeight + 2*borderPixels) * cfg.Scale)

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, width, height, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl window: %w", err)
	}
	slog.Debug("hal: create window", "width", width, "height", height)

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl renderer: %w", err)
	}
	err = renderer.SetLogicalSize(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to resize sdl renderer: %w", err)
	}
	slog.Debug("hal: create renderer")

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, vm.ScreenWidth, vm.ScreenHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl texture: %w", err)
	}
	slog.Debug("hal: create texture")

	h := &HAL{
		window:          window,
		renderer:        renderer,
		texture:         texture,
		backBuffer:      make([]uint32, vm.ScreenWidth*vm.ScreenHeight),
		backBufferPitch: int(vm.ScreenWidth) * int(unsafe.Sizeof(uint32(0))),
		fgColor:         argb(cfg.Foreground),
		bgColor:         argb(cfg.Background),
		borderColor:     cfg.Background ^ 0x202020,
		lastFrame:       time.Now(),
	}

	if cfg.SoundEnabled {
		b, err := newBeeper(cfg.BeepFrequency, cfg.Volume)
		if err != nil {
			slog.Error("sound disabled", "err", err)
		} else {
			h.beeper = b
		}
	}

	return h, nil
}

func argb(c config.Color) uint32 {
	return 0xFF000000 | uint32(c)&0xFFFFFF
}

func (hal *HAL) Shutdown() {
	if hal.beeper != nil {
		hal.beeper.Close()
	}

	if err := hal.texture.Destroy(); err != nil {
		slog.Error("failed to destroy sdl texture", "err", err)
	}

	if err := hal.renderer.Destroy(); err != nil {
		slog.Error("failed to destroy sdl renderer", "err", err)
	}

	if err := hal.window.Destroy(); err != nil {
		slog.Error("failed to destroy sdl window", "err", err)
	}

	sdl.Quit()
}

func (hal *HAL) ReadInput(keys *vm.KeyState) error {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e.GetType() {
		case sdl.QUIT:
			slog.Debug("hal: exit requested")
			return emulator.ErrQuit

		case sdl.KEYDOWN:
			err := hal.processKeyDown(e.(*sdl.KeyboardEvent), keys)
			if err != nil {
				return err
			}

		case sdl.KEYUP:
			hal.processKeyUp(e.(*sdl.KeyboardEvent), keys)
		}
	}

	return nil
}

func (hal *HAL) processKeyDown(e *sdl.KeyboardEvent, keys *vm.KeyState) error {
	switch e.Keysym.Scancode {
	case sdl.SCANCODE_BACKSPACE:
		slog.Debug("hal: reboot requested")
		*keys = vm.KeyState{}
		return emulator.ErrReboot
	case sdl.SCANCODE_ESCAPE:
		slog.Debug("hal: exit requested")
		return emulator.ErrQuit
	}

	key, ok := keyMap(e)
	if ok {
		keys[key] = true
	}

	return nil
}

func (hal *HAL) processKeyUp(e *sdl.KeyboardEvent, keys *vm.KeyState) {
	key, ok := keyMap(e)
	if ok {
		keys[key] = false
	}
}

func keyMap(e *sdl.KeyboardEvent) (vm.Key, bool) {
	// Physical                Logical
	// ================        =================
	// | 1 | 2 | 3 | 4 |       | 1 | 2 | 3 | C |
	// | q | w | e | r |       | 4 | 5 | 6 | D |
	// | a | s | d | f |  <=>  | 7 | 8 | 9 | E |
	// | z | x | c | v |       | A | 0 | B | F |
	// ================        =================

	switch e.Keysym.Scancode {
	case sdl.SCANCODE_X:
		return vm.Key0, true
	case sdl.SCANCODE_1:
		return vm.Key1, true
	case sdl.SCANCODE_2:
		return vm.Key2, true
	case sdl.SCANCODE_3:
		return vm.Key3, true
	case sdl.SCANCODE_Q:
		return vm.Key4, true
	case sdl.SCANCODE_W:
		return vm.Key5, true
	case sdl.SCANCODE_E:
		return vm.Key6, true
	case sdl.SCANCODE_A:
		return vm.Key7, true
	case sdl.SCANCODE_S:
		return vm.Key8, true
	case sdl.SCANCODE_D:
		return vm.Key9, true
	case sdl.SCANCODE_Z:
		return vm.KeyA, true
	case sdl.SCANCODE_C:
		return vm.KeyB, true
	case sdl.SCANCODE_4:
		return vm.KeyC, true
	case sdl.SCANCODE_R:
		return vm.KeyD, true
	case sdl.SCANCODE_F:
		return vm.KeyE, true
	case sdl.SCANCODE_V:
		return vm.KeyF, true
	default:
		return 0, false
	}
}

func (hal *HAL) Draw(screen *vm.Screen) error {
	gfx := screen.Pixels()
	for i, px := range gfx {
		color := hal.bgColor
		if px != 0 {
			color = hal.fgColor
		}

		hal.backBuffer[i] = color
	}

	backBufferPtr := unsafe.Pointer(&hal.backBuffer[0])
	if err := hal.texture.Update(nil, backBufferPtr, hal.backBufferPitch); err != nil {
		return fmt.Errorf("failed to update sdl texture: %w", err)
	}

	r, g, b := hal.borderColor.RGB()
	if err := hal.renderer.SetDrawColor(r, g, b, 0xFF); err != nil {
		return fmt.Errorf("failed to set sdl draw color: %w", err)
	}

	if err := hal.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear sdl renderer: %w", err)
	}

	w, h := hal.window.GetSize()
	border := w / (vm.ScreenWidth + 2*borderPixels) * borderPixels
	playfield := sdl.Rect{X: border, Y: border, W: w - 2*border, H: h - 2*border}
	if err := hal.renderer.Copy(hal.texture, nil, &playfield); err != nil {
		return fmt.Errorf("failed to copy sdl texture to renderer: %w", err)
	}

	hal.renderer.Present()
	return nil
}

func (hal *HAL) SetTone(on bool) error {
	if hal.beeper == nil {
		return nil
	}
	return hal.beeper.Set(on)
}

// WaitForNextFrame sleeps until one 60 Hz frame has passed since the last
// call and returns the real elapsed time.
func (hal *HAL) WaitForNextFrame() (time.Duration, error) {
	if d := frameTime - time.Since(hal.lastFrame); d > 0 {
		time.Sleep(d)
	}

	now := time.Now()
	elapsed := now.Sub(hal.lastFrame)
	hal.lastFrame = now

	// a stalled host (window drag, debugger) must not turn into a burst
	if elapsed > 4*frameTime {
		elapsed = frameTime
	}

	return elapsed, nil
}
