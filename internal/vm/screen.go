package vm

const (
	ScreenWidth  = 64
	ScreenHeight = 32

	spriteWidth = 8
)

// Screen is the 64x32 monochrome plane. Every cell holds 0 or 1.
type Screen struct {
	gfx [ScreenWidth * ScreenHeight]uint8
}

func (s *Screen) Width() int {
	return ScreenWidth
}

func (s *Screen) Height() int {
	return ScreenHeight
}

// Pixel returns the value at (x, y), or 0 outside the plane.
func (s *Screen) Pixel(x, y int) uint8 {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return 0
	}
	return s.gfx[x+y*ScreenWidth]
}

// Pixels returns the plane in row-major order. The slice aliases the screen
// and must not be modified.
func (s *Screen) Pixels() []uint8 {
	return s.gfx[:]
}

func (s *Screen) Clear() {
	s.gfx = [ScreenWidth * ScreenHeight]uint8{}
}

// Draw XORs the sprite rows onto the plane at (x, y). The origin wraps
// around the plane, the sprite body is clipped at the right and bottom
// edges. It reports whether any lit pixel was turned off.
func (s *Screen) Draw(x, y uint8, rows []uint8) bool {
	startX := int(x) % ScreenWidth
	startY := int(y) % ScreenHeight

	collision := false
	for row, bits := range rows {
		yCoord := startY + row
		if yCoord >= ScreenHeight {
			break
		}

		for col := 0; col < spriteWidth; col++ {
			xCoord := startX + col
			if xCoord >= ScreenWidth {
				break
			}

			if bits&(0x80>>col) == 0 {
				continue
			}

			i := xCoord + yCoord*ScreenWidth
			if s.gfx[i] == 1 {
				collision = true
			}
			s.gfx[i] ^= 1
		}
	}

	return collision
}

// String renders the plane with '#' for lit and '.' for unlit pixels.
func (s *Screen) String() string {
	buf := make([]byte, 0, (ScreenWidth+1)*ScreenHeight)
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			if s.gfx[x+y*ScreenWidth] != 0 {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
