package ws2812

import (
	"image/color"

	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*Strip)(nil)

// Size returns the strip as a one pixel high display.
func (s *Strip) Size() (x, y int16) {
	return int16(s.cfg.NumLEDs), 1
}

// SetPixel sets LED x to c, cancelling its animation. The change is shown on
// the next Display. Out of range pixels are ignored.
func (s *Strip) SetPixel(x, y int16, c color.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || y != 0 || x < 0 || int(x) >= len(s.colors) {
		return
	}
	s.states[x] = ledState{mode: ModeOneShot}
	s.colors[x] = FromColor(c)
}

// Display transmits the strip buffer.
func (s *Strip) Display() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.transmit(false)
}
