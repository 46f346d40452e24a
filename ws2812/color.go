package ws2812

import (
	"image/color"
	"strconv"
)

// Color is an 8-bit per channel RGB color. The zero value is black.
type Color struct {
	R, G, B uint8
}

// Black turns an LED off.
var Black = Color{}

// RGB unpacks a 0xRRGGBB value.
func RGB(packed uint32) Color {
	return Color{R: uint8(packed >> 16), G: uint8(packed >> 8), B: uint8(packed)}
}

// Uint32 packs c as 0xRRGGBB.
func (c Color) Uint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// RGBA implements color.Color. LEDs are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// FromColor converts any color.Color, dropping alpha.
func FromColor(c color.Color) Color {
	r16, g16, b16, _ := c.RGBA()
	return Color{R: uint8(r16 >> 8), G: uint8(g16 >> 8), B: uint8(b16 >> 8)}
}

func (c Color) String() string {
	const hex = "0123456789abcdef"
	return "#" + string([]byte{
		hex[c.R>>4], hex[c.R&0xf],
		hex[c.G>>4], hex[c.G&0xf],
		hex[c.B>>4], hex[c.B&0xf],
	})
}

// appendGRB serializes c in WS2812 wire order.
func (c Color) appendGRB(b []byte) []byte {
	return append(b, c.G, c.R, c.B)
}

// Mode selects how an LED animates.
type Mode uint8

const (
	// ModeOneShot shows the color once.
	ModeOneShot Mode = iota
	// ModeBlink alternates the color and black.
	ModeBlink
	// ModeFade ramps between the color and black.
	ModeFade
)

func (m Mode) String() string {
	switch m {
	case ModeOneShot:
		return "one-shot"
	case ModeBlink:
		return "blink"
	case ModeFade:
		return "fade"
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// ParseMode returns the Mode named s, as printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "one-shot":
		return ModeOneShot, nil
	case "blink":
		return ModeBlink, nil
	case "fade":
		return ModeFade, nil
	}
	return 0, errUnknownMode
}
