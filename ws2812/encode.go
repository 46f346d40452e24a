package ws2812

import (
	"github.com/tinygo-org/ledstrip/pulse"
)

// WS2812 bit timing in nanoseconds.
// https://cdn-shop.adafruit.com/datasheets/WS2812B.pdf
const (
	t0h    = 350
	t0l    = 900
	t1h    = 900
	t1l    = 350
	tReset = 50_000
	// Engine tick length. Every phase above is a whole number of ticks.
	resolution = 50
)

// newBitCodes computes the descriptors for logical 0 and 1 and the reset gap
// for an engine clocked at srcClock through divider div.
func newBitCodes(srcClock, div uint32) (codes pulse.BitCodes, err error) {
	var d [5]uint16
	for i, ns := range [5]uint32{t0h, t0l, t1h, t1l, tReset} {
		d[i], err = pulse.TicksFromPeriod(ns, srcClock, div)
		if err != nil {
			return codes, err
		}
	}
	return pulse.BitCodes{
		Zero:  pulse.MakeItem(d[0], true, d[1], false),
		One:   pulse.MakeItem(d[2], true, d[3], false),
		Reset: d[4],
	}, nil
}

// encodeBank fills dst with the descriptors for as many bytes of buf,
// starting at pos, as fit in len(dst)/8 bits, most significant bit first. The
// last bit of the last byte of buf carries the reset gap. Unused slots are
// zeroed, which the engine reads as the end of the frame. It returns the
// number of bytes consumed; zero means buf is exhausted and dst is all zero.
func encodeBank(dst []pulse.Item, buf []byte, pos int, codes pulse.BitCodes) int {
	n := len(buf) - pos
	if n < 0 {
		n = 0
	}
	n = min(n, len(dst)/8)
	for i := 0; i < n; i++ {
		v := buf[pos+i]
		items := dst[i*8 : i*8+8]
		for j := range items {
			items[j] = codes.Code(v&0x80 != 0)
			v <<= 1
		}
		if pos+i == len(buf)-1 {
			items[7] = items[7].WithDuration1(codes.Reset)
		}
	}
	clear(dst[n*8:])
	return n
}
