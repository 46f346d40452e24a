package ws2812

import "github.com/tinygo-org/ledstrip/pulse"

// feeder keeps the engine's two memory banks filled while a frame plays.
// While a frame is in flight its state is only touched by handleInterrupt.
type feeder struct {
	banks [2][]pulse.Item
	codes pulse.BitCodes
	// done is the single-slot completion signal.
	done chan struct{}

	buf  []byte
	pos  int
	half int
}

func newFeeder(engine pulse.Engine, codes pulse.BitCodes) feeder {
	return feeder{
		banks: [2][]pulse.Item{engine.Bank(0), engine.Bank(1)},
		codes: codes,
		done:  make(chan struct{}, 1),
	}
}

// load takes ownership of buf for one frame and discards any completion left
// over from an aborted frame.
func (f *feeder) load(buf []byte) {
	select {
	case <-f.done:
	default:
	}
	f.buf = buf
	f.pos = 0
	f.half = 0
}

// release hands the frame buffer back.
func (f *feeder) release() { f.buf = nil }

// refill encodes the next chunk of the frame into bank half and flips half.
// It reports false once the frame is exhausted, in which case the bank has
// been zeroed.
func (f *feeder) refill() bool {
	bank := f.banks[f.half]
	f.half ^= 1
	n := encodeBank(bank, f.buf, f.pos, f.codes)
	f.pos += n
	return n > 0
}

// handleInterrupt runs in interrupt context.
func (f *feeder) handleInterrupt(ev pulse.Event) {
	if ev&pulse.EventThreshold != 0 && f.buf != nil {
		f.refill()
	}
	if ev&pulse.EventEnd != 0 {
		select {
		case f.done <- struct{}{}:
		default:
		}
	}
}
