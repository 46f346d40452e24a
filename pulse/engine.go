// Package pulse models a two-bank pulse generation engine: a peripheral that
// drains a small memory of timed high/low descriptors onto a pin and raises
// an interrupt each time one half of that memory has been sent, so software
// can refill it while the other half plays.
//
// The package holds the descriptor and register encodings shared by drivers,
// the Engine interface drivers program against, and Sim, a software engine
// used on hosts without the hardware.
package pulse

import "errors"

// Event is a set of interrupt conditions raised by an Engine.
type Event uint8

const (
	// EventThreshold fires every TxLimit Items: one bank has been drained and
	// may be refilled.
	EventThreshold Event = 1 << iota
	// EventEnd fires once the engine reads an end marker and the line has
	// returned to idle.
	EventEnd
)

func (ev Event) String() string {
	switch ev {
	case 0:
		return "none"
	case EventThreshold:
		return "threshold"
	case EventEnd:
		return "end"
	case EventThreshold | EventEnd:
		return "threshold|end"
	}
	return "invalid"
}

// Engine is a pulse generation channel.
//
// Bank memory returned by Bank belongs to the caller between Start calls and
// inside the interrupt handler; the engine only reads it while transmitting.
type Engine interface {
	// Configure applies the register image. It is called once before use.
	Configure(cfg Config) error
	// Bank returns the writable memory of bank half (0 or 1), TxLimit Items long.
	Bank(half int) []Item
	// Start resets the read pointer to the first Item and begins transmission.
	Start()
	// Stop aborts an in-flight transmission and returns once the engine
	// no longer reads bank memory.
	Stop()
	// AllocInterrupt registers handler for the channel's interrupt source.
	// The handler runs in interrupt context and must not block.
	AllocInterrupt(handler func(Event)) (Interrupt, error)
}

// Interrupt is a registered interrupt source.
type Interrupt interface {
	Enable()
	Disable()
	Free() error
}

// Engine errors.
var (
	ErrNotConfigured  = errors.New("pulse: engine not configured")
	ErrInterruptInUse = errors.New("pulse: interrupt already allocated")
	ErrBusy           = errors.New("pulse: engine busy")
	errFreed          = errors.New("pulse: interrupt already freed")
)
