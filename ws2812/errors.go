package ws2812

import (
	"errors"
	"time"
)

// Strip errors.
var (
	ErrInvalidArgument = errors.New("ws2812: invalid argument")
	ErrClosed          = errors.New("ws2812: strip closed")
	ErrTimeout         = errors.New("ws2812: timeout waiting for transmission end")
	ErrTooManyLEDs     = errors.New("ws2812: too many LEDs")

	errUnknownMode  = errors.New("ws2812: unknown mode")
	errTimerRunning = errors.New("ws2812: timer already running")
)

// waitSignal takes the completion signal. A timeout of zero or less waits
// forever.
func waitSignal(done <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-done
		return nil
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return nil
	case <-t.C:
		return ErrTimeout
	}
}
