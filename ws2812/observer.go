package ws2812

import "time"

// Observer is notified of strip activity. Calls are made with the strip
// locked, so implementations must return quickly and must not call back into
// the Strip.
type Observer interface {
	// FrameSent is called after every transmission attempt. frame is only
	// valid for the duration of the call.
	FrameSent(frame []byte, elapsed time.Duration, err error)
	// FrameSkipped is called when a frame equal to the one on the wire was
	// not retransmitted.
	FrameSkipped()
	// AnimationDone is called when a blink or fade animation has run all of
	// its loops and the LED has been turned off.
	AnimationDone(led int, mode Mode)
}

// Observers fans notifications out to each of its elements in order.
type Observers []Observer

func (obs Observers) FrameSent(frame []byte, elapsed time.Duration, err error) {
	for _, o := range obs {
		o.FrameSent(frame, elapsed, err)
	}
}

func (obs Observers) FrameSkipped() {
	for _, o := range obs {
		o.FrameSkipped()
	}
}

func (obs Observers) AnimationDone(led int, mode Mode) {
	for _, o := range obs {
		o.AnimationDone(led, mode)
	}
}
