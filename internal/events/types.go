package events

import (
	"time"

	"github.com/tinygo-org/ledstrip/ws2812"
)

// Event type constants for kelindar/event.
const (
	TypeFrameSent uint32 = iota + 1
	TypeFrameSkipped
	TypeAnimationDone
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// FrameSentEvent is published after every transmission attempt.
type FrameSentEvent struct {
	// Colors holds the frame in strip order.
	Colors  []ws2812.Color
	Elapsed time.Duration
	Err     error
}

func (e FrameSentEvent) Type() uint32 { return TypeFrameSent }

// FrameSkippedEvent is published when an unchanged frame was not sent.
type FrameSkippedEvent struct{}

func (e FrameSkippedEvent) Type() uint32 { return TypeFrameSkipped }

// AnimationDoneEvent is published when an LED finishes a blink or fade.
type AnimationDoneEvent struct {
	LED  int
	Mode ws2812.Mode
}

func (e AnimationDoneEvent) Type() uint32 { return TypeAnimationDone }
