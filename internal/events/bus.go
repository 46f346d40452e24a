// Package events publishes strip activity to in-process subscribers.
package events

import (
	"time"

	"github.com/kelindar/event"
	"github.com/tinygo-org/ledstrip/ws2812"
)

// Bus wraps a kelindar/event dispatcher. It implements ws2812.Observer.
type Bus struct {
	dispatcher *event.Dispatcher
}

var _ ws2812.Observer = (*Bus)(nil)

// New creates a new event bus.
func New() *Bus {
	return &Bus{dispatcher: event.NewDispatcher()}
}

// Publish publishes an event to all subscribers of its type.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case FrameSentEvent:
		event.Publish(b.dispatcher, e)
	case FrameSkippedEvent:
		event.Publish(b.dispatcher, e)
	case AnimationDoneEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type it accepts and returns an
// unsubscribe function. Handlers of unknown types are ignored.
//
//	unsub := bus.Subscribe(func(e AnimationDoneEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(FrameSentEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FrameSkippedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(AnimationDoneEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// FrameSent decodes the wire frame back into colors, since frame is reused
// by the strip once this returns.
func (b *Bus) FrameSent(frame []byte, elapsed time.Duration, err error) {
	colors := make([]ws2812.Color, len(frame)/3)
	for i := range colors {
		g, r, bl := frame[3*i], frame[3*i+1], frame[3*i+2]
		colors[i] = ws2812.Color{R: r, G: g, B: bl}
	}
	b.Publish(FrameSentEvent{Colors: colors, Elapsed: elapsed, Err: err})
}

func (b *Bus) FrameSkipped() {
	b.Publish(FrameSkippedEvent{})
}

func (b *Bus) AnimationDone(led int, mode ws2812.Mode) {
	b.Publish(AnimationDoneEvent{LED: led, Mode: mode})
}
