// Package ws2812 drives a WS2812 RGB LED strip through a two-bank pulse
// engine and animates each LED independently.
//
// A Strip owns the color of every LED and an animation state per LED. Apply
// hands it a new animation for every LED; a periodic tick then advances each
// animation and puts a frame on the wire whenever an LED changes.
package ws2812

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tinygo-org/ledstrip/pulse"
)

const (
	// DefaultInterval is the animation tick period.
	DefaultInterval = 10 * time.Millisecond
	// MaxLEDs bounds the strip length.
	MaxLEDs = 8192
	// Wire time of one LED: 24 bits of 1.25µs.
	ledWireTime = 30 * time.Microsecond
)

// Config is the strip configuration passed to New.
type Config struct {
	// Pin is the GPIO the data line is attached to.
	Pin uint8
	// NumLEDs is the strip length. It cannot change after New.
	NumLEDs int
	// Timeout bounds the wait for the end of a transmission. Zero waits
	// forever.
	Timeout time.Duration
	// Interval is the animation tick period. Defaults to DefaultInterval.
	Interval time.Duration
	// SourceClock is the engine source clock in Hz. Defaults to pulse.APBClock.
	SourceClock uint32
}

// LEDConfig is the animation for one LED.
type LEDConfig struct {
	Color Color
	Mode  Mode
	// TimeOn is how long a blinking LED shows its color, or the ramp-down
	// time of a fade.
	TimeOn time.Duration
	// TimeOff is how long a blinking LED stays dark before each flash, or the
	// ramp-up time of a fade.
	TimeOff time.Duration
	// Loop is the number of blink or fade cycles before the LED turns off.
	Loop uint32
}

// ledState is the animation state of one LED.
type ledState struct {
	color   Color
	mode    Mode
	timeOn  time.Duration
	timeOff time.Duration
	tick    time.Time // last phase transition
	loop    uint32
	isOn    bool
	isSet   bool
	warned  bool
}

// Strip is a WS2812 LED strip. Its methods are safe for concurrent use.
type Strip struct {
	cfg    Config
	engine pulse.Engine
	intr   pulse.Interrupt
	timer  Timer
	obs    Observer
	now    func() time.Time

	mu     sync.Mutex
	colors []Color
	states []ledState
	closed bool

	// txMu guards everything below and is taken after mu.
	txMu  sync.Mutex
	feed  feeder
	frame []byte
	last  []byte
	// lastValid reports whether last is what the strip shows.
	lastValid bool
}

// Option configures a Strip.
type Option func(*Strip)

// WithObserver reports strip activity to o.
func WithObserver(o Observer) Option {
	return func(s *Strip) {
		if o != nil {
			s.obs = o
		}
	}
}

// WithTimer replaces the periodic timer service.
func WithTimer(t Timer) Option {
	return func(s *Strip) { s.timer = t }
}

// WithClock replaces time.Now for animation timing.
func WithClock(now func() time.Time) Option {
	return func(s *Strip) { s.now = now }
}

// New configures engine for WS2812 timing, claims its interrupt and turns
// every LED off. On error nothing is left allocated on the engine.
func New(engine pulse.Engine, cfg Config, opts ...Option) (*Strip, error) {
	if engine == nil || cfg.NumLEDs <= 0 || cfg.Interval < 0 || cfg.Timeout < 0 {
		return nil, ErrInvalidArgument
	}
	if cfg.NumLEDs > MaxLEDs {
		return nil, ErrTooManyLEDs
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.SourceClock == 0 {
		cfg.SourceClock = pulse.APBClock
	}
	div, err := pulse.ClkDivFromResolution(resolution, cfg.SourceClock)
	if err != nil {
		return nil, fmt.Errorf("ws2812: source clock %d Hz: %w", cfg.SourceClock, err)
	}
	codes, err := newBitCodes(cfg.SourceClock, uint32(div))
	if err != nil {
		return nil, fmt.Errorf("ws2812: bit timing: %w", err)
	}
	pcfg := pulse.DefaultConfig()
	pcfg.Pin = cfg.Pin
	pcfg.SetClkDiv(div)
	pcfg.SetIdle(false, true)
	if err := engine.Configure(pcfg); err != nil {
		return nil, fmt.Errorf("ws2812: configure engine: %w", err)
	}

	s := &Strip{
		cfg:    cfg,
		engine: engine,
		obs:    Observers(nil),
		now:    time.Now,
		colors: make([]Color, cfg.NumLEDs),
		states: make([]ledState, cfg.NumLEDs),
		frame:  make([]byte, 0, 3*cfg.NumLEDs),
		last:   make([]byte, 3*cfg.NumLEDs),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timer == nil {
		s.timer = NewTicker()
	}
	s.feed = newFeeder(engine, codes)
	if s.feed.banks[0] == nil || s.feed.banks[1] == nil {
		return nil, fmt.Errorf("ws2812: engine banks: %w", pulse.ErrNotConfigured)
	}
	for _, bank := range s.feed.banks {
		// A bank must hold whole bytes or no frame ever leaves it.
		if len(bank) < 8 || len(bank)%8 != 0 {
			return nil, fmt.Errorf("%w: engine bank of %d items", ErrInvalidArgument, len(bank))
		}
	}
	s.intr, err = engine.AllocInterrupt(s.feed.handleInterrupt)
	if err != nil {
		return nil, fmt.Errorf("ws2812: allocate interrupt: %w", err)
	}
	s.intr.Enable()

	s.mu.Lock()
	err = s.transmit(true)
	s.mu.Unlock()
	if err != nil {
		s.intr.Disable()
		return nil, errors.Join(fmt.Errorf("ws2812: initial frame: %w", err), s.intr.Free())
	}
	if wire := time.Duration(cfg.NumLEDs) * ledWireTime; wire > cfg.Interval {
		Logger().Warn("ws2812: frame wire time exceeds tick interval",
			"leds", cfg.NumLEDs, "wire", wire, "interval", cfg.Interval)
	}
	Logger().Debug("ws2812: strip ready", "pin", cfg.Pin, "leds", cfg.NumLEDs, "clkdiv", div)
	return s, nil
}

// Apply replaces the animation of every LED. cfgs must hold exactly one entry
// per LED. Target colors are written to the strip buffer and shown from the
// next tick on, which Apply starts if the timer is not running.
func (s *Strip) Apply(cfgs []LEDConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(cfgs) != len(s.states) {
		return fmt.Errorf("%w: %d LED configs for %d LEDs", ErrInvalidArgument, len(cfgs), len(s.states))
	}
	now := s.now()
	for i, c := range cfgs {
		s.states[i] = ledState{
			color:   c.Color,
			mode:    c.Mode,
			timeOn:  c.TimeOn,
			timeOff: c.TimeOff,
			tick:    now,
			loop:    c.Loop,
			isOn:    true,
			isSet:   true,
		}
		s.colors[i] = c.Color
	}
	if s.timer.Running() {
		return nil
	}
	err := s.timer.Start(s.cfg.Interval, s.tick)
	if err != nil && !errors.Is(err, errTimerRunning) {
		return fmt.Errorf("ws2812: start timer: %w", err)
	}
	return nil
}

// Stop cancels every animation and turns the strip off. The tick keeps
// running.
func (s *Strip) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.blackout()
	return s.transmit(true)
}

// Close turns the strip off, stops the tick and releases the engine
// interrupt. Further calls return ErrClosed, except Close which returns nil.
func (s *Strip) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.blackout()
	err := s.transmit(true)
	if err != nil {
		err = fmt.Errorf("ws2812: final frame: %w", err)
	}
	s.intr.Disable()
	if ferr := s.intr.Free(); ferr != nil {
		err = errors.Join(err, fmt.Errorf("ws2812: free interrupt: %w", ferr))
	}
	s.colors, s.states = nil, nil
	s.mu.Unlock()

	// A tick blocked on mu sees closed and returns, so this cannot deadlock.
	s.timer.Stop()
	Logger().Debug("ws2812: strip closed", "pin", s.cfg.Pin)
	return err
}

// blackout sets every LED to one-shot black. mu must be held.
func (s *Strip) blackout() {
	for i := range s.states {
		s.states[i] = ledState{mode: ModeOneShot}
	}
	clear(s.colors)
}

// NumLEDs returns the strip length.
func (s *Strip) NumLEDs() int { return s.cfg.NumLEDs }

// Colors returns a copy of the strip buffer. It is nil once closed.
func (s *Strip) Colors() []Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return append([]Color(nil), s.colors...)
}

// Animating reports whether LED i has a blink or fade animation that has not
// finished yet, or a one-shot color not shown yet.
func (s *Strip) Animating(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.states) {
		return false
	}
	return s.states[i].isSet
}
