package ws2812

import (
	"sync"
	"time"
)

// Timer is the periodic timer service that drives animations.
type Timer interface {
	// Start calls fn every interval until Stop. It fails if already running.
	Start(interval time.Duration, fn func()) error
	// Stop halts the timer and returns once no call to fn is in progress.
	Stop()
	Running() bool
}

// Ticker is a Timer backed by a time.Ticker. Calls to fn never overlap; ticks
// that arrive while fn runs are dropped.
type Ticker struct {
	mu   sync.Mutex
	quit chan struct{}
	done chan struct{}
}

// NewTicker returns a stopped Ticker.
func NewTicker() *Ticker { return &Ticker{} }

func (t *Ticker) Start(interval time.Duration, fn func()) error {
	if interval <= 0 || fn == nil {
		return ErrInvalidArgument
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quit != nil {
		return errTimerRunning
	}
	t.quit = make(chan struct{})
	t.done = make(chan struct{})
	go t.loop(interval, fn, t.quit, t.done)
	return nil
}

func (t *Ticker) loop(interval time.Duration, fn func(), quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-quit:
			return
		case <-tk.C:
			fn()
		}
	}
}

func (t *Ticker) Stop() {
	t.mu.Lock()
	quit, done := t.quit, t.done
	t.quit, t.done = nil, nil
	t.mu.Unlock()
	if quit == nil {
		return
	}
	close(quit)
	<-done
}

func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.quit != nil
}
