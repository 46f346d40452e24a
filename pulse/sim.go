package pulse

import (
	"sync"
	"sync/atomic"
	"time"
)

// SimConfig configures a simulated engine.
type SimConfig struct {
	// SourceClock is the clock feeding the divider in Hz. Defaults to APBClock.
	SourceClock uint32
	// Realtime makes the engine take as long as the wire would, sleeping once
	// per drained bank.
	Realtime bool
	// DropEnd swallows EventEnd, as if the end interrupt were lost.
	DropEnd bool
	// MaxItems bounds a single transmission; memory without an end marker
	// would otherwise loop forever. Defaults to 1<<20.
	MaxItems int
	// History is how many finished pulse trains are kept. Defaults to 64.
	History int
}

// Sim is a software pulse engine. It drains its memory on a goroutine after
// Start, wrapping around at the end of memory, raises EventThreshold every
// TxLimit Items and EventEnd at the first end marker, and records every pulse
// train it sends.
type Sim struct {
	simcfg SimConfig

	mu      sync.Mutex
	cfg     Config
	mem     []Item
	intr    *simInterrupt
	running bool
	stop    chan struct{}
	exited  chan struct{}
	trains  [][]Item
	starts  int
	aborts  int
}

var _ Engine = (*Sim)(nil)

// NewSim returns an unconfigured simulated engine.
func NewSim(simcfg SimConfig) *Sim {
	if simcfg.SourceClock == 0 {
		simcfg.SourceClock = APBClock
	}
	if simcfg.MaxItems <= 0 {
		simcfg.MaxItems = 1 << 20
	}
	if simcfg.History <= 0 {
		simcfg.History = 64
	}
	return &Sim{simcfg: simcfg}
}

// Configure implements Engine. It clears the channel memory.
func (s *Sim) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrBusy
	}
	s.cfg = cfg
	s.mem = make([]Item, cfg.MemItems())
	return nil
}

// Config returns the register image last applied.
func (s *Sim) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Bank implements Engine. It returns nil before Configure.
func (s *Sim) Bank(half int) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mem == nil || half < 0 || half > 1 {
		return nil
	}
	n := s.cfg.TxLimit()
	return s.mem[half*n : (half+1)*n : (half+1)*n]
}

// Start implements Engine. Starting an unconfigured or busy engine does nothing,
// as setting the start bit of a running channel does on hardware.
func (s *Sim) Start() {
	s.mu.Lock()
	if s.mem == nil || s.running {
		s.mu.Unlock()
		return
	}
	setBitPos(&s.cfg.Conf1, _CONF1_MEM_RD_RST_Pos, true)
	setBitPos(&s.cfg.Conf1, _CONF1_TX_START_Pos, true)
	s.running = true
	s.starts++
	s.stop = make(chan struct{})
	s.exited = make(chan struct{})
	go s.run(s.cfg, s.mem, s.intr, s.stop, s.exited)
	s.mu.Unlock()
}

// Stop implements Engine. It waits for the transmit goroutine, including any
// interrupt handler it is running, to return.
func (s *Sim) Stop() {
	s.mu.Lock()
	exited := s.exited
	if s.running {
		select {
		case <-s.stop:
		default:
			close(s.stop)
		}
	}
	s.mu.Unlock()
	if exited != nil {
		<-exited
	}
}

func (s *Sim) run(cfg Config, mem []Item, intr *simInterrupt, stop <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	limit := cfg.TxLimit()
	tick := TickPeriod(s.simcfg.SourceClock, cfg.ClkDiv())
	var (
		train   []Item
		pending uint32 // ticks sent but not yet slept
		rd      int
		ended   bool
	)
	for sent := 0; sent < s.simcfg.MaxItems; {
		select {
		case <-stop:
			s.finish(nil, true)
			return
		default:
		}
		it := mem[rd]
		if it.IsEnd() {
			ended = true
			break
		}
		train = append(train, it)
		pending += it.Ticks()
		sent++
		rd = (rd + 1) % len(mem)
		if sent%limit == 0 {
			s.sleep(pending, tick)
			pending = 0
			intr.fire(EventThreshold)
		}
	}
	s.sleep(pending, tick)
	s.finish(train, false)
	if ended && !s.simcfg.DropEnd {
		intr.fire(EventEnd)
	}
}

func (s *Sim) sleep(ticks uint32, tick float64) {
	if !s.simcfg.Realtime || ticks == 0 {
		return
	}
	time.Sleep(time.Duration(float64(ticks) * tick))
}

func (s *Sim) finish(train []Item, aborted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	setBitPos(&s.cfg.Conf1, _CONF1_TX_START_Pos, false)
	setBitPos(&s.cfg.Conf1, _CONF1_MEM_RD_RST_Pos, false)
	if aborted {
		s.aborts++
		return
	}
	s.trains = append(s.trains, train)
	if over := len(s.trains) - s.simcfg.History; over > 0 {
		s.trains = append(s.trains[:0], s.trains[over:]...)
	}
}

// AllocInterrupt implements Engine. The Sim has a single interrupt source.
func (s *Sim) AllocInterrupt(handler func(Event)) (Interrupt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.intr != nil {
		return nil, ErrInterruptInUse
	}
	s.intr = &simInterrupt{sim: s, handler: handler}
	return s.intr, nil
}

// InterruptAllocated reports whether an interrupt handler is registered.
func (s *Sim) InterruptAllocated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intr != nil
}

// Running reports whether a transmission is in flight.
func (s *Sim) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Starts returns how many transmissions have been started.
func (s *Sim) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// Aborts returns how many transmissions were cut short by Stop.
func (s *Sim) Aborts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborts
}

// Trains returns copies of the recorded pulse trains, oldest first.
func (s *Sim) Trains() [][]Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Item, len(s.trains))
	for i, t := range s.trains {
		out[i] = append([]Item(nil), t...)
	}
	return out
}

// Frames decodes every recorded pulse train back into bytes.
func (s *Sim) Frames(codes BitCodes) ([][]byte, error) {
	trains := s.Trains()
	frames := make([][]byte, 0, len(trains))
	for _, t := range trains {
		b, err := Decode(t, codes)
		if err != nil {
			return frames, err
		}
		frames = append(frames, b)
	}
	return frames, nil
}

// Reset forgets recorded trains and counters.
func (s *Sim) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trains = nil
	s.starts = 0
	s.aborts = 0
}

type simInterrupt struct {
	sim     *Sim
	handler func(Event)
	enabled atomic.Bool
}

func (in *simInterrupt) Enable()  { in.enabled.Store(true) }
func (in *simInterrupt) Disable() { in.enabled.Store(false) }

func (in *simInterrupt) Free() error {
	in.sim.mu.Lock()
	defer in.sim.mu.Unlock()
	if in.sim.intr != in {
		return errFreed
	}
	in.enabled.Store(false)
	in.sim.intr = nil
	return nil
}

func (in *simInterrupt) fire(ev Event) {
	if in == nil || !in.enabled.Load() {
		return
	}
	in.handler(ev)
}
