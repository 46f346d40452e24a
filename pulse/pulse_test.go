package pulse

import (
	"errors"
	"testing"
	"time"
)

func TestItemFields(t *testing.T) {
	var tests = []struct {
		d0, d1 uint16
		l0, l1 bool
		want   Item
	}{
		{d0: 7, l0: true, d1: 18, l1: false, want: 0x00128007},
		{d0: 18, l0: true, d1: 7, l1: false, want: 0x00078012},
		{d0: MaxDuration, l0: false, d1: MaxDuration, l1: true, want: 0xffff7fff},
		{want: 0},
	}
	for _, tt := range tests {
		it := MakeItem(tt.d0, tt.l0, tt.d1, tt.l1)
		if it != tt.want {
			t.Errorf("MakeItem(%d,%v,%d,%v) = %#08x, want %#08x", tt.d0, tt.l0, tt.d1, tt.l1, uint32(it), uint32(tt.want))
		}
		if it.Duration0() != tt.d0 || it.Level0() != tt.l0 || it.Duration1() != tt.d1 || it.Level1() != tt.l1 {
			t.Errorf("fields of %#08x: got %d,%v,%d,%v", uint32(it), it.Duration0(), it.Level0(), it.Duration1(), it.Level1())
		}
	}
	it := MakeItem(7, true, 18, false).WithDuration1(1000)
	if it.Duration1() != 1000 || it.Duration0() != 7 || !it.Level0() || it.Level1() {
		t.Errorf("WithDuration1 changed other fields: %v", it)
	}
	if !Item(0).IsEnd() || it.IsEnd() {
		t.Error("IsEnd mismatch")
	}
	if got := it.String(); got != "H7 L1000" {
		t.Errorf("String() = %q", got)
	}
}

func TestTicksFromPeriod(t *testing.T) {
	var tests = []struct {
		period uint32
		want   uint16
	}{
		{350, 7},
		{900, 18},
		{50_000, 1000},
	}
	for _, tt := range tests {
		got, err := TicksFromPeriod(tt.period, APBClock, 4)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("TicksFromPeriod(%d) = %d, want %d", tt.period, got, tt.want)
		}
	}
	if _, err := TicksFromPeriod(10, APBClock, 4); err != errPeriodTooSmall {
		t.Errorf("short period: got %v", err)
	}
	if _, err := TicksFromPeriod(10_000_000, APBClock, 4); err != errPeriodTooLarge {
		t.Errorf("long period: got %v", err)
	}
	if _, err := TicksFromPeriod(350, APBClock, 0); err != errBadDivider {
		t.Errorf("zero divider: got %v", err)
	}
	div, err := ClkDivFromResolution(50, APBClock)
	if err != nil || div != 4 {
		t.Errorf("ClkDivFromResolution(50) = %d, %v", div, err)
	}
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.ClkDiv() != 1 || cfg.TxLimit() != 32 || cfg.MemItems() != 64 || cfg.IdleLevel() {
		t.Errorf("unexpected defaults: div=%d limit=%d items=%d idle=%v", cfg.ClkDiv(), cfg.TxLimit(), cfg.MemItems(), cfg.IdleLevel())
	}
	cfg.SetClkDiv(0)
	if cfg.ClkDiv() != 256 {
		t.Errorf("divider 0 should read back as 256, got %d", cfg.ClkDiv())
	}
	cfg.SetClkDiv(4)
	if cfg.ClkDiv() != 4 {
		t.Errorf("ClkDiv() = %d, want 4", cfg.ClkDiv())
	}
	cfg.SetTxLimit(12)
	if err := cfg.Validate(); err != errBadTxLimit {
		t.Errorf("tx limit 12: got %v", err)
	}
	cfg.SetTxLimit(32)
	cfg.SetMemBlocks(2)
	if err := cfg.Validate(); err != errBadMemBlocks {
		t.Errorf("two blocks with limit 32: got %v", err)
	}
	cfg.SetTxLimit(64)
	if err := cfg.Validate(); err != nil {
		t.Errorf("two blocks with limit 64: %v", err)
	}
}

var testCodes = BitCodes{
	Zero:  MakeItem(7, true, 18, false),
	One:   MakeItem(18, true, 7, false),
	Reset: 1000,
}

func encodeTest(b []byte) []Item {
	var train []Item
	for _, v := range b {
		for j := 0; j < 8; j++ {
			train = append(train, testCodes.Code(v&(0x80>>j) != 0))
		}
	}
	train[len(train)-1] = train[len(train)-1].WithDuration1(testCodes.Reset)
	return train
}

func TestDecode(t *testing.T) {
	want := []byte{0x00, 0xff, 0xa5}
	got, err := Decode(encodeTest(want), testCodes)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("Decode = %x, want %x", got, want)
	}

	noGap := encodeTest(want)
	noGap[len(noGap)-1] = testCodes.One
	if _, err := Decode(noGap, testCodes); !errors.Is(err, ErrMalformedTrain) {
		t.Errorf("missing reset gap: got %v", err)
	}
	if _, err := Decode(noGap[:7], testCodes); !errors.Is(err, ErrMalformedTrain) {
		t.Errorf("partial byte: got %v", err)
	}
	bad := encodeTest(want)
	bad[3] = MakeItem(40, true, 40, false)
	if _, err := Decode(bad, testCodes); !errors.Is(err, ErrMalformedTrain) {
		t.Errorf("unknown code: got %v", err)
	}
}

func newTestSim(t *testing.T, simcfg SimConfig) *Sim {
	t.Helper()
	sim := NewSim(simcfg)
	cfg := DefaultConfig()
	cfg.SetClkDiv(4)
	if err := sim.Configure(cfg); err != nil {
		t.Fatal(err)
	}
	return sim
}

func TestSimSingleBank(t *testing.T) {
	sim := newTestSim(t, SimConfig{})
	train := encodeTest([]byte{0x12, 0x34})
	copy(sim.Bank(0), train)

	events := make(chan Event, 8)
	intr, err := sim.AllocInterrupt(func(ev Event) { events <- ev })
	if err != nil {
		t.Fatal(err)
	}
	intr.Enable()
	if _, err := sim.AllocInterrupt(func(Event) {}); err != ErrInterruptInUse {
		t.Errorf("second AllocInterrupt: got %v", err)
	}

	sim.Start()
	select {
	case ev := <-events:
		if ev != EventEnd {
			t.Fatalf("first event = %v, want end", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no end event")
	}
	frames, err := sim.Frames(testCodes)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 || string(frames[0]) != "\x12\x34" {
		t.Errorf("frames = %x", frames)
	}
	if sim.Starts() != 1 {
		t.Errorf("Starts() = %d", sim.Starts())
	}
	if err := intr.Free(); err != nil {
		t.Fatal(err)
	}
	if err := intr.Free(); err != errFreed {
		t.Errorf("double Free: got %v", err)
	}
	if sim.InterruptAllocated() {
		t.Error("interrupt still allocated after Free")
	}
}

func TestSimThresholdWrap(t *testing.T) {
	sim := newTestSim(t, SimConfig{})
	bank0, bank1 := sim.Bank(0), sim.Bank(1)
	for i := range bank0 {
		bank0[i] = testCodes.One
		bank1[i] = testCodes.Zero
	}
	bank1[len(bank1)-1] = testCodes.Zero.WithDuration1(testCodes.Reset)

	var got []Event
	done := make(chan struct{})
	intr, _ := sim.AllocInterrupt(func(ev Event) {
		got = append(got, ev)
		switch ev {
		case EventThreshold:
			if len(got) == 1 {
				// bank 0 drained, engine is on bank 1: terminate after it.
				clear(bank0)
			}
		case EventEnd:
			close(done)
		}
	})
	intr.Enable()
	sim.Start()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("no end event")
	}
	want := []Event{EventThreshold, EventThreshold, EventEnd}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
	frames, err := sim.Frames(testCodes)
	if err != nil {
		t.Fatal(err)
	}
	want8 := "\xff\xff\xff\xff\x00\x00\x00\x00"
	if len(frames) != 1 || string(frames[0]) != want8 {
		t.Errorf("frames = %x", frames)
	}
}

func TestSimDisabledInterruptAndStop(t *testing.T) {
	sim := newTestSim(t, SimConfig{Realtime: true})
	long := MakeItem(MaxDuration, true, MaxDuration, false)
	for _, bank := range [][]Item{sim.Bank(0), sim.Bank(1)} {
		for i := range bank {
			bank[i] = long
		}
	}
	fired := make(chan Event, 1)
	intr, _ := sim.AllocInterrupt(func(ev Event) { fired <- ev })
	intr.Disable()

	sim.Start()
	if !sim.Running() {
		t.Fatal("engine not running after Start")
	}
	sim.Stop()
	if sim.Running() {
		t.Error("engine running after Stop")
	}
	if sim.Aborts() != 1 {
		t.Errorf("Aborts() = %d, want 1", sim.Aborts())
	}
	select {
	case ev := <-fired:
		t.Errorf("disabled interrupt fired %v", ev)
	default:
	}
	if len(sim.Trains()) != 0 {
		t.Error("aborted transmission recorded a train")
	}
}

func TestSimNotConfigured(t *testing.T) {
	sim := NewSim(SimConfig{})
	if sim.Bank(0) != nil {
		t.Error("Bank before Configure should be nil")
	}
	sim.Start()
	if sim.Starts() != 0 {
		t.Error("unconfigured engine started")
	}
	bad := DefaultConfig()
	bad.SetTxLimit(0)
	if err := sim.Configure(bad); err == nil {
		t.Error("Configure accepted zero tx limit")
	}
}
