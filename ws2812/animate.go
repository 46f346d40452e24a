package ws2812

import "time"

// fadeSteps is the number of increments in one fade ramp.
const fadeSteps = 30

// tick is the timer callback.
func (s *Strip) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.step(s.now())
}

// step advances every LED's animation to now. Each LED that changes is
// transmitted on its own. mu must be held.
func (s *Strip) step(now time.Time) {
	for i := range s.states {
		st := &s.states[i]
		switch st.mode {
		case ModeOneShot:
			if st.isOn {
				st.isOn = false
				st.isSet = false
				st.loop = 0
				s.colors[i] = st.color
				s.show(i)
			}
		case ModeBlink:
			s.stepBlink(i, st, now)
		case ModeFade:
			s.stepFade(i, st, now)
		default:
			if st.isSet && !st.warned {
				Logger().Warn("ws2812: invalid animation mode", "led", i, "mode", st.mode)
				st.warned = true
			}
		}
	}
}

// stepBlink alternates the LED between black, shown for TimeOff, and its
// color, shown for TimeOn. isOn is set during the dark phase. The tick after
// the last flash turns the LED off.
func (s *Strip) stepBlink(i int, st *ledState, now time.Time) {
	if !st.isSet {
		return
	}
	if st.loop == 0 {
		s.finish(i, st)
		return
	}
	elapsed := now.Sub(st.tick)
	switch {
	case st.isOn && elapsed >= st.timeOff:
		st.loop--
		st.isOn = false
		st.tick = now
		s.colors[i] = st.color
		s.show(i)
	case !st.isOn && elapsed >= st.timeOn:
		st.isOn = true
		st.tick = now
		s.colors[i] = Black
		s.show(i)
	}
}

// stepFade ramps the LED down towards black while isOn is set and back up to
// its color otherwise, one fadeSteps-th of the color per increment. A loop
// ends when a ramp down completes.
func (s *Strip) stepFade(i int, st *ledState, now time.Time) {
	if !st.isSet {
		return
	}
	if st.loop == 0 {
		s.finish(i, st)
		return
	}
	elapsed := now.Sub(st.tick)
	step := fadeStep(st.color)
	cur := s.colors[i]
	if st.isOn {
		if elapsed < rampPeriod(st.timeOn) {
			return
		}
		st.tick = now
		cur = Color{
			R: rampDown(cur.R, step.R),
			G: rampDown(cur.G, step.G),
			B: rampDown(cur.B, step.B),
		}
		s.colors[i] = cur
		if nearZero(cur.R, step.R) && nearZero(cur.G, step.G) && nearZero(cur.B, step.B) {
			st.isOn = false
			st.loop--
		}
	} else {
		if elapsed < rampPeriod(st.timeOff) {
			return
		}
		st.tick = now
		cur = Color{
			R: rampUp(cur.R, step.R, st.color.R),
			G: rampUp(cur.G, step.G, st.color.G),
			B: rampUp(cur.B, step.B, st.color.B),
		}
		s.colors[i] = cur
		if nearTarget(cur.R, step.R, st.color.R) && nearTarget(cur.G, step.G, st.color.G) && nearTarget(cur.B, step.B, st.color.B) {
			st.isOn = true
		}
	}
	s.show(i)
}

// finish shows black on LED i and ends its animation.
func (s *Strip) finish(i int, st *ledState) {
	st.isSet = false
	s.colors[i] = Black
	s.show(i)
	s.obs.AnimationDone(i, st.mode)
}

func (s *Strip) show(i int) {
	if err := s.transmit(false); err != nil {
		Logger().Error("ws2812: transmit failed", "led", i, "err", err)
	}
}

func fadeStep(c Color) Color {
	return Color{R: c.R / fadeSteps, G: c.G / fadeSteps, B: c.B / fadeSteps}
}

// rampPeriod is the time between two increments of a ramp lasting d.
func rampPeriod(d time.Duration) time.Duration {
	return time.Duration(d.Milliseconds()/fadeSteps) * time.Millisecond
}

func rampDown(v, step uint8) uint8 {
	if v <= step {
		return 0
	}
	return v - step
}

func rampUp(v, step, target uint8) uint8 {
	if v >= target {
		return v
	}
	if target-v <= step {
		return target
	}
	return v + step
}

// A channel with a zero step never moves, so it counts as done.
func nearZero(v, step uint8) bool { return step == 0 || v <= step }

func nearTarget(v, step, target uint8) bool {
	return step == 0 || v >= target || target-v <= step
}
