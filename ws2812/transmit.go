package ws2812

import "bytes"

// transmit puts the strip buffer on the wire and waits for the engine to
// finish. Unless force is set, a frame equal to the last one sent is skipped.
// mu must be held.
func (s *Strip) transmit(force bool) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	frame := s.frame[:0]
	for _, c := range s.colors {
		frame = c.appendGRB(frame)
	}
	if !force && s.lastValid && bytes.Equal(frame, s.last) {
		s.obs.FrameSkipped()
		return nil
	}
	start := s.now()
	err := s.send(frame)
	s.obs.FrameSent(frame, s.now().Sub(start), err)
	if err != nil {
		// The strip may show a partial frame.
		s.lastValid = false
		return err
	}
	copy(s.last, frame)
	s.lastValid = true
	return nil
}

// send hands frame to the feeder for one transmission. txMu must be held.
func (s *Strip) send(frame []byte) error {
	s.feed.load(frame)
	defer s.feed.release()

	// Both banks are primed before the engine starts: it may drain bank 0
	// before the first threshold interrupt is served. A frame that fits in
	// bank 0 leaves bank 1 zeroed.
	s.feed.refill()
	s.feed.refill()
	s.engine.Start()
	if err := waitSignal(s.feed.done, s.cfg.Timeout); err != nil {
		s.engine.Stop()
		return err
	}
	return nil
}
