package pulse

import "errors"

// APBClock is the default source clock of the engine in Hz.
const APBClock = 80_000_000

var (
	errPeriodTooLarge = errors.New("pulse: period does not fit in an item phase")
	errPeriodTooSmall = errors.New("pulse: period shorter than one tick")
	errBadDivider     = errors.New("pulse: divider out of range")
)

// TicksFromPeriod converts a period in nanoseconds into engine ticks for a
// channel clocked at srcFreq Hz through divider div (1..256).
func TicksFromPeriod(period, srcFreq, div uint32) (uint16, error) {
	if div == 0 || div > 256 {
		return 0, errBadDivider
	}
	// One tick lasts div/srcFreq seconds, so
	//  ticks = period/1e9 * srcFreq/div
	ticks := uint64(period) * uint64(srcFreq) / (uint64(1e9) * uint64(div))
	if ticks > MaxDuration {
		return 0, errPeriodTooLarge
	} else if ticks == 0 {
		return 0, errPeriodTooSmall
	}
	return uint16(ticks), nil
}

// TickPeriod returns the length of one engine tick in nanoseconds.
func TickPeriod(srcFreq, div uint32) float64 {
	return 1e9 * float64(div) / float64(srcFreq)
}

// ClkDivFromResolution returns the divider that makes one tick last as close
// as possible to resolution nanoseconds without exceeding it.
func ClkDivFromResolution(resolution, srcFreq uint32) (uint8, error) {
	div := uint64(resolution) * uint64(srcFreq) / uint64(1e9)
	if div == 0 || div > 255 {
		return 0, errBadDivider
	}
	return uint8(div), nil
}
