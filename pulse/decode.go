package pulse

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedTrain is returned by Decode for pulse trains that are not a
// whole number of bytes encoded with the given BitCodes.
var ErrMalformedTrain = errors.New("pulse: malformed pulse train")

// Decode reverses NRZ encoding of a complete pulse train: each Item is one
// bit, most significant bit first, and the last Item must hold the frame's
// reset gap in its second phase. Durations are accepted within 25% of the
// expected tick counts.
func Decode(train []Item, codes BitCodes) ([]byte, error) {
	if len(train) == 0 || len(train)%8 != 0 {
		return nil, fmt.Errorf("%w: %d items is not a whole number of bytes", ErrMalformedTrain, len(train))
	}
	out := make([]byte, len(train)/8)
	last := len(train) - 1
	for i, it := range train {
		bit, ok := codes.classify(it, i == last)
		if !ok {
			return nil, fmt.Errorf("%w: item %d (%v) matches no bit code", ErrMalformedTrain, i, it)
		}
		if bit {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	if gap := train[last].Duration1(); gap < codes.Reset {
		return nil, fmt.Errorf("%w: reset gap of %d ticks, want at least %d", ErrMalformedTrain, gap, codes.Reset)
	}
	return out, nil
}

func (bc BitCodes) classify(it Item, last bool) (bit, ok bool) {
	for _, bit := range [2]bool{false, true} {
		code := bc.Code(bit)
		if it.Level0() != code.Level0() || it.Level1() != code.Level1() {
			continue
		}
		if !near(it.Duration0(), code.Duration0()) {
			continue
		}
		if last || near(it.Duration1(), code.Duration1()) {
			return bit, true
		}
	}
	return false, false
}

func near(got, want uint16) bool {
	tol := want / 4
	return got+tol >= want && got <= want+tol
}

// String formats the Item as its two phases, e.g. "H18 L7".
func (it Item) String() string {
	return phase(it.Level0(), it.Duration0()) + " " + phase(it.Level1(), it.Duration1())
}

func phase(level bool, d uint16) string {
	if level {
		return "H" + strconv.Itoa(int(d))
	}
	return "L" + strconv.Itoa(int(d))
}
