package pulse

// Item is one pulse descriptor as laid out in engine memory. It describes two
// consecutive output phases, each with a level and a duration in engine ticks.
//
//	 31    | 30..16    | 15     | 14..0
//	level1 | duration1 | level0 | duration0
//
// The engine stops when it reads an Item whose duration0 is zero, which makes
// the zero Item the end marker.
type Item uint32

const (
	_ITEM_DURATION0_Pos = 0
	_ITEM_DURATION0_Msk = 0x7fff << _ITEM_DURATION0_Pos
	_ITEM_LEVEL0_Pos    = 15
	_ITEM_LEVEL0_Msk    = 1 << _ITEM_LEVEL0_Pos
	_ITEM_DURATION1_Pos = 16
	_ITEM_DURATION1_Msk = 0x7fff << _ITEM_DURATION1_Pos
	_ITEM_LEVEL1_Pos    = 31
	_ITEM_LEVEL1_Msk    = 1 << _ITEM_LEVEL1_Pos
)

// MaxDuration is the largest tick count a single phase can hold.
const MaxDuration = 0x7fff

// MakeItem encodes a two-phase pulse descriptor. Durations above MaxDuration
// are truncated to 15 bits.
func MakeItem(duration0 uint16, level0 bool, duration1 uint16, level1 bool) Item {
	return Item(uint32(duration0)<<_ITEM_DURATION0_Pos&_ITEM_DURATION0_Msk |
		boolToBit(level0)<<_ITEM_LEVEL0_Pos |
		uint32(duration1)<<_ITEM_DURATION1_Pos&_ITEM_DURATION1_Msk |
		boolToBit(level1)<<_ITEM_LEVEL1_Pos)
}

func (it Item) Duration0() uint16 {
	return uint16((uint32(it) & _ITEM_DURATION0_Msk) >> _ITEM_DURATION0_Pos)
}

func (it Item) Level0() bool { return uint32(it)&_ITEM_LEVEL0_Msk != 0 }

func (it Item) Duration1() uint16 {
	return uint16((uint32(it) & _ITEM_DURATION1_Msk) >> _ITEM_DURATION1_Pos)
}

func (it Item) Level1() bool { return uint32(it)&_ITEM_LEVEL1_Msk != 0 }

// WithDuration1 returns a copy of it with the second phase lengthened or
// shortened to d ticks.
func (it Item) WithDuration1(d uint16) Item {
	return Item(uint32(it)&^_ITEM_DURATION1_Msk | uint32(d)<<_ITEM_DURATION1_Pos&_ITEM_DURATION1_Msk)
}

// IsEnd reports whether the engine stops transmitting when it reads it.
func (it Item) IsEnd() bool { return it.Duration0() == 0 }

// Ticks returns the total number of engine ticks both phases last.
func (it Item) Ticks() uint32 {
	return uint32(it.Duration0()) + uint32(it.Duration1())
}

// BitCodes holds the descriptors a one-wire NRZ protocol uses for each bit
// value, plus the low time that terminates a frame.
type BitCodes struct {
	Zero  Item
	One   Item
	Reset uint16
}

// Code returns the descriptor for a single bit.
func (bc BitCodes) Code(bit bool) Item {
	if bit {
		return bc.One
	}
	return bc.Zero
}

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
