package pulse

import "errors"

// Register field positions, following the ESP32 RMT channel layout.
const (
	_CONF0_DIV_CNT_Pos        = 0
	_CONF0_DIV_CNT_Msk        = 0xff << _CONF0_DIV_CNT_Pos
	_CONF0_MEM_SIZE_Pos       = 24
	_CONF0_MEM_SIZE_Msk       = 0xf << _CONF0_MEM_SIZE_Pos
	_CONF0_CARRIER_EN_Pos     = 28
	_CONF0_CARRIER_OUT_LV_Pos = 29

	_CONF1_TX_START_Pos      = 0
	_CONF1_RX_EN_Pos         = 1
	_CONF1_MEM_RD_RST_Pos    = 3
	_CONF1_TX_CONTI_MODE_Pos = 6
	_CONF1_REF_ALWAYS_ON_Pos = 17
	_CONF1_IDLE_OUT_LV_Pos   = 18
	_CONF1_IDLE_OUT_EN_Pos   = 19

	_TX_LIM_Pos = 0
	_TX_LIM_Msk = 0x1ff << _TX_LIM_Pos
)

// BlockItems is the number of Items in one engine memory block.
const BlockItems = 64

var (
	errBadTxLimit   = errors.New("pulse: tx limit must be a non-zero multiple of 8")
	errBadMemBlocks = errors.New("pulse: memory must hold exactly two tx-limit banks")
	errRxEnabled    = errors.New("pulse: channel configured for receive")
)

// DefaultConfig returns the configuration a transmit-only channel starts
// from: divider 1, one memory block split in two 32 item banks, no carrier,
// idle output enabled and driven low.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.SetClkDiv(1)
	cfg.SetMemBlocks(1)
	cfg.SetCarrier(false, true)
	cfg.SetIdle(false, true)
	cfg.SetRefAlwaysOn(true)
	cfg.SetTxLimit(BlockItems / 2)
	return cfg
}

// Config holds the register image for one pulse engine channel.
type Config struct {
	// Clock divider, idle threshold, memory size and carrier settings.
	Conf0 uint32
	// Transmit control and idle output settings.
	Conf1 uint32
	// Number of Items sent before the threshold interrupt fires.
	TxLim uint32
	// Pin is the GPIO the channel output is routed to.
	Pin uint8
}

// SetClkDiv sets the source clock divider. Zero divides by 256.
func (cfg *Config) SetClkDiv(div uint8) {
	cfg.Conf0 = cfg.Conf0&^_CONF0_DIV_CNT_Msk | uint32(div)<<_CONF0_DIV_CNT_Pos
}

// ClkDiv returns the effective source clock divider in the range 1..256.
func (cfg Config) ClkDiv() uint32 {
	div := (cfg.Conf0 & _CONF0_DIV_CNT_Msk) >> _CONF0_DIV_CNT_Pos
	if div == 0 {
		return 256
	}
	return div
}

// SetMemBlocks sets how many BlockItems-sized memory blocks the channel owns.
func (cfg *Config) SetMemBlocks(n uint8) {
	cfg.Conf0 = cfg.Conf0&^_CONF0_MEM_SIZE_Msk | uint32(n)<<_CONF0_MEM_SIZE_Pos&_CONF0_MEM_SIZE_Msk
}

func (cfg Config) MemBlocks() uint8 {
	return uint8((cfg.Conf0 & _CONF0_MEM_SIZE_Msk) >> _CONF0_MEM_SIZE_Pos)
}

// MemItems returns the channel memory size in Items.
func (cfg Config) MemItems() int { return int(cfg.MemBlocks()) * BlockItems }

// SetCarrier enables or disables carrier modulation of the output.
//   - enabled modulates the output with the carrier.
//   - outLevel selects which output level the carrier is added on.
func (cfg *Config) SetCarrier(enabled, outLevel bool) {
	setBitPos(&cfg.Conf0, _CONF0_CARRIER_EN_Pos, enabled)
	setBitPos(&cfg.Conf0, _CONF0_CARRIER_OUT_LV_Pos, outLevel)
}

// SetIdle sets the output level held while the channel is not transmitting.
func (cfg *Config) SetIdle(level, enabled bool) {
	setBitPos(&cfg.Conf1, _CONF1_IDLE_OUT_LV_Pos, level)
	setBitPos(&cfg.Conf1, _CONF1_IDLE_OUT_EN_Pos, enabled)
}

// IdleLevel returns the level driven between transmissions.
func (cfg Config) IdleLevel() bool { return hasBitPos(cfg.Conf1, _CONF1_IDLE_OUT_LV_Pos) }

// SetContinuous makes the channel restart from the first Item after an end
// marker instead of stopping.
func (cfg *Config) SetContinuous(conti bool) {
	setBitPos(&cfg.Conf1, _CONF1_TX_CONTI_MODE_Pos, conti)
}

func (cfg Config) Continuous() bool { return hasBitPos(cfg.Conf1, _CONF1_TX_CONTI_MODE_Pos) }

// SetRefAlwaysOn selects the APB clock as the divider source.
func (cfg *Config) SetRefAlwaysOn(on bool) {
	setBitPos(&cfg.Conf1, _CONF1_REF_ALWAYS_ON_Pos, on)
}

// SetTxLimit sets the number of Items sent between threshold interrupts,
// which is also the size of each refill bank.
func (cfg *Config) SetTxLimit(items uint16) {
	cfg.TxLim = cfg.TxLim&^_TX_LIM_Msk | uint32(items)<<_TX_LIM_Pos&_TX_LIM_Msk
}

func (cfg Config) TxLimit() int { return int((cfg.TxLim & _TX_LIM_Msk) >> _TX_LIM_Pos) }

// Validate checks the configuration can run a double-buffered transmit: the
// memory must split into exactly two banks of TxLimit Items, each holding
// whole bytes.
func (cfg Config) Validate() error {
	limit := cfg.TxLimit()
	if limit == 0 || limit%8 != 0 {
		return errBadTxLimit
	}
	if cfg.MemItems() != 2*limit {
		return errBadMemBlocks
	}
	if hasBitPos(cfg.Conf1, _CONF1_RX_EN_Pos) {
		return errRxEnabled
	}
	return nil
}

func setBitPos(reg *uint32, pos uint32, bit bool) {
	if bit {
		*reg |= 1 << pos
	} else {
		*reg &^= 1 << pos
	}
}

func hasBitPos(reg uint32, pos uint32) bool { return reg&(1<<pos) != 0 }
