// Package config loads animation programs for the ledstrip command.
//
// A program is a TOML file:
//
//	[strip]
//	pin = 18
//	leds = 8
//	timeout_ms = 100
//
//	[logging]
//	level = "debug"
//
//	[[led]]
//	color = "#ff0000"
//	mode = "blink"
//	time_on_ms = 200
//	time_off_ms = 300
//	loop = 5
//
// LEDs are listed in strip order; LEDs past the last [[led]] entry are turned
// off.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"github.com/tinygo-org/ledstrip/internal/logging"
	"github.com/tinygo-org/ledstrip/ws2812"
)

// EnvPrefix prefixes environment variables that override program scalars.
const EnvPrefix = "LEDSTRIP_"

var errNoLEDs = errors.New("config: strip.leds must be positive")

// Program is a parsed program file.
type Program struct {
	Strip   Strip          `toml:"strip"`
	Logging logging.Config `toml:"logging"`
	LEDs    []LED          `toml:"led"`
}

// Strip is the [strip] table.
type Strip struct {
	Pin        uint8 `toml:"pin"`
	LEDs       int   `toml:"leds"`
	TimeoutMS  int   `toml:"timeout_ms"`
	IntervalMS int   `toml:"interval_ms"`
}

// LED is one [[led]] entry.
type LED struct {
	Color     string `toml:"color"`
	Mode      string `toml:"mode"`
	TimeOnMS  int    `toml:"time_on_ms"`
	TimeOffMS int    `toml:"time_off_ms"`
	Loop      uint32 `toml:"loop"`
}

// Load reads the program at path, applies environment overrides and checks
// it.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a program, applies environment overrides and checks it.
func Parse(data []byte) (*Program, error) {
	var p Program
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := p.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if _, err := p.LEDConfigs(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Program) applyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"LEDS", &p.Strip.LEDs},
		{"TIMEOUT_MS", &p.Strip.TimeoutMS},
		{"INTERVAL_MS", &p.Strip.IntervalMS},
	}
	for _, e := range ints {
		v, ok := lookup(EnvPrefix + e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, e.key, err)
		}
		*e.dst = n
	}
	if v, ok := lookup(EnvPrefix + "PIN"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 8)
		if err != nil {
			return fmt.Errorf("config: %sPIN: %w", EnvPrefix, err)
		}
		p.Strip.Pin = uint8(n)
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		p.Logging.Level = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok {
		p.Logging.Format = v
	}
	return nil
}

// StripConfig returns the ws2812 configuration of the program.
func (p *Program) StripConfig() ws2812.Config {
	return ws2812.Config{
		Pin:      p.Strip.Pin,
		NumLEDs:  p.Strip.LEDs,
		Timeout:  time.Duration(p.Strip.TimeoutMS) * time.Millisecond,
		Interval: time.Duration(p.Strip.IntervalMS) * time.Millisecond,
	}
}

// LEDConfigs returns one animation per LED of the strip.
func (p *Program) LEDConfigs() ([]ws2812.LEDConfig, error) {
	if p.Strip.LEDs <= 0 {
		return nil, errNoLEDs
	}
	if len(p.LEDs) > p.Strip.LEDs {
		return nil, fmt.Errorf("config: %d [[led]] entries for a strip of %d", len(p.LEDs), p.Strip.LEDs)
	}
	cfgs := make([]ws2812.LEDConfig, p.Strip.LEDs)
	for i, led := range p.LEDs {
		c, err := led.config()
		if err != nil {
			return nil, fmt.Errorf("config: led %d: %w", i, err)
		}
		cfgs[i] = c
	}
	return cfgs, nil
}

func (led LED) config() (ws2812.LEDConfig, error) {
	var cfg ws2812.LEDConfig
	if led.Color != "" {
		c, err := ParseColor(led.Color)
		if err != nil {
			return cfg, err
		}
		cfg.Color = c
	}
	if led.Mode != "" {
		m, err := ws2812.ParseMode(strings.ToLower(led.Mode))
		if err != nil {
			return cfg, fmt.Errorf("%w %q", err, led.Mode)
		}
		cfg.Mode = m
	}
	if led.TimeOnMS < 0 || led.TimeOffMS < 0 {
		return cfg, errors.New("negative phase time")
	}
	cfg.TimeOn = time.Duration(led.TimeOnMS) * time.Millisecond
	cfg.TimeOff = time.Duration(led.TimeOffMS) * time.Millisecond
	cfg.Loop = led.Loop
	return cfg, nil
}

// ParseColor parses a hex color such as "#ff8000", "ff8000" or "#f80".
func ParseColor(s string) (ws2812.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return ws2812.Color{}, err
	}
	r, g, b := c.RGB255()
	return ws2812.Color{R: r, G: g, B: b}, nil
}
