package main

import (
	"fmt"
	"image/color"

	"github.com/spf13/cobra"
	"github.com/tinygo-org/ledstrip/internal/config"
	"github.com/tinygo-org/ledstrip/pulse"
	"github.com/tinygo-org/ledstrip/ws2812"
)

func newEncodeCmd() *cobra.Command {
	var clock uint32
	cmd := &cobra.Command{
		Use:   "encode COLOR...",
		Short: "Print the pulse train sent for a strip showing the given colors",
		Long: `Encode sends one frame through the simulated engine and prints its pulse
train, one byte of eight items per line, as level and duration in ticks.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			colors := make([]ws2812.Color, len(args))
			for i, arg := range args {
				c, err := config.ParseColor(arg)
				if err != nil {
					return fmt.Errorf("color %q: %w", arg, err)
				}
				colors[i] = c
			}
			return encode(cmd, colors, clock)
		},
	}
	cmd.Flags().Uint32Var(&clock, "clock", pulse.APBClock, "engine source clock in Hz")
	return cmd
}

func encode(cmd *cobra.Command, colors []ws2812.Color, clock uint32) error {
	sim := pulse.NewSim(pulse.SimConfig{SourceClock: clock})
	strip, err := ws2812.New(sim, ws2812.Config{NumLEDs: len(colors), SourceClock: clock})
	if err != nil {
		return err
	}
	defer strip.Close()
	for i, c := range colors {
		strip.SetPixel(int16(i), 0, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	}
	if err := strip.Display(); err != nil {
		return err
	}
	// An all black frame is skipped by Display; New already sent it.
	trains := sim.Trains()
	train := trains[len(trains)-1]
	cfg := sim.Config()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "clkdiv %d, %.0f ns/tick, %d items\n",
		cfg.ClkDiv(), pulse.TickPeriod(clock, cfg.ClkDiv()), len(train))
	for i := 0; i < len(train); i += 8 {
		if i%cfg.TxLimit() == 0 {
			fmt.Fprintf(out, "bank %d:\n", i/cfg.TxLimit()%2)
		}
		led, ch := i/24, "GRB"[i/8%3]
		fmt.Fprintf(out, "  led %d %c:", led, ch)
		for _, it := range train[i : i+8] {
			fmt.Fprintf(out, " %v", it)
		}
		fmt.Fprintln(out)
	}
	return nil
}
