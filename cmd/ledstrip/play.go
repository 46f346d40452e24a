package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/tinygo-org/ledstrip/internal/config"
	"github.com/tinygo-org/ledstrip/internal/events"
	"github.com/tinygo-org/ledstrip/internal/logging"
	"github.com/tinygo-org/ledstrip/internal/metrics"
	"github.com/tinygo-org/ledstrip/pulse"
	"github.com/tinygo-org/ledstrip/ws2812"
)

type playOptions struct {
	duration    time.Duration
	watch       bool
	metricsAddr string
	realtime    bool
	hex         bool
}

func newPlayCmd() *cobra.Command {
	var opts playOptions
	cmd := &cobra.Command{
		Use:   "play PROGRAM.toml",
		Short: "Run an animation program on a simulated strip",
		Long: `Play applies the program to a strip driven by the simulated pulse engine and
draws every frame that reaches the wire. It returns once every animation has
finished, after --duration, or on interrupt. With --watch it keeps running and
re-applies the program whenever the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return play(ctx, cmd, args[0], opts)
		},
	}
	opts.bind(cmd.Flags())
	return cmd
}

func (opts *playOptions) bind(f *pflag.FlagSet) {
	f.DurationVarP(&opts.duration, "duration", "d", 0, "stop after this long (0 runs until done)")
	f.BoolVarP(&opts.watch, "watch", "w", false, "reload the program when the file changes")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.BoolVar(&opts.realtime, "realtime", false, "make the simulated engine take as long as the wire")
	f.BoolVar(&opts.hex, "hex", false, "print frames as hex colors instead of color blocks")
}

func play(ctx context.Context, cmd *cobra.Command, path string, opts playOptions) error {
	prog, err := config.Load(path)
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), prog.Logging)
	ws2812.SetLogger(logger)
	defer ws2812.SetLogger(nil)

	bus := events.New()
	observers := ws2812.Observers{bus}
	var collector *metrics.Collector
	if opts.metricsAddr != "" {
		collector = metrics.New(prog.Strip.LEDs)
		observers = append(observers, collector)
	}

	out := cmd.OutOrStdout()
	draw := renderFrame
	if opts.hex {
		draw = renderHex
	}
	frames := make(chan []ws2812.Color, 64)
	defer bus.Subscribe(func(e events.FrameSentEvent) {
		if e.Err != nil {
			return
		}
		select {
		case frames <- e.Colors:
		default:
			logger.Debug("Dropped frame from display")
		}
	})()
	defer bus.Subscribe(func(e events.AnimationDoneEvent) {
		logger.Info("Animation finished", "led", e.LED, "mode", e.Mode)
	})()

	sim := pulse.NewSim(pulse.SimConfig{Realtime: opts.realtime})
	strip, err := ws2812.New(sim, prog.StripConfig(), ws2812.WithObserver(observers))
	if err != nil {
		return err
	}
	defer strip.Close()
	if err := applyProgram(strip, prog); err != nil {
		return err
	}

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case colors := <-frames:
				draw(out, colors)
			}
		}
	})
	switch {
	case opts.watch:
		w := config.NewWatcher(path, config.Load, logger)
		w.OnReload(func(p *config.Program) {
			if err := applyProgram(strip, p); err != nil {
				logger.Warn("Program not applied", "path", path, "error", err)
				return
			}
			logger.Info("Program reloaded", "path", path)
		})
		g.Go(func() error { return w.Run(ctx) })
	case opts.duration == 0:
		g.Go(func() error { return waitIdle(ctx, strip, prog.StripConfig().Interval) })
	}
	if collector != nil {
		serveMetrics(ctx, g, opts.metricsAddr, collector, logger)
	}
	err = g.Wait()
	if errors.Is(err, errIdle) {
		err = nil
	}
	err = errors.Join(err, strip.Close())
	// Events are delivered asynchronously; draw what is still on its way.
	for {
		select {
		case colors := <-frames:
			draw(out, colors)
		case <-time.After(drainQuiet):
			return err
		}
	}
}

const drainQuiet = 50 * time.Millisecond

func applyProgram(strip *ws2812.Strip, p *config.Program) error {
	if p.Strip.LEDs != strip.NumLEDs() {
		return fmt.Errorf("program has %d LEDs, strip has %d", p.Strip.LEDs, strip.NumLEDs())
	}
	cfgs, err := p.LEDConfigs()
	if err != nil {
		return err
	}
	return strip.Apply(cfgs)
}

// errIdle ends the run group once the strip has nothing left to animate.
var errIdle = errors.New("strip idle")

func waitIdle(ctx context.Context, strip *ws2812.Strip, interval time.Duration) error {
	if interval <= 0 {
		interval = ws2812.DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
		idle := true
		for i := 0; i < strip.NumLEDs() && idle; i++ {
			idle = !strip.Animating(i)
		}
		if idle {
			return errIdle
		}
	}
}

func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, c *metrics.Collector, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	g.Go(func() error {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
