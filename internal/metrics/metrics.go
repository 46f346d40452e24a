// Package metrics exports strip activity as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tinygo-org/ledstrip/ws2812"
)

const namespace = "ledstrip"

// Collector records strip activity into its own registry. It implements
// ws2812.Observer.
type Collector struct {
	reg *prometheus.Registry

	frames     *prometheus.CounterVec
	skipped    prometheus.Counter
	transmit   prometheus.Histogram
	animations *prometheus.CounterVec
	leds       prometheus.Gauge
}

var _ ws2812.Observer = (*Collector)(nil)

// New returns a Collector for a strip of n LEDs.
func New(n int) *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	c := &Collector{
		reg: reg,
		frames: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strip",
			Name:      "frames_total",
			Help:      "Frames put on the wire, by result",
		}, []string{"result"}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strip",
			Name:      "frames_skipped_total",
			Help:      "Frames not sent because the strip already showed them",
		}),
		transmit: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "strip",
			Name:      "transmit_seconds",
			Help:      "Time from engine start to the end of transmission",
			Buckets:   prometheus.ExponentialBuckets(50e-6, 2, 12),
		}),
		animations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "animation",
			Name:      "completed_total",
			Help:      "Blink and fade animations run to completion, by mode",
		}, []string{"mode"}),
		leds: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "strip",
			Name:      "leds",
			Help:      "Number of LEDs on the strip",
		}),
	}
	c.leds.Set(float64(n))
	return c
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

func (c *Collector) FrameSent(_ []byte, elapsed time.Duration, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ws2812.ErrTimeout):
		result = "timeout"
	case err != nil:
		result = "error"
	}
	c.frames.WithLabelValues(result).Inc()
	if err == nil {
		c.transmit.Observe(elapsed.Seconds())
	}
}

func (c *Collector) FrameSkipped() { c.skipped.Inc() }

func (c *Collector) AnimationDone(_ int, mode ws2812.Mode) {
	c.animations.WithLabelValues(mode.String()).Inc()
}
