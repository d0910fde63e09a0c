package sqlgen

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sqlgen",
			Name:      "generations_total",
			Help:      "Total number of generator calls",
		},
		[]string{"backend", "mode", "outcome"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sqlgen",
			Name:      "generation_duration_seconds",
			Help:      "Duration of generator calls in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"backend", "mode"},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, generationDuration)
}

type instrumented struct {
	next    Generator
	backend string
}

// Instrument records call counts, outcomes and latency for g. Results and
// errors pass through unchanged.
func Instrument(g Generator, backend string) Generator {
	return &instrumented{next: g, backend: backend}
}

func (i *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	return i.observe(modeGenerate, func() (string, error) { return i.next.Generate(ctx, prompt) })
}

func (i *instrumented) Debug(ctx context.Context, prompt string) (string, error) {
	return i.observe(modeDebug, func() (string, error) { return i.next.Debug(ctx, prompt) })
}

func (i *instrumented) Close() error { return i.next.Close() }

func (i *instrumented) observe(mode string, call func() (string, error)) (string, error) {
	start := time.Now()
	out, err := call()
	dur := time.Since(start)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		logger.Warn().Str("backend", i.backend).Str("mode", mode).Dur("duration", dur).Err(err).Msg(mode + " failed")
	} else {
		logger.Debug().Str("backend", i.backend).Str("mode", mode).Dur("duration", dur).Int("len", len(out)).Msg(mode + " end")
	}
	generationsTotal.WithLabelValues(i.backend, mode, outcome).Inc()
	generationDuration.WithLabelValues(i.backend, mode).Observe(dur.Seconds())
	return out, err
}
