package telemetry

import (
	"context"
	"io"
	"log/slog"
	"time"
)

type Provider interface {
	// Get returns the latest snapshot or nil when none has been taken yet.
	Get() *Telemetry
}

// Reporter logs snapshots from a Provider at a fixed interval.
type Reporter struct {
	provider Provider
	interval time.Duration
	logger   *slog.Logger
}

func WithLogger(logger *slog.Logger) func(r *Reporter) {
	return func(r *Reporter) {
		r.logger = logger.With(slog.String("component", "telemetry"))
	}
}

func NewReporter(p Provider, interval time.Duration, options ...func(r *Reporter)) *Reporter {
	r := Reporter{
		provider: p,
		interval: interval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(&r)
	}
	return &r
}

// Run reports until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t := r.provider.Get()
			if t == nil || !t.Timestamp.After(last) {
				continue
			}
			last = t.Timestamp
			r.logger.Info("flythrough progress", Attrs(t)...)
		}
	}
}

// Attrs converts a snapshot to log attributes.
func Attrs(t *Telemetry) []any {
	attrs := []any{
		slog.Int("segment", t.Segment),
		slog.Float64("elapsed", t.Elapsed),
		slog.Float64("progress", t.Progress()),
		slog.Float64("x", t.X),
		slog.Float64("y", t.Y),
	}
	if t.Altitude != nil {
		attrs = append(attrs, slog.Float64("altitude", *t.Altitude))
	}
	if c, ok := t.Clearance(); ok {
		attrs = append(attrs, slog.Float64("clearance", c))
	}
	if t.Yaw != nil {
		attrs = append(attrs, slog.Float64("yaw", *t.Yaw))
	}
	if t.GroundSpeed != nil {
		attrs = append(attrs, slog.Float64("groundSpeed", *t.GroundSpeed))
	}
	return attrs
}
