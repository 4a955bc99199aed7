package render

import (
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roman-kulish/flythrough/internal/pose"
)

// LogPort writes poses to a logger instead of drawing them. It is ready
// immediately and is useful for dry runs.
type LogPort struct {
	logger   *slog.Logger
	viewport Viewport
	every    uint64
	count    atomic.Uint64
}

type LogPortOption func(*LogPort)

func WithLogger(logger *slog.Logger) LogPortOption {
	return func(p *LogPort) {
		p.logger = logger.With(slog.String("component", "renderer"))
	}
}

// WithEvery logs only every n-th pose.
func WithEvery(n int) LogPortOption {
	return func(p *LogPort) {
		if n > 0 {
			p.every = uint64(n)
		}
	}
}

func NewLogPort(opts ...LogPortOption) *LogPort {
	p := &LogPort{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		viewport: Viewport{ID: uuid.New(), Name: "log", Version: "1"},
		every:    1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *LogPort) Configure(v View) error {
	p.logger.Info("view configured",
		slog.String("crs", v.CRS.String()),
		slog.Float64("fov", v.FieldOfView),
		slog.Float64("verticalExaggeration", v.VerticalExaggeration),
		slog.Bool("terrainShading", v.TerrainShading),
		slog.Bool("overlays", v.Overlays))
	return nil
}

func (p *LogPort) ApplyPose(cp pose.CameraPose) error {
	n := p.count.Add(1)
	if (n-1)%p.every != 0 {
		return nil
	}

	p.logger.Info("camera pose",
		slog.Uint64("frame", n),
		slog.Float64("x", cp.Center.X),
		slog.Float64("y", cp.Center.Y),
		slog.Float64("z", cp.Center.Z),
		slog.Float64("distance", cp.Distance),
		slog.Float64("pitch", cp.Pitch),
		slog.Float64("yaw", cp.Yaw))
	return nil
}

func (p *LogPort) Viewport() Viewport {
	return p.viewport
}

func (p *LogPort) Ready() <-chan struct{} {
	return closedChan
}
