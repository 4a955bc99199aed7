package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/elevation"
	"github.com/roman-kulish/flythrough/internal/flythrough"
	"github.com/roman-kulish/flythrough/internal/playback"
	"github.com/roman-kulish/flythrough/internal/pose"
	"github.com/roman-kulish/flythrough/internal/render"
	"github.com/roman-kulish/flythrough/internal/route"
	"github.com/roman-kulish/flythrough/internal/telemetry"
)

// WithTerrainTimeout bounds every terrain query made while playing.
func WithTerrainTimeout(d time.Duration) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithOverlays passes the overlay flag on to the renderer view.
func WithOverlays(enabled bool) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.overlays = enabled
	}
}

// Orchestrator wires the synthesizer, the pose solver and the playback
// runner together for one project CRS and one renderer.
type Orchestrator struct {
	terrain elevation.Source
	project crs.CRS
	working crs.CRS
	params  flythrough.Params
	port    render.Port

	synth  *flythrough.Synthesizer
	runner *playback.Runner

	timeout  time.Duration
	overlays bool
	logger   *slog.Logger
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(terrain elevation.Source, project crs.CRS, params flythrough.Params, port render.Port, logger *slog.Logger, options ...func(*Orchestrator)) *Orchestrator {
	o := Orchestrator{
		terrain: terrain,
		project: project,
		working: crs.WorkingCRS(project),
		params:  params,
		port:    port,
		timeout: elevation.DefaultTimeout,
		logger:  logger,
	}

	for _, option := range options {
		option(&o)
	}

	o.synth = flythrough.NewSynthesizer(terrain, o.working, flythrough.WithLogger(logger))

	// Keyframe ground heights carry the vertical exaggeration, so the solver
	// must see the terrain the same way.
	var solverTerrain elevation.Source
	if terrain != nil {
		solverTerrain = elevation.Scaled{
			Source: elevation.WithTimeout(terrain, o.timeout),
			Factor: params.VerticalExaggeration,
		}
	}
	solver := pose.NewSolver(solverTerrain, o.working,
		pose.WithLookahead(params.LookaheadDistance),
		pose.WithFallbackDistance(params.CameraHeight),
		pose.WithLogger(logger))

	o.runner = playback.NewRunner(solver, port,
		playback.WithFrameRate(float64(params.FrameRate)),
		playback.WithLogger(logger))

	return &o
}

// Generate stops any running playback, converts r to the working CRS and
// loads a new sequence. It returns false when no flythrough can be made.
func (o *Orchestrator) Generate(ctx context.Context, r *route.Route) bool {
	o.runner.Stop()

	if r == nil {
		o.logger.Error("cannot generate flythrough: no route")
		return false
	}

	working, err := r.To(o.working)
	if err != nil {
		o.logger.Error("cannot generate flythrough", slog.Any("error", err))
		return false
	}

	seq := o.synth.Generate(ctx, working.Points, o.params)
	if seq.Empty() {
		o.logger.Error("cannot generate flythrough", slog.String("route", r.Name))
		return false
	}

	if err = o.runner.Load(seq); err != nil {
		o.logger.Error("cannot load flythrough", slog.Any("error", err))
		return false
	}

	o.logger.Info("flythrough ready",
		slog.String("route", r.Name),
		slog.String("sequence", seq.ID.String()),
		slog.String("length", humanize.FormatFloat("#,###.#", seq.Length)+" m"),
		slog.Float64("duration", seq.TotalDuration),
		slog.String("crs", o.working.String()))

	if seq.BelowTerrainPeak {
		o.logger.Warn("camera altitude is below the highest terrain on the route")
	}
	return true
}

// Play configures the renderer view and starts playback.
func (o *Orchestrator) Play(ctx context.Context) (<-chan error, error) {
	view := render.View{
		CRS:                  o.working,
		FieldOfView:          o.params.FieldOfView,
		VerticalExaggeration: o.params.VerticalExaggeration,
		TerrainShading:       o.params.TerrainShading,
		Overlays:             o.overlays,
	}
	if err := o.port.Configure(view); err != nil {
		o.logger.Warn("renderer rejected view settings", slog.Any("error", err))
	}

	return o.runner.BeginPlayback(ctx)
}

// Stop halts playback and returns the player to Idle.
func (o *Orchestrator) Stop() {
	o.runner.Stop()
}

func (o *Orchestrator) State() playback.State {
	return o.runner.State()
}

// Telemetry exposes the live camera state.
func (o *Orchestrator) Telemetry() telemetry.Provider {
	return o.runner
}
