// Package flythrough turns a route and the terrain under it into a timed
// sequence of camera keyframes.
package flythrough

import (
	"context"
	"io"
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/elevation"
	"github.com/roman-kulish/flythrough/internal/geom"
)

const (
	// DefaultScanInterval is the spacing of terrain samples taken to find
	// the highest point on the route.
	DefaultScanInterval = 2.0

	maxRoll = 45.0
)

type SynthesizerOption func(*Synthesizer)

func WithLogger(logger *slog.Logger) SynthesizerOption {
	return func(s *Synthesizer) {
		s.logger = logger.With(slog.String("component", "synthesizer"))
	}
}

// WithScanInterval overrides the spacing of the maximum elevation scan.
func WithScanInterval(interval float64) SynthesizerOption {
	return func(s *Synthesizer) {
		if interval > 0 {
			s.scanInterval = interval
		}
	}
}

// Synthesizer generates keyframe sequences. Paths are expected in the
// working CRS, which is also the CRS terrain queries are made in.
type Synthesizer struct {
	terrain      elevation.Source
	crs          crs.CRS
	scanInterval float64
	logger       *slog.Logger
}

func NewSynthesizer(terrain elevation.Source, working crs.CRS, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		terrain:      terrain,
		crs:          working,
		scanInterval: DefaultScanInterval,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sampler counts failed terrain queries so that one generation logs a single
// warning instead of one per vertex.
type sampler struct {
	ctx         context.Context
	terrain     elevation.Source
	crs         crs.CRS
	queries     int
	unavailable int
}

func (s *sampler) at(p geom.Point) (float64, bool) {
	s.queries++
	z, ok := elevation.Sample(s.ctx, s.terrain, p, s.crs)
	if !ok {
		s.unavailable++
	}
	return z, ok
}

// Generate builds the keyframe sequence for path. It never fails loudly: an
// empty Sequence is returned when the path has fewer than two points, no
// terrain source is configured or the speed is not positive.
func (s *Synthesizer) Generate(ctx context.Context, path geom.Path, params Params) Sequence {
	switch {
	case len(path) < 2:
		s.logger.Warn("cannot generate flythrough: path is too short", slog.Int("points", len(path)))
		return Sequence{}
	case s.terrain == nil:
		s.logger.Warn("cannot generate flythrough: no elevation source")
		return Sequence{}
	case !(params.Speed > 0):
		s.logger.Warn("cannot generate flythrough: speed must be positive", slog.Float64("speed", params.Speed))
		return Sequence{}
	}

	vertices := geom.Smooth(path, params.Smoothing)
	exag := params.VerticalExaggeration
	smp := &sampler{ctx: ctx, terrain: s.terrain, crs: s.crs}

	seq := Sequence{
		ID:           uuid.New(),
		MaxElevation: s.maxElevation(smp, vertices),
		Length:       vertices.Length(),
	}
	maxScaled := seq.MaxElevation * exag

	var fixedZ float64
	switch params.AltitudeMode {
	case AboveSafePath:
		fixedZ = (seq.MaxElevation + params.CameraHeight) * exag
	case FixedAMSL:
		fixedZ = params.CameraHeight * exag
		if fixedZ < maxScaled {
			seq.BelowTerrainPeak = true
			s.logger.Warn("camera altitude is below the highest terrain on the route",
				slog.Float64("altitude", fixedZ),
				slog.Float64("terrainPeak", maxScaled))
		}
	}

	pitch := geom.Clamp(params.Pitch, -90, 90)
	last := len(vertices) - 1

	seq.Keyframes = make([]Keyframe, 0, len(vertices))

	var (
		now     float64
		prevYaw float64
	)
	for i, p := range vertices {
		elev, _ := smp.at(p)
		groundZ := elev * exag

		z := fixedZ
		if params.AltitudeMode != AboveSafePath && params.AltitudeMode != FixedAMSL {
			z = groundZ + params.CameraHeight*exag
		}

		yaw := prevYaw
		if i < last {
			yaw = geom.Bearing(p, vertices[i+1])
		}
		prevYaw = yaw

		var roll float64
		if params.Banking && i > 0 && i < last {
			turn := geom.WrapDegrees(geom.Bearing(p, vertices[i+1]) - geom.Bearing(vertices[i-1], p))
			roll = geom.Clamp(-turn*params.BankingFactor, -maxRoll, maxRoll)
		}

		seq.Keyframes = append(seq.Keyframes, Keyframe{
			Time:    now,
			X:       p.X,
			Y:       p.Y,
			Z:       z,
			GroundZ: groundZ,
			Yaw:     yaw,
			Pitch:   pitch,
			Roll:    roll,
		})

		if i < last {
			now += geom.Distance(p, vertices[i+1]) / params.Speed
		}
	}
	seq.TotalDuration = seq.Keyframes[last].Time

	if smp.unavailable > 0 {
		s.logger.Warn("terrain elevation not available, using 0",
			slog.Int("samples", smp.unavailable),
			slog.Int("queries", smp.queries))
	}

	first, end := seq.Keyframes[0], seq.Keyframes[last]
	s.logger.Debug("first keyframe",
		slog.Float64("x", first.X), slog.Float64("y", first.Y),
		slog.Float64("groundZ", first.GroundZ), slog.Float64("z", first.Z), slog.Float64("yaw", first.Yaw))
	s.logger.Debug("last keyframe",
		slog.Float64("x", end.X), slog.Float64("y", end.Y),
		slog.Float64("groundZ", end.GroundZ), slog.Float64("z", end.Z), slog.Float64("yaw", end.Yaw))

	s.logger.Info("flythrough generated",
		slog.String("id", seq.ID.String()),
		slog.String("mode", params.AltitudeMode.String()),
		slog.Int("keyframes", len(seq.Keyframes)),
		slog.String("length", humanize.FormatFloat("#,###.#", seq.Length)),
		slog.String("duration", humanize.FormatFloat("#,###.##", seq.TotalDuration)+"s"),
		slog.Float64("maxElevation", seq.MaxElevation))

	return seq
}

// maxElevation scans a densified copy of the path. Only successful samples
// count; the result is 0 when none succeed.
func (s *Synthesizer) maxElevation(smp *sampler, path geom.Path) float64 {
	maxElev := math.Inf(-1)
	for _, p := range geom.Densify(path, s.scanInterval) {
		if z, ok := smp.at(p); ok && z > maxElev {
			maxElev = z
		}
	}
	if math.IsInf(maxElev, -1) {
		return 0
	}
	return maxElev
}
