// Package pose converts an interpolated camera state and a look-ahead target
// into an orbit camera pose, keeping the look-at point above the terrain.
package pose

import (
	"context"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/elevation"
	"github.com/roman-kulish/flythrough/internal/flythrough"
	"github.com/roman-kulish/flythrough/internal/geom"
)

const (
	DefaultLookahead        = 1000.0
	DefaultFallbackDistance = 200.0

	// minLookDistance is the distance below which the look target is treated
	// as degenerate and the camera heading is used instead.
	minLookDistance = 1.0

	minCorrectionPitch    = 1.0
	minCorrectionDistance = 0.1

	// The camera is lifted this far above the ground when it is closer than
	// minClearance to it.
	minClearance  = 1.0
	safeClearance = 10.0
)

// CameraPose is an orbit camera: it looks at Center from Distance away,
// Pitch degrees above the horizon (0 is level, 90 straight down) and from
// heading Yaw.
type CameraPose struct {
	Center   r3.Vec
	Distance float64
	Pitch    float64 // [0, 180]
	Yaw      float64 // [0, 360)
}

// Target is the point the camera should look towards.
type Target struct {
	X, Y    float64
	GroundZ float64
}

// Solution is a solved pose plus the diagnostics that led to it.
type Solution struct {
	Pose CameraPose

	// CameraZ is the camera altitude after the ground clearance check.
	CameraZ float64

	// Corrected is set when the look-at point was pulled towards the camera
	// to keep the view ray from passing under the terrain.
	Corrected bool

	// TerrainAtLookAt is the terrain height sampled at the final look-at
	// point, valid when TerrainSampled is set.
	TerrainAtLookAt float64
	TerrainSampled  bool
}

type Option func(*Solver)

func WithLookahead(distance float64) Option {
	return func(s *Solver) {
		s.lookahead = distance
	}
}

// WithFallbackDistance sets the minimum orbit distance. This is normally the
// camera height.
func WithFallbackDistance(distance float64) Option {
	return func(s *Solver) {
		s.fallbackDistance = distance
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) {
		s.logger = logger.With(slog.String("component", "pose"))
	}
}

// Solver computes camera poses. Terrain queries are made in the working CRS
// and should be bounded in time, since Solve runs once per frame.
type Solver struct {
	terrain          elevation.Source
	crs              crs.CRS
	lookahead        float64
	fallbackDistance float64
	logger           *slog.Logger
}

func NewSolver(terrain elevation.Source, working crs.CRS, opts ...Option) *Solver {
	s := &Solver{
		terrain:          terrain,
		crs:              working,
		lookahead:        DefaultLookahead,
		fallbackDistance: DefaultFallbackDistance,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve never fails. Missing terrain only disables the corrections that
// depend on it.
func (s *Solver) Solve(ctx context.Context, cam flythrough.Keyframe, look Target) Solution {
	pos := cam.Position()

	d := r2.Sub(geom.Point{X: look.X, Y: look.Y}, pos)
	aheadGz := look.GroundZ

	if rawDist := r2.Norm(d); rawDist > minLookDistance {
		scale := math.Min(1, s.lookahead/rawDist)
		d = r2.Scale(scale, d)
		aheadGz = cam.GroundZ + (look.GroundZ-cam.GroundZ)*scale
	} else {
		d = r2.Scale(s.lookahead, geom.Forward(cam.Yaw))
		aheadGz = cam.GroundZ
	}

	final := r2.Add(pos, d)
	terrainZ, sampled := elevation.Sample(ctx, s.terrain, final, s.crs)
	if sampled && terrainZ > aheadGz {
		aheadGz = terrainZ
	}

	camZ := cam.Z
	horiz := r2.Norm(d)
	finalZ := camZ + horiz*math.Tan(geom.Radians(cam.Pitch))

	var sol Solution

	// Pull the look-at point in to where the view ray meets the terrain.
	if finalZ < aheadGz {
		above := camZ - aheadGz
		if above > 0 && math.Abs(cam.Pitch) > minCorrectionPitch && horiz > minCorrectionDistance {
			required := above / math.Tan(geom.Radians(math.Abs(cam.Pitch)))
			if k := required / horiz; k < 1 {
				d = r2.Scale(k, d)
				final = r2.Add(pos, d)
				finalZ = aheadGz
				horiz = required
				sol.Corrected = true

				s.logger.Debug("look-at point pulled in to terrain",
					slog.Float64("distance", required),
					slog.Float64("terrain", aheadGz))

				terrainZ, sampled = elevation.Sample(ctx, s.terrain, final, s.crs)
			}
		}
	}

	// Never leave the look-at point under the terrain.
	if sampled {
		sol.TerrainAtLookAt, sol.TerrainSampled = terrainZ, true
		finalZ = math.Max(finalZ, terrainZ)
	}
	finalZ = math.Max(finalZ, aheadGz)

	if camZ < cam.GroundZ+minClearance {
		camZ = cam.GroundZ + safeClearance
	}

	vertical := camZ - finalZ
	distance := math.Max(math.Hypot(horiz, vertical), s.fallbackDistance)

	var pitch float64
	if horiz >= 0.001 {
		pitch = geom.Clamp(geom.Degrees(math.Atan2(vertical, horiz)), 0, 180)
	}

	sol.CameraZ = camZ
	sol.Pose = CameraPose{
		Center:   r3.Vec{X: final.X, Y: final.Y, Z: finalZ},
		Distance: distance,
		Pitch:    pitch,
		Yaw:      geom.NormalizeDegrees(360 - geom.Degrees(math.Atan2(d.X, d.Y))),
	}
	return sol
}
