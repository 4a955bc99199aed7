package pose

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/elevation"
	"github.com/roman-kulish/flythrough/internal/flythrough"
	"github.com/roman-kulish/flythrough/internal/geom"
)

func TestSolve_PullsLookAtOntoTerrain(t *testing.T) {
	s := NewSolver(elevation.Constant{Height: 100}, crs.WebMercator, WithLookahead(1000))

	cam := flythrough.Keyframe{X: 0, Y: 0, Z: 300, GroundZ: 100, Yaw: 90, Pitch: -65}
	sol := s.Solve(context.Background(), cam, Target{X: 1000, Y: 0, GroundZ: 100})

	required := 200 / math.Tan(geom.Radians(65))

	assert.True(t, sol.Corrected)
	assert.True(t, sol.TerrainSampled)
	assert.InDelta(t, required, sol.Pose.Center.X, 1e-9)
	assert.InDelta(t, 0, sol.Pose.Center.Y, 1e-9)
	assert.InDelta(t, 100, sol.Pose.Center.Z, 1e-9)
	assert.InDelta(t, 65, sol.Pose.Pitch, 1e-9)
	assert.InDelta(t, math.Hypot(required, 200), sol.Pose.Distance, 1e-9)
	assert.InDelta(t, 270, sol.Pose.Yaw, 1e-9)
	assert.Equal(t, 300.0, sol.CameraZ)
}

func TestSolve_ScalesTargetToLookahead(t *testing.T) {
	s := NewSolver(elevation.Constant{Height: 0}, crs.WebMercator, WithLookahead(1000))

	cam := flythrough.Keyframe{X: 0, Y: 0, Z: 1000, GroundZ: 0, Pitch: 0}
	sol := s.Solve(context.Background(), cam, Target{X: 5000, Y: 0, GroundZ: 500})

	// Target ground height is interpolated along the shortened vector.
	assert.False(t, sol.Corrected)
	assert.InDelta(t, 1000, sol.Pose.Center.X, 1e-9)
	assert.InDelta(t, 1000, sol.Pose.Center.Z, 1e-9)
	assert.InDelta(t, 0, sol.Pose.Pitch, 1e-9)
	assert.InDelta(t, 1000, sol.Pose.Distance, 1e-9)

	near := s.Solve(context.Background(), cam, Target{X: 300, Y: 400, GroundZ: 0})
	assert.InDelta(t, 300, near.Pose.Center.X, 1e-9)
	assert.InDelta(t, 400, near.Pose.Center.Y, 1e-9)
}

func TestSolve_DegenerateTargetUsesHeading(t *testing.T) {
	s := NewSolver(elevation.Constant{Height: 100}, crs.WebMercator, WithLookahead(500))

	for _, yaw := range []float64{0, 90, 225} {
		cam := flythrough.Keyframe{X: 10, Y: 20, Z: 300, GroundZ: 100, Yaw: yaw, Pitch: 0}
		sol := s.Solve(context.Background(), cam, Target{X: 10.5, Y: 20, GroundZ: 100})

		want := geom.Point{X: 10 + 500*math.Sin(geom.Radians(yaw)), Y: 20 + 500*math.Cos(geom.Radians(yaw))}
		assert.InDelta(t, want.X, sol.Pose.Center.X, 1e-9, "yaw %v", yaw)
		assert.InDelta(t, want.Y, sol.Pose.Center.Y, 1e-9, "yaw %v", yaw)

		// The bearing from the camera to the look-at point is the heading.
		assert.InDelta(t, yaw, geom.Bearing(cam.Position(), geom.Point{X: sol.Pose.Center.X, Y: sol.Pose.Center.Y}), 1e-6)
	}
}

func TestSolve_TerrainAboveCamera(t *testing.T) {
	terrain := elevation.Func(func(_ context.Context, p geom.Point, _ crs.CRS) (float64, error) {
		if p.X > 400 {
			return 500, nil
		}
		return 100, nil
	})
	s := NewSolver(terrain, crs.WebMercator)

	cam := flythrough.Keyframe{Z: 300, GroundZ: 100, Pitch: -30}
	sol := s.Solve(context.Background(), cam, Target{X: 800, GroundZ: 100})

	assert.False(t, sol.Corrected)
	assert.InDelta(t, 500, sol.Pose.Center.Z, 1e-9)
	assert.Equal(t, 0.0, sol.Pose.Pitch)
}

func TestSolve_CameraClearance(t *testing.T) {
	s := NewSolver(elevation.Constant{Height: 100}, crs.WebMercator)

	cam := flythrough.Keyframe{Z: 50, GroundZ: 100, Pitch: -10}
	sol := s.Solve(context.Background(), cam, Target{X: 100, GroundZ: 100})

	assert.Equal(t, 110.0, sol.CameraZ)
	assert.GreaterOrEqual(t, sol.Pose.Center.Z, 100.0)
}

func TestSolve_FallbackDistance(t *testing.T) {
	s := NewSolver(elevation.Constant{Height: 100}, crs.WebMercator, WithLookahead(0), WithFallbackDistance(250))

	cam := flythrough.Keyframe{Z: 150, GroundZ: 100, Pitch: -45}
	sol := s.Solve(context.Background(), cam, Target{})

	assert.Equal(t, 250.0, sol.Pose.Distance)
	assert.Equal(t, 0.0, sol.Pose.Pitch)
}

func TestSolve_DistanceNeverBelowFallback(t *testing.T) {
	s := NewSolver(elevation.Constant{Height: 0}, crs.WebMercator, WithLookahead(50), WithFallbackDistance(200))

	cam := flythrough.Keyframe{Z: 100, GroundZ: 0, Yaw: 90, Pitch: 0}
	sol := s.Solve(context.Background(), cam, Target{X: 50, Y: 0, GroundZ: 0})

	assert.InDelta(t, 50, sol.Pose.Center.X, 1e-9)
	assert.InDelta(t, 100, sol.Pose.Center.Z, 1e-9)
	assert.Equal(t, 200.0, sol.Pose.Distance)

	// Longer orbits are kept as they are.
	long := NewSolver(elevation.Constant{Height: 0}, crs.WebMercator, WithLookahead(500), WithFallbackDistance(200))
	far := long.Solve(context.Background(), flythrough.Keyframe{Z: 400, GroundZ: 0, Pitch: 0}, Target{X: 0, Y: 500})
	assert.InDelta(t, 500, far.Pose.Center.Y, 1e-9)
	assert.InDelta(t, 500, far.Pose.Distance, 1e-9)
}

func TestSolve_WithoutTerrain(t *testing.T) {
	s := NewSolver(nil, crs.WebMercator)

	cam := flythrough.Keyframe{Z: 300, GroundZ: 0, Pitch: -20}
	sol := s.Solve(context.Background(), cam, Target{X: 0, Y: 200})

	assert.False(t, sol.TerrainSampled)
	assert.InDelta(t, 200, sol.Pose.Center.Y, 1e-9)
	assert.InDelta(t, 300-200*math.Tan(geom.Radians(20)), sol.Pose.Center.Z, 1e-9)
	assert.InDelta(t, 20, sol.Pose.Pitch, 1e-9)
	assert.InDelta(t, 0, sol.Pose.Yaw, 1e-9)
}

func TestSolve_LookAtNeverBelowTerrain(t *testing.T) {
	ridges := func(p geom.Point) float64 {
		return 300 + 250*math.Sin(p.X/180) + 200*math.Cos(p.Y/95)
	}
	terrain := elevation.Func(func(_ context.Context, p geom.Point, _ crs.CRS) (float64, error) {
		return ridges(p), nil
	})
	s := NewSolver(terrain, crs.WebMercator, WithLookahead(800))

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		pos := geom.Point{X: rng.Float64()*10000 - 5000, Y: rng.Float64()*10000 - 5000}
		look := geom.Point{X: pos.X + rng.Float64()*3000 - 1500, Y: pos.Y + rng.Float64()*3000 - 1500}

		cam := flythrough.Keyframe{
			X:       pos.X,
			Y:       pos.Y,
			GroundZ: ridges(pos),
			Z:       ridges(pos) + rng.Float64()*600 - 100,
			Yaw:     rng.Float64() * 360,
			Pitch:   rng.Float64()*180 - 90,
		}

		sol := s.Solve(context.Background(), cam, Target{X: look.X, Y: look.Y, GroundZ: ridges(look)})

		require.True(t, sol.TerrainSampled)
		center := geom.Point{X: sol.Pose.Center.X, Y: sol.Pose.Center.Y}
		if sol.Pose.Center.Z < ridges(center)-1e-9 {
			t.Fatalf("case %d: look-at z %f is below terrain %f", i, sol.Pose.Center.Z, ridges(center))
		}

		assert.GreaterOrEqual(t, sol.Pose.Distance, 0.0)
		assert.GreaterOrEqual(t, sol.Pose.Pitch, 0.0)
		assert.LessOrEqual(t, sol.Pose.Pitch, 180.0)
		assert.GreaterOrEqual(t, sol.Pose.Yaw, 0.0)
		assert.Less(t, sol.Pose.Yaw, 360.0)
		assert.GreaterOrEqual(t, sol.CameraZ, cam.GroundZ+1)
	}
}
