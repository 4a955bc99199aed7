package flythrough

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/elevation"
	"github.com/roman-kulish/flythrough/internal/geom"
)

func generate(t *testing.T, terrain elevation.Source, path geom.Path, params Params) Sequence {
	t.Helper()
	return NewSynthesizer(terrain, crs.WebMercator).Generate(context.Background(), path, params)
}

func TestGenerate_StraightLineTerrainRelative(t *testing.T) {
	params := DefaultParams()
	params.AltitudeMode = TerrainRelative
	params.CameraHeight = 200
	params.Speed = 50

	seq := generate(t, elevation.Constant{Height: 100}, geom.Path{{X: 0, Y: 0}, {X: 1000, Y: 0}}, params)
	require.Len(t, seq.Keyframes, 2)

	assert.Equal(t, 300.0, seq.Keyframes[0].Z)
	assert.Equal(t, 100.0, seq.Keyframes[0].GroundZ)
	assert.Equal(t, 0.0, seq.Keyframes[0].Time)
	assert.InDelta(t, 20.0, seq.Keyframes[1].Time, 1e-9)
	assert.InDelta(t, 20.0, seq.TotalDuration, 1e-9)

	for _, kf := range seq.Keyframes {
		assert.InDelta(t, 90.0, kf.Yaw, 1e-9)
		assert.Equal(t, 0.0, kf.Roll)
		assert.Equal(t, -65.0, kf.Pitch)
	}

	assert.NotEqual(t, uuid.Nil, seq.ID)
	assert.InDelta(t, 1000, seq.Length, 1e-9)
	assert.Equal(t, 100.0, seq.MaxElevation)
}

func TestGenerate_BankingOpposesTurn(t *testing.T) {
	params := DefaultParams()
	params.Banking = true
	params.BankingFactor = 0.5

	tests := []struct {
		name string
		path geom.Path
		sign float64
	}{
		// east then north: a left (counter-clockwise) turn
		{"left turn", geom.Path{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}, 1},
		// east then south: a right turn
		{"right turn", geom.Path{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: -100}}, -1},
		// gentle right turn below the clamp
		{"gentle right", geom.Path{{X: 0, Y: 0}, {X: 0, Y: 100}, {X: 20, Y: 200}}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := generate(t, elevation.Constant{}, tt.path, params)
			require.Len(t, seq.Keyframes, 3)

			roll := seq.Keyframes[1].Roll
			assert.NotZero(t, roll)
			assert.Equal(t, tt.sign, math.Copysign(1, roll))
			assert.LessOrEqual(t, math.Abs(roll), 45.0)

			assert.Zero(t, seq.Keyframes[0].Roll)
			assert.Zero(t, seq.Keyframes[2].Roll)
		})
	}

	params.Banking = false
	seq := generate(t, elevation.Constant{}, tests[0].path, params)
	assert.Zero(t, seq.Keyframes[1].Roll)
}

func TestGenerate_AboveSafePathUsesRoutePeak(t *testing.T) {
	// 500 m spike between x=400 and x=402, 100 m elsewhere.
	terrain := elevation.Func(func(_ context.Context, p geom.Point, _ crs.CRS) (float64, error) {
		if p.X >= 400 && p.X <= 402 {
			return 500, nil
		}
		return 100, nil
	})

	params := DefaultParams()
	params.AltitudeMode = AboveSafePath
	params.CameraHeight = 50
	params.VerticalExaggeration = 2

	seq := generate(t, terrain, geom.Path{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 500}}, params)
	require.Len(t, seq.Keyframes, 3)

	assert.Equal(t, 500.0, seq.MaxElevation)
	for _, kf := range seq.Keyframes {
		assert.Equal(t, 1100.0, kf.Z)
		assert.Equal(t, 200.0, kf.GroundZ)
	}
}

func TestGenerate_FixedAMSLBelowPeak(t *testing.T) {
	params := DefaultParams()
	params.AltitudeMode = FixedAMSL
	params.CameraHeight = 300

	path := geom.Path{{X: 0, Y: 0}, {X: 100, Y: 0}}

	seq := generate(t, elevation.Constant{Height: 400}, path, params)
	require.False(t, seq.Empty())
	assert.True(t, seq.BelowTerrainPeak)
	for _, kf := range seq.Keyframes {
		assert.Equal(t, 300.0, kf.Z)
	}

	seq = generate(t, elevation.Constant{Height: 100}, path, params)
	assert.False(t, seq.BelowTerrainPeak)
}

func TestGenerate_TimeIsMonotonic(t *testing.T) {
	path := geom.Path{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 0}, {X: 30, Y: 40}, {X: -5, Y: 12}, {X: 0, Y: 0}}

	params := DefaultParams()
	params.Smoothing = 3
	params.Speed = 7

	seq := generate(t, elevation.Constant{Height: 10}, path, params)
	require.Len(t, seq.Keyframes, len(path))

	assert.Equal(t, 0.0, seq.Keyframes[0].Time)
	for i := 1; i < len(seq.Keyframes); i++ {
		assert.GreaterOrEqual(t, seq.Keyframes[i].Time, seq.Keyframes[i-1].Time, "keyframe %d", i)
	}
	assert.Equal(t, seq.Keyframes[len(seq.Keyframes)-1].Time, seq.TotalDuration)

	for _, kf := range seq.Keyframes {
		assert.GreaterOrEqual(t, kf.Yaw, 0.0)
		assert.Less(t, kf.Yaw, 360.0)
	}
}

func TestGenerate_LastKeyframeReusesHeading(t *testing.T) {
	seq := generate(t, elevation.Constant{}, geom.Path{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: -10, Y: 10}}, DefaultParams())
	require.Len(t, seq.Keyframes, 3)

	assert.InDelta(t, 0, seq.Keyframes[0].Yaw, 1e-9)
	assert.InDelta(t, 270, seq.Keyframes[1].Yaw, 1e-9)
	assert.InDelta(t, 270, seq.Keyframes[2].Yaw, 1e-9)
}

func TestGenerate_UnavailableTerrainIsZero(t *testing.T) {
	terrain := elevation.Func(func(context.Context, geom.Point, crs.CRS) (float64, error) {
		return 0, elevation.ErrNotAvailable
	})

	params := DefaultParams()
	params.AltitudeMode = AboveSafePath
	params.CameraHeight = 120

	seq := generate(t, terrain, geom.Path{{X: 0, Y: 0}, {X: 50, Y: 0}}, params)
	require.Len(t, seq.Keyframes, 2)
	assert.Equal(t, 0.0, seq.MaxElevation)
	for _, kf := range seq.Keyframes {
		assert.Equal(t, 0.0, kf.GroundZ)
		assert.Equal(t, 120.0, kf.Z)
	}
}

func TestGenerate_InvalidInputIsEmpty(t *testing.T) {
	line := geom.Path{{X: 0, Y: 0}, {X: 10, Y: 0}}

	seq := generate(t, elevation.Constant{}, geom.Path{{X: 1, Y: 1}}, DefaultParams())
	assert.True(t, seq.Empty())
	seq = generate(t, elevation.Constant{}, nil, DefaultParams())
	assert.True(t, seq.Empty())
	seq = generate(t, nil, line, DefaultParams())
	assert.True(t, seq.Empty())

	params := DefaultParams()
	params.Speed = 0
	seq = generate(t, elevation.Constant{}, line, params)
	assert.True(t, seq.Empty())
}

func TestGenerate_PitchIsClamped(t *testing.T) {
	params := DefaultParams()
	params.Pitch = -120

	seq := generate(t, elevation.Constant{}, geom.Path{{X: 0, Y: 0}, {X: 10, Y: 0}}, params)
	require.False(t, seq.Empty())
	assert.Equal(t, -90.0, seq.Keyframes[0].Pitch)
}

func TestParseAltitudeMode(t *testing.T) {
	tests := map[string]AltitudeMode{
		"aboveSafePath":         AboveSafePath,
		"Above Safe Path":       AboveSafePath,
		"Fixed Altitude (AMSL)": FixedAMSL,
		"fixed-amsl":            FixedAMSL,
		"terrain_relative":      TerrainRelative,
	}
	for in, want := range tests {
		got, err := ParseAltitudeMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseAltitudeMode("underground")
	assert.Error(t, err)

	for _, m := range []AltitudeMode{AboveSafePath, FixedAMSL, TerrainRelative} {
		text, err := m.MarshalText()
		require.NoError(t, err)

		var back AltitudeMode
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, m, back)
	}
}
