package crs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/flythrough/internal/geom"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want CRS
	}{
		{"EPSG:4326", WGS84},
		{"epsg:4326", WGS84},
		{" WGS84 ", WGS84},
		{"CRS84", WGS84},
		{"EPSG:3857", WebMercator},
		{"900913", WebMercator},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "EPSG:27700", "utm"} {
		_, err := Parse(bad)
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("Parse(%q) error = %v, want ErrUnsupported", bad, err)
		}
	}
}

func TestWorkingCRS(t *testing.T) {
	assert.Equal(t, WebMercator, WorkingCRS(WGS84))
	assert.Equal(t, WebMercator, WorkingCRS(WebMercator))
}

func TestTransform_RoundTrip(t *testing.T) {
	fwd, err := NewTransform(WGS84, WebMercator)
	require.NoError(t, err)
	inv, err := NewTransform(WebMercator, WGS84)
	require.NoError(t, err)

	points := []geom.Point{
		{X: 0, Y: 0},
		{X: 151.2093, Y: -33.8688},
		{X: -122.4194, Y: 37.7749},
		{X: 8.6821, Y: 50.1109},
	}

	for _, p := range points {
		m, err := fwd.Apply(p)
		require.NoError(t, err)

		back, err := inv.Apply(m)
		require.NoError(t, err)

		assert.InDelta(t, p.X, back.X, 1e-7)
		assert.InDelta(t, p.Y, back.Y, 1e-7)
	}
}

func TestTransform_KnownValues(t *testing.T) {
	fwd, err := NewTransform(WGS84, WebMercator)
	require.NoError(t, err)

	p, err := fwd.Apply(geom.Point{X: 180, Y: 0})
	require.NoError(t, err)
	assert.InDelta(t, 20037508.34, p.X, 1e-2)
	assert.InDelta(t, 0, p.Y, 1e-6)
}

func TestTransform_Identity(t *testing.T) {
	tr, err := NewTransform(WebMercator, WebMercator)
	require.NoError(t, err)
	assert.True(t, tr.IsIdentity())

	path := geom.Path{{X: 1, Y: 2}, {X: 3, Y: 4}}
	out, err := tr.ApplyPath(path)
	require.NoError(t, err)
	assert.Equal(t, path, out)

	out[0].X = 99
	assert.Equal(t, 1.0, path[0].X, "ApplyPath must not alias its input")
}

func TestTransform_RejectsOutOfRange(t *testing.T) {
	fwd, err := NewTransform(WGS84, WebMercator)
	require.NoError(t, err)

	_, err = fwd.ApplyPath(geom.Path{{X: 0, Y: 0}, {X: 200, Y: 10}})
	assert.Error(t, err)
}

func TestNewTransform_Unsupported(t *testing.T) {
	_, err := NewTransform("EPSG:27700", WGS84)
	assert.ErrorIs(t, err, ErrUnsupported)
}
