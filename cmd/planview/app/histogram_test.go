package app

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func update(h *ElevationHistogram, values ...float64) {
	for i := range values {
		h.Update(&values[i])
	}
}

func TestElevationHistogram_PercentileBounds(t *testing.T) {
	h := NewElevationHistogram()
	for i := range 100 {
		update(h, float64(i))
	}
	h.Update(nil)
	update(h, math.NaN(), math.Inf(1))

	assert.Equal(t, uint64(100), h.Count())

	b := h.GetPercentileBounds()
	assert.InDelta(t, -3.9, b.Min, 1e-9)
	assert.InDelta(t, 103.9, b.Max, 1e-9)
	assert.InDelta(t, 49.5, b.Mean, 1e-9)
}

func TestElevationHistogram_FlatTerrain(t *testing.T) {
	h := NewElevationHistogram()
	for range 50 {
		update(h, 100)
	}

	b := h.GetPercentileBounds()
	assert.Equal(t, 89.0, b.Min)
	assert.Equal(t, 111.0, b.Max)
	assert.Equal(t, 100.0, b.Mean)
}

func TestElevationHistogram_FewSamples(t *testing.T) {
	h := NewElevationHistogram()
	assert.Equal(t, defaultElevationBounds(), h.GetPercentileBounds())

	update(h, 10, 12, 14)
	b := h.GetPercentileBounds()
	assert.Equal(t, 2.0, b.Min)
	assert.Equal(t, 22.0, b.Max)
	assert.Equal(t, 12.0, b.Mean)

	h.Clear()
	assert.Zero(t, h.Count())
	assert.Equal(t, defaultElevationBounds(), h.GetPercentileBounds())
}
