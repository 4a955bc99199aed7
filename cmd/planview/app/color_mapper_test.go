package app

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorMapper_GetColor(t *testing.T) {
	cm := NewColorMapper(GrayscaleTheme, ElevationBounds{Min: 0, Max: 255})

	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	low, high, top := -10.0, 1000.0, 255.0
	assert.Equal(t, black, cm.GetColor(nil))
	assert.Equal(t, black, cm.GetColor(&low))
	assert.Equal(t, white, cm.GetColor(&high))
	assert.Equal(t, white, cm.GetColor(&top))
	assert.Equal(t, DefaultColorMapSize, cm.Size())
	assert.Equal(t, GrayscaleTheme, cm.ThemeName())
}

func TestColorMapper_FlatBounds(t *testing.T) {
	cm := NewColorMapperWithSize(TerrainTheme, ElevationBounds{Min: 120, Max: 120}, 16)

	lo, hi := cm.Bounds()
	assert.Equal(t, 120.0, lo)
	assert.Equal(t, 121.0, hi)

	z := 120.5
	assert.NotPanics(t, func() { cm.GetColor(&z) })
}

func TestColorThemes(t *testing.T) {
	for theme := range validColorThemes {
		t.Run(string(theme), func(t *testing.T) {
			fn := getColorTheme(theme)
			for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
				assert.Equal(t, uint8(255), fn(v).A)
			}
		})
	}
}

func TestHSV_RGB(t *testing.T) {
	tests := []struct {
		hsv  HSV
		want color.RGBA
	}{
		{HSV{H: 0, S: 1, V: 1}, color.RGBA{R: 255, A: 255}},
		{HSV{H: 120, S: 1, V: 1}, color.RGBA{G: 255, A: 255}},
		{HSV{H: 240, S: 1, V: 1}, color.RGBA{B: 255, A: 255}},
		{HSV{H: 360, S: 1, V: 1}, color.RGBA{R: 255, A: 255}},
		{HSV{H: 42, S: 0, V: 0.5}, color.RGBA{R: 127, G: 127, B: 127, A: 255}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.hsv.RGB(), "%+v", tt.hsv)
	}
}
