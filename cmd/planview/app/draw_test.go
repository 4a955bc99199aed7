package app

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var ink = color.RGBA{R: 10, G: 20, B: 30, A: 255}

func canvas() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 10, 10))
}

func TestDrawLine(t *testing.T) {
	img := canvas()
	drawLine(img, 1, 1, 8, 1, ink, 1)

	for x := 1; x <= 8; x++ {
		assert.Equal(t, ink, img.RGBAAt(x, 1), "x=%d", x)
	}
	assert.Zero(t, img.RGBAAt(0, 1).A)
	assert.Zero(t, img.RGBAAt(9, 1).A)
	assert.Zero(t, img.RGBAAt(4, 2).A)

	img = canvas()
	drawLine(img, 9, 9, 0, 0, ink, 1)
	for i := range 10 {
		assert.Equal(t, ink, img.RGBAAt(i, i))
	}
}

func TestDrawLine_Width(t *testing.T) {
	img := canvas()
	drawLine(img, 2, 5, 7, 5, ink, 3)

	for _, y := range []int{4, 5, 6} {
		assert.Equal(t, ink, img.RGBAAt(4, y))
	}
	assert.Zero(t, img.RGBAAt(4, 3).A)
	assert.Zero(t, img.RGBAAt(4, 7).A)
}

func TestDrawSegment_Clips(t *testing.T) {
	img := canvas()
	drawSegment(img, -1e6, 5, 1e6, 5, ink, 1)
	for x := range 10 {
		assert.Equal(t, ink, img.RGBAAt(x, 5))
	}

	img = canvas()
	drawSegment(img, 20, 20, 40, 40, ink, 1)
	drawSegment(img, math.NaN(), 0, 5, 5, ink, 1)
	drawDisc(img, math.Inf(1), 5, 3, ink)
	for y := range 10 {
		for x := range 10 {
			assert.Zero(t, img.RGBAAt(x, y).A)
		}
	}
}

func TestDrawDisc(t *testing.T) {
	img := canvas()
	drawDisc(img, 5, 5, 2, ink)

	assert.Equal(t, ink, img.RGBAAt(5, 5))
	assert.Equal(t, ink, img.RGBAAt(7, 5))
	assert.Equal(t, ink, img.RGBAAt(5, 3))
	assert.Zero(t, img.RGBAAt(7, 7).A)
}

func TestShadeColor(t *testing.T) {
	c := color.RGBA{R: 100, G: 200, B: 50, A: 255}
	assert.Equal(t, c, shadeColor(c, 1))
	assert.Equal(t, color.RGBA{R: 50, G: 100, B: 25, A: 255}, shadeColor(c, 0.5))
	assert.Equal(t, color.RGBA{R: 150, G: 255, B: 75, A: 255}, shadeColor(c, 1.5))
}
