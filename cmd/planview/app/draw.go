package app

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// drawLine draws a Bresenham line with a square brush of the given width.
// Pixels outside dst are skipped.
func drawLine(dst draw.Image, x0, y0, x1, y1 int, c color.Color, width int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		brush(dst, x0, y0, c, width)
		if x0 == x1 && y0 == y1 {
			return
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawSegment draws a line between fractional pixel positions, clipped to
// the bounds of dst. Non-finite positions are ignored.
func drawSegment(dst draw.Image, x0, y0, x1, y1 float64, c color.Color, width int) {
	b := dst.Bounds()
	if !clip(&x0, &y0, &x1, &y1, float64(b.Min.X-width), float64(b.Min.Y-width), float64(b.Max.X+width), float64(b.Max.Y+width)) {
		return
	}
	drawLine(dst, round(x0), round(y0), round(x1), round(y1), c, width)
}

// drawDisc fills a circle of radius r around x, y.
func drawDisc(dst draw.Image, x, y float64, r int, c color.Color) {
	if !finite(x) || !finite(y) {
		return
	}

	cx, cy := round(x), round(y)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				set(dst, cx+dx, cy+dy, c)
			}
		}
	}
}

func brush(dst draw.Image, x, y int, c color.Color, width int) {
	if width <= 1 {
		set(dst, x, y, c)
		return
	}

	lo := -(width - 1) / 2
	for dy := lo; dy < lo+width; dy++ {
		for dx := lo; dx < lo+width; dx++ {
			set(dst, x+dx, y+dy, c)
		}
	}
}

func set(dst draw.Image, x, y int, c color.Color) {
	if (image.Point{X: x, Y: y}).In(dst.Bounds()) {
		dst.Set(x, y, c)
	}
}

// clip is Liang-Barsky line clipping. It returns false when the segment lies
// completely outside the rectangle.
func clip(x0, y0, x1, y1 *float64, xmin, ymin, xmax, ymax float64) bool {
	if !finite(*x0) || !finite(*y0) || !finite(*x1) || !finite(*y1) {
		return false
	}

	dx, dy := *x1-*x0, *y1-*y0
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-dx, *x0 - xmin},
		{dx, xmax - *x0},
		{-dy, *y0 - ymin},
		{dy, ymax - *y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return false
			}
			continue
		}

		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return false
			}
			t1 = math.Min(t1, t)
		}
	}

	sx, sy := *x0, *y0
	*x0, *y0 = sx+t0*dx, sy+t0*dy
	*x1, *y1 = sx+t1*dx, sy+t1*dy
	return true
}

// shadeColor scales the brightness of c by f in [0, 1].
func shadeColor(c color.RGBA, f float64) color.RGBA {
	scale := func(v uint8) uint8 {
		return uint8(math.Min(255, float64(v)*f))
	}
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

func round(v float64) int {
	return int(math.Round(v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
