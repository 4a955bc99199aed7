// Package geom holds the planar geometry used by the flythrough engine: points,
// paths, headings and the path preprocessing steps (densify and smooth).
//
// All angles are degrees. Headings follow the map bearing convention: 0° points
// along +y (north) and angles grow clockwise toward +x (east).
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a coordinate in the working planar reference system.
type Point = r2.Vec

// Path is an ordered sequence of points. The order is the traversal order and
// the path is never implicitly closed.
type Path []Point

// Length returns the sum of all segment lengths.
func (p Path) Length() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += Distance(p[i-1], p[i])
	}
	return total
}

// Bounds returns the lower-left and upper-right corners of the path envelope.
// Both are zero for an empty path.
func (p Path) Bounds() (lo, hi Point) {
	if len(p) == 0 {
		return
	}

	lo, hi = p[0], p[0]
	for _, pt := range p[1:] {
		lo.X = math.Min(lo.X, pt.X)
		lo.Y = math.Min(lo.Y, pt.Y)
		hi.X = math.Max(hi.X, pt.X)
		hi.Y = math.Max(hi.Y, pt.Y)
	}
	return
}

// Clone returns a copy of the path that shares no memory with p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	c := make(Path, len(p))
	copy(c, p)
	return c
}

// Distance returns the planar distance between a and b.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// Bearing returns the heading from p1 to p2 in [0, 360).
func Bearing(p1, p2 Point) float64 {
	return NormalizeDegrees(Degrees(math.Atan2(p2.X-p1.X, p2.Y-p1.Y)))
}

// Forward returns the unit vector for a heading, using the same convention as
// Bearing: Bearing(p, p + Forward(h)) == h.
func Forward(heading float64) Point {
	rad := Radians(heading)
	return Point{X: math.Sin(rad), Y: math.Cos(rad)}
}

// NormalizeDegrees maps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 { // -tiny + 360 rounds up to 360
		deg -= 360
	}
	return deg
}

// WrapDegrees maps an angle difference into [-180, 180].
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	switch {
	case deg > 180:
		deg -= 360
	case deg < -180:
		deg += 360
	}
	return deg
}

// LerpAngle interpolates between two headings along the shorter arc and
// returns the result in [0, 360).
func LerpAngle(a, b, t float64) float64 {
	return NormalizeDegrees(a + WrapDegrees(b-a)*t)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpPoint interpolates linearly between two points.
func LerpPoint(a, b Point, t float64) Point {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Smoothstep is the cubic ease curve t²(3-2t) with zero slope at both ends.
// The input is clamped to [0, 1].
func Smoothstep(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
