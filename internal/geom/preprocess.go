package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Densify inserts evenly spaced points along every segment longer than
// interval, so that no output segment is longer than interval. A segment of
// length L is split into ceil(L/interval) pieces. Original vertices are kept
// exactly; shorter segments pass through unchanged.
//
// Paths with fewer than two points and non-positive intervals are returned as is.
func Densify(path Path, interval float64) Path {
	if len(path) < 2 || !(interval > 0) {
		return path
	}

	dense := make(Path, 0, len(path))
	dense = append(dense, path[0])

	for i := 0; i < len(path)-1; i++ {
		p1, p2 := path[i], path[i+1]

		dist := Distance(p1, p2)
		if dist <= interval {
			dense = append(dense, p2)
			continue
		}

		n := int(math.Ceil(dist / interval))
		step := r2.Scale(1/float64(n), r2.Sub(p2, p1))
		for j := 1; j < n; j++ {
			dense = append(dense, r2.Add(p1, r2.Scale(float64(j), step)))
		}
		dense = append(dense, p2)
	}

	return dense
}

// Smooth applies iterations passes of an unweighted 3-point moving average to
// the interior points of path. The first and last points never move. Every
// pass reads the complete result of the previous pass.
//
// Zero iterations, or a path shorter than three points, returns the input.
func Smooth(path Path, iterations int) Path {
	if iterations <= 0 || len(path) < 3 {
		return path
	}

	current := path.Clone()
	next := make(Path, len(path))

	for iter := 0; iter < iterations; iter++ {
		next[0] = current[0]
		for i := 1; i < len(current)-1; i++ {
			sum := r2.Add(r2.Add(current[i-1], current[i]), current[i+1])
			next[i] = r2.Scale(1.0/3.0, sum)
		}
		next[len(next)-1] = current[len(current)-1]

		current, next = next, current
	}

	return current
}
