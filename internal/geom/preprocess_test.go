package geom

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestDensify_SpacingAndEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		path     Path
		interval float64
	}{
		{"straight line", Path{{X: 0, Y: 0}, {X: 1000, Y: 0}}, 2},
		{"diagonal", Path{{X: 0, Y: 0}, {X: 7, Y: 13}}, 1.5},
		{"mixed segments", Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 50}, {X: -20, Y: 50}}, 3},
		{"interval larger than path", Path{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}, 100},
		{"coincident points", Path{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 10, Y: 5}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dense := Densify(tt.path, tt.interval)

			require.GreaterOrEqual(t, len(dense), len(tt.path))
			assert.Equal(t, tt.path[0], dense[0], "first point must be preserved")
			assert.Equal(t, tt.path[len(tt.path)-1], dense[len(dense)-1], "last point must be preserved")

			for i := 1; i < len(dense); i++ {
				d := Distance(dense[i-1], dense[i])
				if d > tt.interval+tolerance {
					t.Errorf("segment %d is %f long, interval %f", i, d, tt.interval)
				}
			}

			assert.InDelta(t, tt.path.Length(), dense.Length(), 1e-6, "densify must not change the route length")
		})
	}
}

func TestDensify_SegmentPointCount(t *testing.T) {
	path := Path{{X: 0, Y: 0}, {X: 10, Y: 0}}

	// ceil(10/3) = 4 pieces -> 5 points
	dense := Densify(path, 3)
	require.Len(t, dense, 5)

	want := Path{{X: 0}, {X: 2.5}, {X: 5}, {X: 7.5}, {X: 10}}
	if diff := cmp.Diff(want, dense, cmpopts.EquateApprox(0, tolerance)); diff != "" {
		t.Errorf("Densify() mismatch (-want +got):\n%s", diff)
	}
}

func TestDensify_Degenerate(t *testing.T) {
	single := Path{{X: 1, Y: 2}}
	assert.Equal(t, single, Densify(single, 1))
	assert.Empty(t, Densify(nil, 1))

	path := Path{{X: 0, Y: 0}, {X: 10, Y: 0}}
	assert.Equal(t, path, Densify(path, 0))
	assert.Equal(t, path, Densify(path, -5))
	assert.Equal(t, path, Densify(path, math.NaN()))
}

func TestSmooth_ZeroIterationsIsIdentity(t *testing.T) {
	path := Path{{X: 0, Y: 0}, {X: 10, Y: 3}, {X: 20, Y: -4}, {X: 30, Y: 0}}
	assert.Equal(t, path, Smooth(path, 0))
}

func TestSmooth_ShortPathIsIdentity(t *testing.T) {
	path := Path{{X: 0, Y: 0}, {X: 10, Y: 3}}
	assert.Equal(t, path, Smooth(path, 5))
}

func TestSmooth_PinsEndpoints(t *testing.T) {
	path := Path{{X: 0, Y: 0}, {X: 10, Y: 30}, {X: 20, Y: -40}, {X: 30, Y: 10}, {X: 40, Y: 0}}

	for _, iterations := range []int{1, 2, 5, 50} {
		smoothed := Smooth(path, iterations)

		require.Len(t, smoothed, len(path))
		assert.Equal(t, path[0], smoothed[0])
		assert.Equal(t, path[len(path)-1], smoothed[len(smoothed)-1])
	}
}

func TestSmooth_SinglePass(t *testing.T) {
	path := Path{{X: 0, Y: 0}, {X: 3, Y: 3}, {X: 6, Y: 0}, {X: 9, Y: 3}}

	want := Path{
		{X: 0, Y: 0},
		{X: 3, Y: 1},
		{X: 6, Y: 2},
		{X: 9, Y: 3},
	}
	if diff := cmp.Diff(want, Smooth(path, 1), cmpopts.EquateApprox(0, tolerance)); diff != "" {
		t.Errorf("Smooth() mismatch (-want +got):\n%s", diff)
	}
}

func TestSmooth_DoesNotModifyInput(t *testing.T) {
	path := Path{{X: 0, Y: 0}, {X: 3, Y: 3}, {X: 6, Y: 0}}
	original := path.Clone()

	_ = Smooth(path, 3)
	assert.Equal(t, original, path)
}

func TestSmooth_Converges(t *testing.T) {
	path := Path{{X: 0, Y: 0}, {X: 10, Y: 20}, {X: 20, Y: -20}, {X: 30, Y: 20}, {X: 40, Y: -20}, {X: 50, Y: 0}}

	shift := func(a, b Path) float64 {
		var total float64
		for i := range a {
			total += Distance(a[i], b[i])
		}
		return total
	}

	prev := Smooth(path, 1)
	prevShift := shift(path, prev)
	for i := 2; i <= 10; i++ {
		next := Smooth(path, i)
		s := shift(prev, next)
		if s > prevShift+tolerance {
			t.Fatalf("iteration %d moved points by %f, previous iteration moved %f", i, s, prevShift)
		}
		prev, prevShift = next, s
	}
}
