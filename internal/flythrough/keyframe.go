package flythrough

import (
	"github.com/google/uuid"

	"github.com/roman-kulish/flythrough/internal/geom"
)

// Keyframe is the camera state at one route vertex.
type Keyframe struct {
	// Time in seconds since the start of the flythrough.
	Time float64

	X, Y float64

	// Z is the absolute camera altitude, GroundZ the scaled terrain below.
	Z       float64
	GroundZ float64

	Yaw   float64 // [0, 360)
	Pitch float64 // [-90, 90]
	Roll  float64 // [-45, 45]
}

// Position returns the horizontal position of the keyframe.
func (k Keyframe) Position() geom.Point {
	return geom.Point{X: k.X, Y: k.Y}
}

// Sequence is a generated flythrough. An empty sequence means generation
// failed.
type Sequence struct {
	ID        uuid.UUID
	Keyframes []Keyframe

	// TotalDuration is the time of the last keyframe.
	TotalDuration float64

	// MaxElevation is the highest unscaled terrain found along the route.
	MaxElevation float64

	// BelowTerrainPeak is set in FixedAMSL mode when the requested altitude
	// is lower than the highest terrain on the route.
	BelowTerrainPeak bool

	// Length of the flown path.
	Length float64
}

func (s *Sequence) Empty() bool {
	return len(s.Keyframes) == 0
}
