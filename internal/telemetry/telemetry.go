// Package telemetry describes the live state of a running flythrough.
package telemetry

import (
	"time"
)

// Telemetry is a snapshot of the virtual camera taken on a playback tick.
type Telemetry struct {
	Timestamp    time.Time `json:"timestamp"`              // Wall clock time of the tick
	Elapsed      float64   `json:"elapsed"`                // Flythrough time in seconds
	Duration     float64   `json:"duration"`               // Total flythrough time in seconds
	Segment      int       `json:"segment"`                // Index of the current route segment
	X            float64   `json:"x"`                      // Camera easting in the working CRS
	Y            float64   `json:"y"`                      // Camera northing in the working CRS
	Altitude     *float64  `json:"altitude,omitempty"`     // Camera altitude in meters
	GroundZ      *float64  `json:"groundZ,omitempty"`      // Scaled terrain height under the camera
	Roll         *float64  `json:"roll,omitempty"`         // Roll angle in degrees
	Pitch        *float64  `json:"pitch,omitempty"`        // Pitch angle in degrees
	Yaw          *float64  `json:"yaw,omitempty"`          // Yaw angle in degrees
	GroundSpeed  *float64  `json:"groundSpeed,omitempty"`  // Ground speed in m/s
	GroundCourse *float64  `json:"groundCourse,omitempty"` // Ground course (heading) in degrees
}

// Progress returns the completed share of the flythrough in [0, 1].
func (t *Telemetry) Progress() float64 {
	if t.Duration <= 0 {
		return 1
	}
	return min(max(t.Elapsed/t.Duration, 0), 1)
}

// Clearance returns the camera height above the ground, if both are known.
func (t *Telemetry) Clearance() (float64, bool) {
	if t.Altitude == nil || t.GroundZ == nil {
		return 0, false
	}
	return *t.Altitude - *t.GroundZ, true
}
