// Package render connects the flythrough engine to whatever draws the scene.
//
// The engine only talks to a Port: it configures the view once, waits until
// the renderer reports it is ready and then pushes one camera pose per frame.
// There is no acknowledgement; a renderer that falls behind drops poses.
package render

import (
	"github.com/google/uuid"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/pose"
)

// View holds the settings the renderer applies once per flythrough.
type View struct {
	CRS                  crs.CRS `json:"crs"`
	FieldOfView          float64 `json:"fieldOfView"`
	VerticalExaggeration float64 `json:"verticalExaggeration"`
	TerrainShading       bool    `json:"terrainShading"`
	Overlays             bool    `json:"overlays"`
}

// Viewport identifies the surface poses are drawn on.
type Viewport struct {
	ID      uuid.UUID
	Name    string
	Version string
}

// Port is the renderer as seen by the engine.
type Port interface {
	// Configure applies view settings ahead of playback.
	Configure(View) error

	// ApplyPose moves the camera. Errors are reported but never stop playback.
	ApplyPose(pose.CameraPose) error

	Viewport() Viewport

	// Ready is closed once the renderer can accept poses.
	Ready() <-chan struct{}
}

// closedChan is returned by ports that are ready immediately.
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
