package render

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/roman-kulish/flythrough/internal/pose"
)

// Recorder keeps every view and pose it receives in memory. Playback can be
// replayed from it, and the plan renderer draws the look-at trace from it.
type Recorder struct {
	mu       sync.Mutex
	views    []View
	poses    []pose.CameraPose
	viewport Viewport
}

func NewRecorder() *Recorder {
	return &Recorder{viewport: Viewport{ID: uuid.New(), Name: "recorder", Version: "1"}}
}

func (r *Recorder) Configure(v View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.views = append(r.views, v)
	return nil
}

func (r *Recorder) ApplyPose(p pose.CameraPose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.poses = append(r.poses, p)
	return nil
}

func (r *Recorder) Viewport() Viewport {
	return r.viewport
}

func (r *Recorder) Ready() <-chan struct{} {
	return closedChan
}

// Poses returns a copy of the recorded poses.
func (r *Recorder) Poses() []pose.CameraPose {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.poses)
}

// Views returns a copy of the recorded view settings.
func (r *Recorder) Views() []View {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.views)
}
