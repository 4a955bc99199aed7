package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/flythrough/internal/flythrough"
	"github.com/roman-kulish/flythrough/internal/geom"
	"github.com/roman-kulish/flythrough/internal/pose"
	"github.com/roman-kulish/flythrough/internal/render"
	"github.com/roman-kulish/flythrough/internal/telemetry"
)

const (
	DefaultFrameRate = 30.0

	// loggedPoses is the number of poses at the start of playback written to
	// the debug log.
	loggedPoses = 5
)

var (
	// ErrPlaying is returned when a sequence is loaded while playback runs.
	ErrPlaying = errors.New("playback is running")

	// ErrRenderer is returned when the renderer rejected poses during playback.
	ErrRenderer = errors.New("renderer rejected poses")
)

// Solver computes the camera pose for one frame.
type Solver interface {
	Solve(ctx context.Context, cam flythrough.Keyframe, look pose.Target) pose.Solution
}

// WithLogger sets the logger for the runner
func WithLogger(logger *slog.Logger) func(r *Runner) {
	return func(r *Runner) {
		r.logger = logger.With(slog.String("component", "playback"))
	}
}

// WithFrameRate sets the number of ticks per second. Non-positive values
// keep the default.
func WithFrameRate(fps float64) func(r *Runner) {
	return func(r *Runner) {
		if fps > 0 && !math.IsInf(fps, 0) {
			r.frameRate = fps
		}
	}
}

// Runner plays a sequence in real time on a fixed tick and applies the
// solved poses to a renderer. Every tick advances the flythrough by exactly
// 1/frameRate seconds, regardless of how late the tick fires.
type Runner struct {
	solver Solver
	port   render.Port

	mu     sync.Mutex
	player Player
	last   *telemetry.Telemetry

	isPlaying atomic.Bool
	cancel    context.CancelFunc
	stopped   chan struct{}

	frameRate float64
	logger    *slog.Logger
}

var _ telemetry.Provider = (*Runner)(nil)

// NewRunner creates a new Runner instance with a discard logger
func NewRunner(solver Solver, port render.Port, options ...func(r *Runner)) *Runner {
	r := Runner{
		solver:    solver,
		port:      port,
		frameRate: DefaultFrameRate,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

// Load installs a new sequence. Playback must be stopped first.
func (r *Runner) Load(seq flythrough.Sequence) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isPlaying.Load() {
		return ErrPlaying
	}

	r.player.Load(seq)
	r.last = nil
	return nil
}

// BeginPlayback waits for the renderer to become ready and plays the loaded
// sequence to the end. The returned channel is closed when playback ends and
// carries an error first if the renderer rejected poses.
func (r *Runner) BeginPlayback(ctx context.Context) (<-chan error, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isPlaying.Load() {
		return nil, ErrPlaying
	}
	if err := r.player.Start(); err != nil {
		return nil, fmt.Errorf("starting playback: %w", err)
	}
	seq := r.player.Sequence()

	// cancel and stopped are published under the lock before playback
	// becomes visible to Stop.
	ctx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	r.cancel, r.stopped = cancel, stopped
	r.isPlaying.Store(true)

	playbackStopped := make(chan error, 1)

	go func() {
		defer func() {
			cancel()
			r.isPlaying.Store(false)
			close(stopped)
			close(playbackStopped)
		}()

		select {
		case <-r.port.Ready():
		case <-ctx.Done():
			r.logger.Info("playback cancelled before renderer was ready")
			return
		}

		r.logger.Info("playback started",
			slog.String("sequence", seq.ID.String()),
			slog.Int("keyframes", len(seq.Keyframes)),
			slog.Float64("duration", seq.TotalDuration),
			slog.Float64("fps", r.frameRate))

		if err := r.play(ctx, seq); err != nil {
			playbackStopped <- err
		}
	}()

	return playbackStopped, nil
}

func (r *Runner) play(ctx context.Context, seq flythrough.Sequence) error {
	first, second := seq.Keyframes[0], seq.Keyframes[1]
	initial := r.solver.Solve(ctx, first, pose.Target{X: second.X, Y: second.Y, GroundZ: second.GroundZ})
	if err := r.port.ApplyPose(initial.Pose); err != nil {
		r.logger.Warn("initial pose rejected", slog.Any("error", err))
	}

	dt := 1 / r.frameRate
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	var (
		frames, rejected int
		lastErr          error
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("playback stopped", slog.Int("frames", frames))
			return nil
		case <-ticker.C:
		}

		r.mu.Lock()
		frame, ok := r.player.Advance(dt)
		r.mu.Unlock()

		if !ok {
			break
		}
		frames++

		sol := r.solver.Solve(ctx, frame.State, frame.Look)
		if frames <= loggedPoses {
			r.logger.Debug("camera pose",
				slog.Int("frame", frames),
				slog.Int("segment", frame.Segment),
				slog.Float64("t", frame.T),
				slog.Float64("x", sol.Pose.Center.X),
				slog.Float64("y", sol.Pose.Center.Y),
				slog.Float64("z", sol.Pose.Center.Z),
				slog.Float64("distance", sol.Pose.Distance),
				slog.Float64("pitch", sol.Pose.Pitch),
				slog.Float64("yaw", sol.Pose.Yaw),
				slog.Bool("corrected", sol.Corrected))
		}

		if err := r.port.ApplyPose(sol.Pose); err != nil {
			if rejected == 0 {
				r.logger.Warn("pose rejected by renderer", slog.Any("error", err))
			}
			rejected++
			lastErr = err
		}

		r.record(frame, sol, seq.TotalDuration, dt)
	}

	r.logger.Info("playback finished", slog.Int("frames", frames), slog.Int("rejected", rejected))

	if rejected > 0 {
		return fmt.Errorf("%w: %d of %d: %w", ErrRenderer, rejected, frames, lastErr)
	}
	return nil
}

func (r *Runner) record(frame Frame, sol pose.Solution, duration, dt float64) {
	k := frame.State
	t := telemetry.Telemetry{
		Timestamp: time.Now(),
		Elapsed:   frame.Elapsed,
		Duration:  duration,
		Segment:   frame.Segment,
		X:         k.X,
		Y:         k.Y,
		Altitude:  &sol.CameraZ,
		GroundZ:   &k.GroundZ,
		Roll:      &k.Roll,
		Pitch:     &k.Pitch,
		Yaw:       &k.Yaw,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev := r.last; prev != nil && dt > 0 {
		from, to := geom.Point{X: prev.X, Y: prev.Y}, geom.Point{X: k.X, Y: k.Y}
		speed := geom.Distance(from, to) / dt
		t.GroundSpeed = &speed
		if speed > 0 {
			course := geom.Bearing(from, to)
			t.GroundCourse = &course
		}
	}
	r.last = &t
}

// Stop cancels playback, waits for it to wind down and rewinds the player.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, stopped := r.cancel, r.stopped
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-stopped
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.player.Stop()
}

// IsPlaying returns true while the playback goroutine runs
func (r *Runner) IsPlaying() bool {
	return r.isPlaying.Load()
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.player.State()
}

func (r *Runner) Progress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.player.Progress()
}

// Get returns a copy of the latest telemetry snapshot.
func (r *Runner) Get() *telemetry.Telemetry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last == nil {
		return nil
	}
	t := *r.last
	return &t
}
