// Package playback turns a keyframe sequence into a stream of camera poses.
//
// Player is a pure state machine advanced by a caller supplied time step.
// Runner drives a Player from a fixed rate clock and pushes the solved poses
// to a renderer.
package playback

import (
	"errors"

	"github.com/roman-kulish/flythrough/internal/flythrough"
	"github.com/roman-kulish/flythrough/internal/geom"
	"github.com/roman-kulish/flythrough/internal/pose"
)

const (
	// segmentEpsilon is the shortest segment duration; coincident keyframes
	// would otherwise divide by zero.
	segmentEpsilon = 0.001

	// lookaheadBlendStart is the eased segment position after which the
	// look target starts moving towards the keyframe after next.
	lookaheadBlendStart = 0.8
)

var (
	ErrEmptySequence = errors.New("sequence has fewer than two keyframes")
	ErrFinished      = errors.New("playback finished, load a new sequence")
)

type State int

const (
	Idle State = iota
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Frame is the output of a single tick.
type Frame struct {
	Segment int

	// LocalT is the linear position within the segment, T the eased one.
	LocalT float64
	T      float64

	// Elapsed is the flythrough time the frame was computed for.
	Elapsed float64

	State flythrough.Keyframe
	Look  pose.Target
}

// Player is not safe for concurrent use.
type Player struct {
	seq     flythrough.Sequence
	state   State
	index   int
	elapsed float64
}

// Load installs a new sequence and resets the player to Idle.
func (p *Player) Load(seq flythrough.Sequence) {
	p.seq = seq
	p.reset()
}

func (p *Player) reset() {
	p.state = Idle
	p.index = 0
	p.elapsed = 0
}

func (p *Player) Start() error {
	switch {
	case p.state == Playing:
		return nil
	case p.state == Finished:
		return ErrFinished
	case len(p.seq.Keyframes) < 2:
		return ErrEmptySequence
	}

	// Skip leading segments of zero duration.
	kf := p.seq.Keyframes
	for p.index < len(kf)-2 && p.elapsed >= kf[p.index+1].Time {
		p.index++
	}

	p.state = Playing
	return nil
}

// Stop returns the player to Idle, rewinding the loaded sequence.
func (p *Player) Stop() {
	p.reset()
}

func (p *Player) State() State {
	return p.state
}

func (p *Player) Sequence() flythrough.Sequence {
	return p.seq
}

func (p *Player) Elapsed() float64 {
	return p.elapsed
}

// Progress returns the share of the sequence played in [0, 1].
func (p *Player) Progress() float64 {
	if p.state == Finished {
		return 1
	}
	if p.seq.TotalDuration <= 0 {
		return 0
	}
	return geom.Clamp(p.elapsed/p.seq.TotalDuration, 0, 1)
}

// Advance computes the frame for the current time and then moves the clock
// forward by dt. It returns false once the player is not playing.
func (p *Player) Advance(dt float64) (Frame, bool) {
	if p.state != Playing {
		return Frame{}, false
	}

	kf := p.seq.Keyframes
	if p.index >= len(kf)-1 {
		p.state = Finished
		return Frame{}, false
	}

	a, b := kf[p.index], kf[p.index+1]
	c, hasNext := b, p.index+2 < len(kf)
	if hasNext {
		c = kf[p.index+2]
	}

	segDuration := max(b.Time-a.Time, segmentEpsilon)
	localT := geom.Clamp((p.elapsed-a.Time)/segDuration, 0, 1)
	t := geom.Smoothstep(localT)

	look := pose.Target{X: b.X, Y: b.Y, GroundZ: b.GroundZ}
	if hasNext && t > lookaheadBlendStart {
		blend := (t - lookaheadBlendStart) / (1 - lookaheadBlendStart)
		look = pose.Target{
			X:       geom.Lerp(b.X, c.X, blend),
			Y:       geom.Lerp(b.Y, c.Y, blend),
			GroundZ: geom.Lerp(b.GroundZ, c.GroundZ, blend),
		}
	}

	frame := Frame{
		Segment: p.index,
		LocalT:  localT,
		T:       t,
		Elapsed: p.elapsed,
		State:   interpolate(a, b, t),
		Look:    look,
	}

	p.elapsed += dt
	for p.index < len(kf)-1 && p.elapsed >= kf[p.index+1].Time {
		p.index++
	}
	if p.index >= len(kf)-1 {
		p.state = Finished
	}

	return frame, true
}

func interpolate(a, b flythrough.Keyframe, t float64) flythrough.Keyframe {
	return flythrough.Keyframe{
		Time:    geom.Lerp(a.Time, b.Time, t),
		X:       geom.Lerp(a.X, b.X, t),
		Y:       geom.Lerp(a.Y, b.Y, t),
		Z:       geom.Lerp(a.Z, b.Z, t),
		GroundZ: geom.Lerp(a.GroundZ, b.GroundZ, t),
		Yaw:     geom.LerpAngle(a.Yaw, b.Yaw, t),
		Pitch:   geom.Lerp(a.Pitch, b.Pitch, t),
		Roll:    geom.Lerp(a.Roll, b.Roll, t),
	}
}
