package playback

import (
	"context"
	"fmt"

	"github.com/roman-kulish/flythrough/internal/flythrough"
	"github.com/roman-kulish/flythrough/internal/pose"
)

// Step is one simulated frame and the pose solved for it.
type Step struct {
	Frame    Frame
	Solution pose.Solution
}

// Simulate plays seq to the end without a clock and returns every frame.
func Simulate(ctx context.Context, seq flythrough.Sequence, solver Solver, frameRate float64) ([]Step, error) {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}

	var p Player
	p.Load(seq)
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("simulating playback: %w", err)
	}

	dt := 1 / frameRate
	steps := make([]Step, 0, int(seq.TotalDuration*frameRate)+1)
	for {
		if err := ctx.Err(); err != nil {
			return steps, err
		}

		frame, ok := p.Advance(dt)
		if !ok {
			return steps, nil
		}
		steps = append(steps, Step{Frame: frame, Solution: solver.Solve(ctx, frame.State, frame.Look)})
	}
}
