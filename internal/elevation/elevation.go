// Package elevation answers single-point terrain height queries.
//
// A query carries the coordinate system of the point, so sources that store
// terrain in a different system convert on the fly. Every failure mode (point
// outside the raster, no-data cell, failed conversion, timeout) is reported as
// ErrNotAvailable, which callers treat as "no terrain here" rather than as a
// fatal error.
package elevation

import (
	"context"
	"errors"
	"math"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/geom"
)

var ErrNotAvailable = errors.New("elevation not available")

// Source returns the terrain height at p, given in coordinate system c.
type Source interface {
	ElevationAt(ctx context.Context, p geom.Point, c crs.CRS) (float64, error)
}

// Func adapts an ordinary function to the Source interface.
type Func func(ctx context.Context, p geom.Point, c crs.CRS) (float64, error)

func (f Func) ElevationAt(ctx context.Context, p geom.Point, c crs.CRS) (float64, error) {
	return f(ctx, p, c)
}

// Constant is flat terrain at a fixed height.
type Constant struct {
	Height float64
}

func (s Constant) ElevationAt(context.Context, geom.Point, crs.CRS) (float64, error) {
	return s.Height, nil
}

// Sample queries src and folds every failure into ok == false. A nil source
// and non-finite heights are treated as unavailable.
func Sample(ctx context.Context, src Source, p geom.Point, c crs.CRS) (z float64, ok bool) {
	if src == nil {
		return 0, false
	}

	z, err := src.ElevationAt(ctx, p, c)
	if err != nil || math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, false
	}
	return z, true
}

// Scaled multiplies every height of Source by Factor, matching terrain drawn
// with vertical exaggeration.
type Scaled struct {
	Source Source
	Factor float64
}

func (s Scaled) ElevationAt(ctx context.Context, p geom.Point, c crs.CRS) (float64, error) {
	if s.Source == nil {
		return 0, ErrNotAvailable
	}

	z, err := s.Source.ElevationAt(ctx, p, c)
	if err != nil {
		return 0, err
	}
	return z * s.Factor, nil
}
