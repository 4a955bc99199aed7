// Package route supplies the ordered vertices a flythrough follows.
//
// Sources may hold several parts (GPX tracks, segments, routes). They are
// flattened in file order into a single path; the engine never branches.
package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/geom"
)

var ErrTooFewPoints = errors.New("route needs at least two points")

// Route is a flattened path and the CRS its points are expressed in.
type Route struct {
	Name   string
	CRS    crs.CRS
	Points geom.Path
}

// Source provides a route.
type Source interface {
	Route(ctx context.Context) (*Route, error)
}

// Validate checks that the route can be flown.
func (r *Route) Validate() error {
	if len(r.Points) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewPoints, len(r.Points))
	}
	if r.CRS == "" {
		return errors.New("route has no coordinate reference system")
	}
	return nil
}

// To returns a copy of the route with its points converted to target.
func (r *Route) To(target crs.CRS) (*Route, error) {
	t, err := crs.NewTransform(r.CRS, target)
	if err != nil {
		return nil, fmt.Errorf("creating transform: %w", err)
	}

	points, err := t.ApplyPath(r.Points)
	if err != nil {
		return nil, fmt.Errorf("transforming route %q: %w", r.Name, err)
	}

	return &Route{Name: r.Name, CRS: target, Points: points}, nil
}

// Vertices is a route given inline, typically in a scenario file.
type Vertices struct {
	Name   string       `yaml:"name"`
	CRS    crs.CRS      `yaml:"crs"`
	Points [][2]float64 `yaml:"points"`
}

func (v *Vertices) Route(context.Context) (*Route, error) {
	r := &Route{
		Name:   v.Name,
		CRS:    v.CRS,
		Points: make(geom.Path, len(v.Points)),
	}
	for i, p := range v.Points {
		r.Points[i] = geom.Point{X: p[0], Y: p[1]}
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
