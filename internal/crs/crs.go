// Package crs identifies coordinate reference systems and converts points
// between the few the flythrough engine works in.
//
// Only geographic WGS84 (EPSG:4326) and spherical Web Mercator (EPSG:3857)
// are supported. Anything that needs a real projection library is rejected
// with ErrUnsupported.
package crs

import (
	"errors"
	"fmt"
	"strings"

	geo "github.com/paulmach/go.geo"

	"github.com/roman-kulish/flythrough/internal/geom"
)

// CRS is an authority code such as "EPSG:3857".
type CRS string

const (
	WGS84       CRS = "EPSG:4326"
	WebMercator CRS = "EPSG:3857"
)

var ErrUnsupported = errors.New("unsupported coordinate reference system")

var aliases = map[string]CRS{
	"EPSG:4326":   WGS84,
	"4326":        WGS84,
	"WGS84":       WGS84,
	"CRS84":       WGS84,
	"OGC:CRS84":   WGS84,
	"EPSG:3857":   WebMercator,
	"3857":        WebMercator,
	"EPSG:900913": WebMercator,
	"900913":      WebMercator,
	"EPSG:3785":   WebMercator,
}

// Parse resolves a CRS name or alias. An empty string is an error.
func Parse(s string) (CRS, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if c, ok := aliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
}

// UnmarshalText implements encoding.TextUnmarshaler so that configuration
// files can carry CRS names directly.
func (c *CRS) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c CRS) String() string {
	return string(c)
}

// IsGeographic reports whether coordinates are angular (longitude, latitude).
func (c CRS) IsGeographic() bool {
	return c == WGS84
}

// WorkingCRS returns the planar system used for geometry work. Distances on a
// geographic system are meaningless in metres, so those are swapped for
// Web Mercator.
func WorkingCRS(project CRS) CRS {
	if project.IsGeographic() {
		return WebMercator
	}
	return project
}

// Transform converts points from one CRS to another.
type Transform struct {
	from, to CRS
	apply    func(p *geo.Point)
}

// NewTransform returns a transform between two supported systems. Converting
// a system to itself yields the identity transform.
func NewTransform(from, to CRS) (*Transform, error) {
	if _, ok := aliases[string(from)]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, from)
	}
	if _, ok := aliases[string(to)]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, to)
	}

	t := &Transform{from: from, to: to}
	switch {
	case from == to:
	case from == WGS84 && to == WebMercator:
		t.apply = geo.Mercator.Project
	case from == WebMercator && to == WGS84:
		t.apply = geo.Mercator.Inverse
	default:
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnsupported, from, to)
	}

	return t, nil
}

// IsIdentity reports whether Apply returns its input unchanged.
func (t *Transform) IsIdentity() bool {
	return t.apply == nil
}

// Apply converts a single point. Geographic points are (longitude, latitude).
func (t *Transform) Apply(p geom.Point) (geom.Point, error) {
	if t.apply == nil {
		return p, nil
	}
	if t.from == WGS84 && (p.Y < -90 || p.Y > 90 || p.X < -180 || p.X > 180) {
		return geom.Point{}, fmt.Errorf("point (%f, %f) is outside of %s bounds", p.X, p.Y, WGS84)
	}

	gp := geo.NewPoint(p.X, p.Y)
	t.apply(gp)

	return geom.Point{X: gp.X(), Y: gp.Y()}, nil
}

// ApplyPath converts every point of path into a new path.
func (t *Transform) ApplyPath(path geom.Path) (geom.Path, error) {
	if t.apply == nil {
		return path.Clone(), nil
	}

	out := make(geom.Path, len(path))
	for i, p := range path {
		q, err := t.Apply(p)
		if err != nil {
			return nil, fmt.Errorf("transforming point %d: %w", i, err)
		}
		out[i] = q
	}
	return out, nil
}
