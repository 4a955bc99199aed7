package route

import (
	"context"
	"fmt"
	"os"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/geom"
)

// GPXFile reads a route from a GPX document on disk. GPX coordinates are
// always WGS84.
type GPXFile struct {
	Path string
}

func (f *GPXFile) Route(context.Context) (*Route, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading GPX file: %w", err)
	}

	r, err := ParseGPX(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return r, nil
}

// ParseGPX parses and flattens a GPX document.
func ParseGPX(data []byte) (*Route, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing GPX: %w", err)
	}

	r := FromGPX(g)
	if err = r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// FromGPX flattens the line geometry of a GPX document: every track
// segment, then every route, in document order. Waypoints are only used when
// the document has no line geometry at all.
func FromGPX(g *gpx.GPX) *Route {
	r := &Route{Name: g.Name, CRS: crs.WGS84}

	for _, track := range g.Tracks {
		if r.Name == "" {
			r.Name = track.Name
		}
		for _, segment := range track.Segments {
			r.Points = appendGPXPoints(r.Points, segment.Points)
		}
	}

	for _, rte := range g.Routes {
		if r.Name == "" {
			r.Name = rte.Name
		}
		r.Points = appendGPXPoints(r.Points, rte.Points)
	}

	if len(r.Points) == 0 {
		r.Points = appendGPXPoints(r.Points, g.Waypoints)
	}

	return r
}

func appendGPXPoints(path geom.Path, points []gpx.GPXPoint) geom.Path {
	for _, p := range points {
		path = append(path, geom.Point{X: p.Longitude, Y: p.Latitude})
	}
	return path
}
