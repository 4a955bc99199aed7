package route

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/geom"
)

const multiPartGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <wpt lat="9" lon="9"><name>ignored</name></wpt>
  <trk>
    <name>Ridge</name>
    <trkseg>
      <trkpt lat="46.0" lon="7.0"></trkpt>
      <trkpt lat="46.1" lon="7.1"></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="46.2" lon="7.2"></trkpt>
    </trkseg>
  </trk>
  <rte>
    <rtept lat="46.3" lon="7.3"></rtept>
  </rte>
</gpx>`

const waypointsGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <wpt lat="1" lon="2"></wpt>
  <wpt lat="3" lon="4"></wpt>
</gpx>`

func TestParseGPX_FlattensInOrder(t *testing.T) {
	r, err := ParseGPX([]byte(multiPartGPX))
	require.NoError(t, err)

	assert.Equal(t, "Ridge", r.Name)
	assert.Equal(t, crs.WGS84, r.CRS)
	assert.Equal(t, geom.Path{
		{X: 7.0, Y: 46.0},
		{X: 7.1, Y: 46.1},
		{X: 7.2, Y: 46.2},
		{X: 7.3, Y: 46.3},
	}, r.Points)
}

func TestParseGPX_WaypointsFallback(t *testing.T) {
	r, err := ParseGPX([]byte(waypointsGPX))
	require.NoError(t, err)
	assert.Equal(t, geom.Path{{X: 2, Y: 1}, {X: 4, Y: 3}}, r.Points)
}

func TestParseGPX_TooFewPoints(t *testing.T) {
	doc := `<?xml version="1.0"?><gpx version="1.1" creator="t" xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg><trkpt lat="1" lon="1"/></trkseg></trk></gpx>`

	_, err := ParseGPX([]byte(doc))
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestGPXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "route.gpx")
	require.NoError(t, os.WriteFile(path, []byte(multiPartGPX), 0o600))

	r, err := (&GPXFile{Path: path}).Route(context.Background())
	require.NoError(t, err)
	assert.Len(t, r.Points, 4)

	_, err = (&GPXFile{Path: filepath.Join(t.TempDir(), "missing.gpx")}).Route(context.Background())
	assert.Error(t, err)
}

func TestVertices(t *testing.T) {
	v := &Vertices{
		Name:   "line",
		CRS:    crs.WebMercator,
		Points: [][2]float64{{0, 0}, {1000, 0}},
	}

	r, err := v.Route(context.Background())
	require.NoError(t, err)
	assert.Equal(t, geom.Path{{X: 0, Y: 0}, {X: 1000, Y: 0}}, r.Points)

	v.Points = v.Points[:1]
	_, err = v.Route(context.Background())
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestRoute_To(t *testing.T) {
	r := &Route{
		Name:   "geo",
		CRS:    crs.WGS84,
		Points: geom.Path{{X: 0, Y: 0}, {X: 1, Y: 0}},
	}

	m, err := r.To(crs.WebMercator)
	require.NoError(t, err)
	assert.Equal(t, crs.WebMercator, m.CRS)
	assert.InDelta(t, 111319.49, m.Points[1].X, 0.01)
	assert.InDelta(t, 0, m.Points[1].Y, 1e-6)

	// The original is untouched.
	assert.Equal(t, 1.0, r.Points[1].X)
}
