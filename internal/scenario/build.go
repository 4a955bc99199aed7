package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/flythrough/internal/elevation"
	"github.com/roman-kulish/flythrough/internal/route"
	"github.com/roman-kulish/flythrough/internal/storage"
)

// Terrain is an opened elevation source. Grid is set for raster sources and
// is what the plan renderer draws.
type Terrain struct {
	Source elevation.Source
	Grid   *elevation.Grid
}

// RouteSource returns the configured route provider.
func (c *Config) RouteSource() route.Source {
	if c.Route.File != "" {
		return &route.GPXFile{Path: c.Route.File}
	}
	return &route.Vertices{Name: c.Route.Name, CRS: c.Route.CRS, Points: c.Route.Points}
}

// OpenTerrain loads the configured elevation source. Rasters are read fully
// into memory, so nothing needs closing afterwards.
func (c *Config) OpenTerrain(ctx context.Context, logger *slog.Logger) (*Terrain, error) {
	e := &c.Elevation

	var (
		g   *elevation.Grid
		err error
	)

	switch e.Type {
	case ElevationConstant:
		logger.Info("using constant terrain", slog.Float64("height", e.Height))
		return &Terrain{Source: elevation.Constant{Height: e.Height}}, nil

	case ElevationGrid:
		if g, err = readGrid(e); err != nil {
			return nil, err
		}

	case ElevationSqlite:
		if g, err = loadGrid(ctx, e); err != nil {
			return nil, err
		}

	default:
		return nil, NewConfigError("elevation.type", "unknown elevation source %q", e.Type)
	}

	g.Interpolation = e.Interpolation
	stats := g.Stats()

	logger.Info("terrain loaded",
		slog.String("type", string(e.Type)),
		slog.String("crs", g.CRS.String()),
		slog.String("cells", humanize.Comma(int64(g.Cols*g.Rows))),
		slog.Int("valid", stats.Valid),
		slog.Float64("min", stats.Min),
		slog.Float64("max", stats.Max),
		slog.String("interpolation", g.Interpolation.String()))

	return &Terrain{Source: g, Grid: g}, nil
}

func readGrid(e *ElevationConfig) (g *elevation.Grid, err error) {
	f, err := os.Open(e.File)
	if err != nil {
		return nil, fmt.Errorf("opening grid: %w", err)
	}
	defer f.Close()

	if g, err = elevation.ReadASCIIGrid(f, e.CRS); err != nil {
		return nil, fmt.Errorf("%s: %w", e.File, err)
	}
	return g, nil
}

func loadGrid(ctx context.Context, e *ElevationConfig) (g *elevation.Grid, err error) {
	if _, err = os.Stat(e.File); err != nil {
		return nil, fmt.Errorf("raster store: %w", err)
	}

	store := storage.NewSqliteStore(e.File)
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	if g, err = store.LoadGrid(ctx, e.RasterID); err != nil {
		return nil, fmt.Errorf("loading raster %d: %w", e.RasterID, err)
	}
	return g, nil
}
