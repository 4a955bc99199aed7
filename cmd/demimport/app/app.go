package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/flythrough/internal/elevation"
	"github.com/roman-kulish/flythrough/internal/storage"
)

// importMetadata is stored alongside every imported raster.
type importMetadata struct {
	Source string  `json:"source"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Valid  int     `json:"valid"`
}

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	if config.List {
		return listRasters(ctx, store, logger)
	}
	return importGrid(ctx, store, config, logger)
}

func importGrid(ctx context.Context, store storage.Store, config *Config, logger *slog.Logger) error {
	f, err := os.Open(config.InputFile)
	if err != nil {
		return fmt.Errorf("opening grid: %w", err)
	}
	defer f.Close()

	logger.Info("reading grid", slog.String("file", config.InputFile), slog.String("crs", config.CRS.String()))

	g, err := elevation.ReadASCIIGrid(f, config.CRS)
	if err != nil {
		return fmt.Errorf("reading grid: %w", err)
	}

	stats := g.Stats()
	source, err := filepath.Abs(config.InputFile)
	if err != nil {
		source = config.InputFile
	}

	id, err := store.ImportGrid(ctx, config.Name, g, importMetadata{
		Source: source,
		Min:    stats.Min,
		Max:    stats.Max,
		Valid:  stats.Valid,
	})
	if err != nil {
		return fmt.Errorf("importing grid: %w", err)
	}

	logger.Info("grid imported",
		slog.Int64("rasterID", id),
		slog.String("name", config.Name),
		slog.String("size", fmt.Sprintf("%dx%d", g.Cols, g.Rows)),
		slog.String("cells", humanize.Comma(int64(g.Cols*g.Rows))),
		slog.Float64("cellSize", g.CellSize),
		slog.Float64("min", stats.Min),
		slog.Float64("max", stats.Max))
	return nil
}

func listRasters(ctx context.Context, store storage.Store, logger *slog.Logger) error {
	rasters, err := store.Rasters(ctx)
	if err != nil {
		return fmt.Errorf("listing rasters: %w", err)
	}

	if len(rasters) == 0 {
		logger.Info("no rasters stored")
		return nil
	}

	for _, r := range rasters {
		logger.Info("raster",
			slog.Int64("id", r.ID),
			slog.String("name", r.Name),
			slog.String("crs", r.CRS.String()),
			slog.String("size", fmt.Sprintf("%dx%d", r.Cols, r.Rows)),
			slog.String("imported", humanize.Time(r.CreatedAt)))
	}
	return nil
}
