package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/flythrough/internal/elevation"
)

// Store keeps elevation rasters (DEMs) so that scenarios can refer to terrain
// by ID instead of re-parsing grid files on every run.
type Store interface {
	// CreateRaster registers raster metadata and returns its unique identifier.
	// ID and CreatedAt of r are ignored.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - r: Raster geometry (origin, cell size, dimensions, no-data value)
	//   - metadata: Optional free-form metadata. Can be string, []byte, or JSON-serializable object
	//
	// Returns:
	//   - rasterID: Unique identifier for the created raster
	//   - error: If creation fails or context is cancelled
	CreateRaster(ctx context.Context, r *Raster, metadata any) (rasterID int64, err error)

	// Raster retrieves raster metadata by its ID.
	//
	// Returns:
	//   - raster: Raster metadata
	//   - error: ErrNoData if the raster does not exist
	Raster(ctx context.Context, id int64) (raster *Raster, err error)

	// Rasters returns all stored rasters ordered by ID.
	Rasters(ctx context.Context) (rasters []*Raster, err error)

	// StoreRows saves grid rows starting at firstRow. Every row must have
	// exactly Cols values. Existing rows with the same index are replaced.
	// All rows are stored in a single atomic transaction.
	StoreRows(ctx context.Context, rasterID int64, firstRow int, rows [][]float64) error

	// ReadRows returns a reader over the rows of a raster.
	// The returned RowReader must be closed after use.
	ReadRows(ctx context.Context, rasterID int64, opts ...ReaderOption) (RowReader, error)

	// ImportGrid stores an in-memory grid as a new raster.
	ImportGrid(ctx context.Context, name string, g *elevation.Grid, metadata any) (rasterID int64, err error)

	// LoadGrid reads a raster back into memory. Missing rows read as no-data.
	LoadGrid(ctx context.Context, rasterID int64) (*elevation.Grid, error)

	// Close releases all database connections and resources.
	// It is safe to call Close multiple times.
	Close() error
}

var _ Store = (*SqliteStore)(nil)
