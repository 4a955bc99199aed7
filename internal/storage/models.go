package storage

import (
	"database/sql"
	"time"

	"github.com/roman-kulish/flythrough/internal/crs"
)

// Raster describes a stored elevation grid. Cell values live in separate
// rows, one per grid row, north first.
type Raster struct {
	ID        int64
	CreatedAt time.Time
	Name      string
	CRS       crs.CRS
	OriginX   float64
	OriginY   float64
	CellSize  float64
	Cols      int
	Rows      int
	NoData    *float64
	Metadata  *string
}

// Row is one decoded grid row.
type Row struct {
	Index  int
	Values []float64
}

type rasterData struct {
	ID        int64
	CreatedAt time.Time
	Name      string
	CRS       string
	OriginX   float64
	OriginY   float64
	CellSize  float64
	Cols      int
	Rows      int
	NoData    sql.NullFloat64
	Metadata  sql.NullString
}

type rowData struct {
	RasterID int64
	Index    int
	Data     []byte
}
