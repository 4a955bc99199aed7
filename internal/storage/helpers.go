package storage

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/roman-kulish/flythrough/internal/crs"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && *err == nil && !errors.Is(cErr, sql.ErrTxDone) {
		*err = cErr
	}
}

func toRasterData(r *Raster) *rasterData {
	return &rasterData{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.UTC(),
		Name:      r.Name,
		CRS:       string(r.CRS),
		OriginX:   r.OriginX,
		OriginY:   r.OriginY,
		CellSize:  r.CellSize,
		Cols:      r.Cols,
		Rows:      r.Rows,
		NoData: sql.NullFloat64{
			Float64: toSQLNullType(r.NoData),
			Valid:   r.NoData != nil,
		},
		Metadata: sql.NullString{
			String: toSQLNullType(r.Metadata),
			Valid:  r.Metadata != nil,
		},
	}
}

func fromRasterData(d *rasterData) *Raster {
	r := &Raster{
		ID:        d.ID,
		CreatedAt: d.CreatedAt,
		Name:      d.Name,
		CRS:       crs.CRS(d.CRS),
		OriginX:   d.OriginX,
		OriginY:   d.OriginY,
		CellSize:  d.CellSize,
		Cols:      d.Cols,
		Rows:      d.Rows,
	}
	if d.NoData.Valid {
		r.NoData = &d.NoData.Float64
	}
	if d.Metadata.Valid {
		r.Metadata = &d.Metadata.String
	}
	return r
}

func toSQLNullType[T float64 | string](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func scanRaster(sc interface{ Scan(...any) error }) (*Raster, error) {
	var d rasterData
	err := sc.Scan(
		&d.ID,
		&d.CreatedAt,
		&d.Name,
		&d.CRS,
		&d.OriginX,
		&d.OriginY,
		&d.CellSize,
		&d.Cols,
		&d.Rows,
		&d.NoData,
		&d.Metadata,
	)
	if err != nil {
		return nil, err
	}
	return fromRasterData(&d), nil
}

// encodeRow packs cell values as little-endian IEEE 754 doubles.
func encodeRow(values []float64) []byte {
	buf := make([]byte, 0, len(values)*8)
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}

func decodeRow(data []byte, cols int) ([]float64, error) {
	if len(data) != cols*8 {
		return nil, fmt.Errorf("row has %d bytes, expected %d", len(data), cols*8)
	}
	values := make([]float64, cols)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return values, nil
}
