package storage

import (
	_ "embed"
)

const (
	insertRasterSQL = `
INSERT INTO rasters (created_at,
                     name,
                     crs,
                     x_origin,
                     y_origin,
                     cell_size,
                     cols,
                     rows,
                     nodata,
                     metadata)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectRasterSQL = `
SELECT
    id,
    created_at,
    name,
    crs,
    x_origin,
    y_origin,
    cell_size,
    cols,
    rows,
    nodata,
    metadata
FROM rasters
WHERE
    id = ?`

	selectRastersSQL = `
SELECT
    id,
    created_at,
    name,
    crs,
    x_origin,
    y_origin,
    cell_size,
    cols,
    rows,
    nodata,
    metadata
FROM rasters
ORDER BY id`

	insertRowsSQL = `
INSERT OR REPLACE INTO raster_rows (raster_id,
                                    row_index,
                                    data)
VALUES `

	selectRowsSQL = `
SELECT
    row_index,
    data
FROM raster_rows
WHERE
    raster_id = ?
    AND row_index BETWEEN ? AND ?
ORDER BY row_index`

	optimizeSQL = `PRAGMA optimize`
)

//go:embed schema.sql
var initSchemaSQL string
