package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
)

// ErrNoData indicates either that the requested raster does not exist,
// or that all available rows have been read from the reader.
var ErrNoData = fmt.Errorf("no data available")

// RowReader provides an iterator-based interface for reading raster rows.
type RowReader interface {
	// Raster returns metadata about the raster this reader is accessing.
	Raster() *Raster

	// Next advances the iterator and returns true if there is another row
	// to read, false when the iteration is complete or if an error occurred.
	Next(context.Context) bool

	// Current returns the current row in the iteration.
	// If called after Next() returns false, the behavior is undefined.
	Current() *Row

	// Error returns any error that occurred during iteration.
	// If Next() returns false, Error() should be checked to distinguish between
	// end of data and an error condition.
	Error() error

	// Close releases any resources associated with the reader.
	// After Close is called, the reader should not be used.
	Close() error
}

// ReaderOption configures a RowReader.
type ReaderOption func(*SqliteRowReader)

// WithRowRange limits the reader to rows first through last, inclusive.
func WithRowRange(first, last int) ReaderOption {
	return func(r *SqliteRowReader) {
		r.firstRow = &first
		r.lastRow = &last
	}
}

func newSqliteRowReader(ctx context.Context, db *sql.DB, rasterID int64, opts ...ReaderOption) (*SqliteRowReader, error) {
	rr := &SqliteRowReader{
		db:       db,
		rasterID: rasterID,
	}
	for _, opt := range opts {
		opt(rr)
	}
	if err := rr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return rr, nil
}

// SqliteRowReader implements RowReader for SQLite database backend.
// Rows missing from the database are filled with the raster's no-data
// value so that a reader always yields a contiguous block of rows.
type SqliteRowReader struct {
	db *sql.DB

	rasterID int64
	raster   *Raster

	firstRow *int // Optional first row filter
	lastRow  *int // Optional last row filter

	expected  int  // index of the row Next yields
	pending   *Row // row read from the database ahead of expected
	exhausted bool

	current *Row
	rows    *sql.Rows
	err     error
}

func (rr *SqliteRowReader) init(ctx context.Context) error {
	if rr.db == nil {
		return errors.New("database connection required")
	}
	if rr.rasterID <= 0 {
		return errors.New("raster ID required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading raster", fn: rr.loadRaster},
		{msg: "initializing filters", fn: rr.initFilters},
		{msg: "initializing query", fn: rr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (rr *SqliteRowReader) loadRaster(ctx context.Context) (err error) {
	rr.raster, err = loadRaster(ctx, rr.db, rr.rasterID)
	return
}

func (rr *SqliteRowReader) initFilters(context.Context) error {
	if rr.firstRow == nil {
		first := 0
		rr.firstRow = &first
	}
	if rr.lastRow == nil {
		last := rr.raster.Rows - 1
		rr.lastRow = &last
	}

	switch {
	case *rr.firstRow < 0 || *rr.lastRow >= rr.raster.Rows:
		return fmt.Errorf("row range %d-%d is outside of raster with %d rows", *rr.firstRow, *rr.lastRow, rr.raster.Rows)
	case *rr.firstRow > *rr.lastRow:
		return fmt.Errorf("first row %d is after last row %d", *rr.firstRow, *rr.lastRow)
	}

	rr.expected = *rr.firstRow
	return nil
}

func (rr *SqliteRowReader) initQuery(ctx context.Context) (err error) {
	stmt, err := rr.db.PrepareContext(ctx, selectRowsSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if rr.rows, err = stmt.QueryContext(ctx, rr.rasterID, *rr.firstRow, *rr.lastRow); err != nil {
		return err
	}
	return nil
}

func (rr *SqliteRowReader) scanRow() (*Row, error) {
	var data rowData
	if err := rr.rows.Scan(&data.Index, &data.Data); err != nil {
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	values, err := decodeRow(data.Data, rr.raster.Cols)
	if err != nil {
		return nil, fmt.Errorf("decoding row %d: %w", data.Index, err)
	}
	return &Row{Index: data.Index, Values: values}, nil
}

// fillRow creates a row for an index that has no data in the database.
// Rasters can be imported in pieces, so gaps are expected.
func (rr *SqliteRowReader) fillRow(index int) *Row {
	return &Row{
		Index:  index,
		Values: slices.Repeat([]float64{missingValue(rr.raster)}, rr.raster.Cols),
	}
}

func (rr *SqliteRowReader) Raster() *Raster {
	return rr.raster
}

func (rr *SqliteRowReader) Next(ctx context.Context) bool {
	if rr.err != nil || rr.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		rr.err = ctx.Err()
		return false
	default:
	}

	if rr.expected > *rr.lastRow {
		rr.err = ErrNoData
		return false
	}

	if rr.pending == nil && !rr.exhausted {
		if rr.rows.Next() {
			if rr.pending, rr.err = rr.scanRow(); rr.err != nil {
				return false
			}
		} else {
			rr.exhausted = true
		}
	}

	if rr.pending != nil && rr.pending.Index == rr.expected {
		rr.current, rr.pending = rr.pending, nil
	} else {
		rr.current = rr.fillRow(rr.expected)
	}

	rr.expected++
	return true
}

func (rr *SqliteRowReader) Current() *Row {
	return rr.current
}

func (rr *SqliteRowReader) Error() error {
	if rr.err != nil && !errors.Is(rr.err, ErrNoData) {
		return rr.err
	}
	if rr.rows != nil {
		return rr.rows.Err()
	}
	return nil
}

func (rr *SqliteRowReader) Close() error {
	if rr.rows != nil {
		err := rr.rows.Close()
		rr.current = nil
		rr.pending = nil
		rr.rows = nil
		return err
	}
	return nil
}
