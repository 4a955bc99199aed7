package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/roman-kulish/flythrough/internal/elevation"
)

// rowsPerInsert keeps a batch insert well below SQLite's bound parameter limit.
const rowsPerInsert = 256

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the SQLite database at dbPath.
// Connections are opened lazily; the schema is created on first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(ctx context.Context, db *sql.DB, sql string) error {
	_, err := db.ExecContext(ctx, sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(context.Background(), db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateRaster(ctx context.Context, r *Raster, metadata any) (rasterID int64, err error) {
	if r.Cols <= 0 || r.Rows <= 0 || !(r.CellSize > 0) {
		return 0, fmt.Errorf("invalid raster geometry %dx%d, cell size %f", r.Cols, r.Rows, r.CellSize)
	}

	var metadataStr *string

	if metadata != nil {
		switch m := metadata.(type) {
		case string:
			metadataStr = &m

		case []byte:
			str := string(m)
			metadataStr = &str

		default:
			var p []byte
			if p, err = json.Marshal(metadata); err != nil {
				err = fmt.Errorf("marshaling metadata: %w", err)
				return
			}

			str := string(p)
			metadataStr = &str
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertRasterSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	data := toRasterData(&Raster{
		CreatedAt: time.Now(),
		Name:      r.Name,
		CRS:       r.CRS,
		OriginX:   r.OriginX,
		OriginY:   r.OriginY,
		CellSize:  r.CellSize,
		Cols:      r.Cols,
		Rows:      r.Rows,
		NoData:    r.NoData,
		Metadata:  metadataStr,
	})

	result, err := stmt.ExecContext(
		ctx,
		data.CreatedAt,
		data.Name,
		data.CRS,
		data.OriginX,
		data.OriginY,
		data.CellSize,
		data.Cols,
		data.Rows,
		data.NoData,
		data.Metadata,
	)
	if err != nil {
		err = fmt.Errorf("inserting raster: %w", err)
		return
	}

	rasterID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting raster ID: %w", err)
	}
	return
}

func (s *SqliteStore) Raster(ctx context.Context, id int64) (raster *Raster, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}
	return loadRaster(ctx, db, id)
}

func loadRaster(ctx context.Context, db *sql.DB, id int64) (raster *Raster, err error) {
	stmt, err := db.PrepareContext(ctx, selectRasterSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	raster, err = scanRaster(stmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("raster %d: %w", id, ErrNoData)
	}
	if err != nil {
		err = fmt.Errorf("scanning raster: %w", err)
	}
	return
}

func (s *SqliteStore) Rasters(ctx context.Context) (rasters []*Raster, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRastersSQL)
	if err != nil {
		err = fmt.Errorf("querying rasters: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var r *Raster
		if r, err = scanRaster(rows); err != nil {
			err = fmt.Errorf("scanning raster: %w", err)
			return
		}
		rasters = append(rasters, r)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) StoreRows(ctx context.Context, rasterID int64, firstRow int, rows [][]float64) (err error) {
	if len(rows) == 0 {
		return
	}
	if firstRow < 0 {
		return fmt.Errorf("invalid first row %d", firstRow)
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	raster, err := loadRaster(ctx, db, rasterID)
	if err != nil {
		return err
	}
	if last := firstRow + len(rows) - 1; last >= raster.Rows {
		return fmt.Errorf("row %d is outside of raster with %d rows", last, raster.Rows)
	}

	data := make([]rowData, len(rows))
	for i, values := range rows {
		if len(values) != raster.Cols {
			return fmt.Errorf("row %d has %d values, expected %d", firstRow+i, len(values), raster.Cols)
		}
		data[i] = rowData{RasterID: rasterID, Index: firstRow + i, Data: encodeRow(values)}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	for batch := range slices.Chunk(data, rowsPerInsert) {
		values := make([]any, 0, len(batch)*3)

		var sb strings.Builder
		sb.WriteString(insertRowsSQL)

		for i, row := range batch {
			values = append(values, row.RasterID, row.Index, row.Data)

			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?)")
		}

		if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
			return fmt.Errorf("batch inserting rows: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// ReadRows creates a RowReader over the rows of a raster, north to south.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - rasterID: Unique identifier of the raster to read from
//   - opts: Optional configuration parameters for the reader (WithRowRange)
//
// The returned RowReader must be closed after use to release database resources.
// Each reader instance should only be used from a single goroutine.
func (s *SqliteStore) ReadRows(ctx context.Context, rasterID int64, opts ...ReaderOption) (RowReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	reader, err := newSqliteRowReader(ctx, db, rasterID, opts...)
	if err != nil {
		return nil, err
	}
	return reader, nil
}

func (s *SqliteStore) ImportGrid(ctx context.Context, name string, g *elevation.Grid, metadata any) (rasterID int64, err error) {
	if err = g.Validate(); err != nil {
		return 0, fmt.Errorf("validating grid: %w", err)
	}

	r := &Raster{
		Name:     name,
		CRS:      g.CRS,
		OriginX:  g.OriginX,
		OriginY:  g.OriginY,
		CellSize: g.CellSize,
		Cols:     g.Cols,
		Rows:     g.Rows,
	}
	if g.HasNoData {
		noData := g.NoData
		r.NoData = &noData
	}

	if rasterID, err = s.CreateRaster(ctx, r, metadata); err != nil {
		return 0, fmt.Errorf("creating raster: %w", err)
	}

	rows := make([][]float64, g.Rows)
	for i := range rows {
		rows[i] = g.Values[i*g.Cols : (i+1)*g.Cols]
	}
	if err = s.StoreRows(ctx, rasterID, 0, rows); err != nil {
		return 0, fmt.Errorf("storing rows: %w", err)
	}

	return rasterID, nil
}

func (s *SqliteStore) LoadGrid(ctx context.Context, rasterID int64) (g *elevation.Grid, err error) {
	reader, err := s.ReadRows(ctx, rasterID)
	if err != nil {
		return nil, err
	}
	defer closeWithError(reader, &err)

	r := reader.Raster()
	g = &elevation.Grid{
		CRS:      r.CRS,
		OriginX:  r.OriginX,
		OriginY:  r.OriginY,
		CellSize: r.CellSize,
		Cols:     r.Cols,
		Rows:     r.Rows,
		Values:   make([]float64, 0, r.Cols*r.Rows),
	}
	if r.NoData != nil {
		g.NoData, g.HasNoData = *r.NoData, true
	}

	for reader.Next(ctx) {
		g.Values = append(g.Values, reader.Current().Values...)
	}
	if err = reader.Error(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	if err = g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(context.Background(), s.writeDB, optimizeSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}

// missingValue is what rows absent from the database read as.
func missingValue(r *Raster) float64 {
	if r.NoData != nil {
		return *r.NoData
	}
	return math.NaN()
}
