package elevation

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roman-kulish/flythrough/internal/crs"
)

// ReadASCIIGrid parses an ESRI ASCII grid (.asc). The file does not carry
// its coordinate system, so the caller supplies it.
func ReadASCIIGrid(r io.Reader, c crs.CRS) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	g := &Grid{CRS: c}

	var (
		centerX, centerY bool
		haveX, haveY     bool
		token            string
	)

	// The header is a run of "key value" pairs; the first numeric token
	// starts the data block.
	for sc.Scan() {
		token = sc.Text()
		if _, err := strconv.ParseFloat(token, 64); err == nil {
			break
		}

		key := strings.ToLower(token)
		if !sc.Scan() {
			return nil, fmt.Errorf("missing value for header %q", key)
		}
		val := sc.Text()
		token = ""

		var err error
		switch key {
		case "ncols":
			g.Cols, err = strconv.Atoi(val)
		case "nrows":
			g.Rows, err = strconv.Atoi(val)
		case "xllcorner", "xllcenter":
			g.OriginX, err = strconv.ParseFloat(val, 64)
			centerX, haveX = key == "xllcenter", true
		case "yllcorner", "yllcenter":
			g.OriginY, err = strconv.ParseFloat(val, 64)
			centerY, haveY = key == "yllcenter", true
		case "cellsize":
			g.CellSize, err = strconv.ParseFloat(val, 64)
		case "nodata_value":
			g.NoData, err = strconv.ParseFloat(val, 64)
			g.HasNoData = true
		default:
			return nil, fmt.Errorf("unknown header %q", key)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing header %q: %w", key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading grid header: %w", err)
	}

	if !haveX || !haveY {
		return nil, fmt.Errorf("grid header has no lower-left coordinate")
	}
	if g.Cols <= 0 || g.Rows <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", g.Cols, g.Rows)
	}
	if centerX {
		g.OriginX -= g.CellSize / 2
	}
	if centerY {
		g.OriginY -= g.CellSize / 2
	}

	g.Values = make([]float64, 0, g.Cols*g.Rows)
	for token != "" || sc.Scan() {
		if token == "" {
			token = sc.Text()
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing cell %d: %w", len(g.Values), err)
		}
		if len(g.Values) == cap(g.Values) {
			return nil, fmt.Errorf("grid has more than %d values", cap(g.Values))
		}
		g.Values = append(g.Values, v)
		token = ""
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading grid data: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
