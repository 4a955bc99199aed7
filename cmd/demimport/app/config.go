package app

import (
	"errors"
	"flag"
	"path/filepath"
	"strings"

	"github.com/roman-kulish/flythrough/internal/crs"
)

type Config struct {
	InputFile string
	DBPath    string
	Name      string
	CRS       crs.CRS
	List      bool
}

func NewConfig() *Config {
	return &Config{
		CRS: crs.WebMercator,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var crsName string
	flag.StringVar(&c.InputFile, "in", "", "Path to the ESRI ASCII grid file")
	flag.StringVar(&c.DBPath, "db", "", "Path to the database file")
	flag.StringVar(&c.Name, "name", "", "Raster name (defaults to the input file name)")
	flag.StringVar(&crsName, "crs", c.CRS.String(), "Coordinate reference system of the grid")
	flag.BoolVar(&c.List, "list", false, "List the rasters in the database and exit")
	flag.Parse()

	if err := c.apply(crsName); err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}

func (c *Config) apply(crsName string) error {
	switch {
	case c.DBPath == "":
		return errors.New("db path is required")
	case !c.List && c.InputFile == "":
		return errors.New("input file is required")
	}

	parsed, err := crs.Parse(crsName)
	if err != nil {
		return err
	}
	c.CRS = parsed

	if c.Name == "" && c.InputFile != "" {
		base := filepath.Base(c.InputFile)
		c.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return nil
}
