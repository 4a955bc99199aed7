package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"

	defaultWidth  = 1200
	minWidth      = 200
	defaultMargin = 0.1
)

type ImageFormat string

type Config struct {
	ScenarioFile  string
	OutputFile    string
	ProfileFile   string
	Format        ImageFormat
	Theme         ColorTheme
	Width         int
	Margin        float64
	TraceEvery    int
	NoAnnotations bool
	NoShading     bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:     ImagePNG,
		Theme:      TerrainTheme,
		Width:      defaultWidth,
		Margin:     defaultMargin,
		TraceEvery: 10,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, theme string
	flag.StringVar(&c.ScenarioFile, "c", "", "Path to the scenario file")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file, without extension")
	flag.StringVar(&c.ProfileFile, "profile", "", "Write the altitude profile chart to this file (png, svg or pdf)")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&theme, "theme", string(TerrainTheme), "Elevation color theme. [terrain, classic, grayscale, jungle, thermal, marine]")
	flag.IntVar(&c.Width, "width", defaultWidth, "Width of the map area in pixels")
	flag.Float64Var(&c.Margin, "margin", defaultMargin, "Space around the route as a share of its extent")
	flag.IntVar(&c.TraceEvery, "trace", c.TraceEvery, "Draw the view ray of every n-th frame, 0 disables it")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as the scale bar and the legend")
	flag.BoolVar(&c.NoShading, "no-shading", false, "Disable hillshading")
	flag.Parse()

	c.Format = ImageFormat(strings.ToLower(imageFormat))
	c.Theme = ColorTheme(strings.ToLower(theme))

	if err := c.validate(); err != nil {
		flag.Usage()
		return nil, err
	}

	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}

func (c *Config) validate() error {
	switch {
	case c.ScenarioFile == "":
		return errors.New("scenario file is required")
	case c.OutputFile == "":
		return errors.New("output file is required")
	case c.Width < minWidth:
		return fmt.Errorf("width must be at least %d pixels", minWidth)
	case c.Margin < 0 || c.Margin > 1:
		return fmt.Errorf("margin must be within [0, 1], got %g", c.Margin)
	case c.TraceEvery < 0:
		return errors.New("trace interval must not be negative")
	}

	if _, ok := validImageFormats[c.Format]; !ok {
		return fmt.Errorf("invalid image format: %s", c.Format)
	}
	if _, ok := validColorThemes[c.Theme]; !ok {
		return fmt.Errorf("invalid color theme: %s", c.Theme)
	}
	return nil
}
