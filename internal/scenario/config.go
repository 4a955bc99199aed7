// Package scenario loads the YAML file describing a flythrough: where the
// route and the terrain come from, how the camera flies and where poses go.
package scenario

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/elevation"
	"github.com/roman-kulish/flythrough/internal/flythrough"
)

const (
	ElevationGrid     ElevationType = "grid"
	ElevationSqlite   ElevationType = "sqlite"
	ElevationConstant ElevationType = "constant"

	RendererLog       RendererType = "log"
	RendererWebSocket RendererType = "websocket"
)

type ElevationType string

type RendererType string

var (
	validElevationTypes = map[ElevationType]struct{}{
		ElevationGrid:     {},
		ElevationSqlite:   {},
		ElevationConstant: {},
	}

	validRendererTypes = map[RendererType]struct{}{
		RendererLog:       {},
		RendererWebSocket: {},
	}
)

// Config represents a scenario file
type Config struct {
	Settings  Settings          `yaml:"settings"`
	Route     RouteConfig       `yaml:"route"`
	Elevation ElevationConfig   `yaml:"elevation"`
	View      ViewConfig        `yaml:"view"`
	Animation flythrough.Params `yaml:"animation"`
	Renderer  RendererConfig    `yaml:"renderer"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`

	// TelemetryInterval is how often playback progress is logged; zero
	// disables it.
	TelemetryInterval Duration `yaml:"telemetryInterval"`
}

// RouteConfig points at a GPX file or lists the vertices inline.
type RouteConfig struct {
	File   string       `yaml:"file"`
	Name   string       `yaml:"name"`
	CRS    crs.CRS      `yaml:"crs"`
	Points [][2]float64 `yaml:"points"`
}

// ElevationConfig selects the terrain source.
type ElevationConfig struct {
	Type          ElevationType           `yaml:"type"`
	File          string                  `yaml:"file"`
	RasterID      int64                   `yaml:"rasterID"`
	CRS           crs.CRS                 `yaml:"crs"`
	Interpolation elevation.Interpolation `yaml:"interpolation"`

	// Timeout bounds every terrain query made during playback.
	Timeout Duration `yaml:"timeout"`

	// Height is the terrain height of the constant source.
	Height float64 `yaml:"height"`
}

// ViewConfig holds the project CRS and renderer pass-through settings.
type ViewConfig struct {
	CRS      crs.CRS `yaml:"crs"`
	Overlays bool    `yaml:"overlays"`
}

type RendererConfig struct {
	Type   RendererType `yaml:"type"`
	Listen string       `yaml:"listen"`

	// Every logs only every n-th pose with the log renderer.
	Every int `yaml:"every"`
}

func NewConfig() *Config {
	return &Config{
		Settings: Settings{
			LogLevel:          "info",
			TelemetryInterval: Duration(5 * time.Second),
		},
		Elevation: ElevationConfig{
			Type:    ElevationGrid,
			Timeout: Duration(elevation.DefaultTimeout),
		},
		View:      ViewConfig{CRS: crs.WebMercator},
		Animation: flythrough.DefaultParams(),
		Renderer:  RendererConfig{Type: RendererLog, Every: 1},
	}
}

// LoadConfig reads a scenario file over the defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	c := NewConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports the first invalid setting as a *ConfigError.
func (c *Config) Validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Settings.LogLevel)); err != nil {
		return NewConfigError("settings.logLevel", "invalid level %q", c.Settings.LogLevel)
	}
	if c.Settings.TelemetryInterval < 0 {
		return NewConfigError("settings.telemetryInterval", "must not be negative")
	}

	if c.Route.File == "" && len(c.Route.Points) < 2 {
		return NewConfigError("route", "either a file or at least two points are required")
	}
	if c.Route.File == "" && c.Route.CRS == "" {
		return NewConfigError("route.crs", "required for inline points")
	}

	if err := c.Elevation.validate(); err != nil {
		return err
	}

	if c.View.CRS == "" {
		return NewConfigError("view.crs", "required")
	}

	if err := validateParams(&c.Animation); err != nil {
		return err
	}

	if _, ok := validRendererTypes[c.Renderer.Type]; !ok {
		return NewConfigError("renderer.type", "unknown renderer %q", c.Renderer.Type)
	}
	if c.Renderer.Type == RendererWebSocket && c.Renderer.Listen == "" {
		return NewConfigError("renderer.listen", "required for the websocket renderer")
	}

	return nil
}

func (c *ElevationConfig) validate() error {
	if _, ok := validElevationTypes[c.Type]; !ok {
		return NewConfigError("elevation.type", "unknown elevation source %q", c.Type)
	}
	if c.Type != ElevationConstant && c.File == "" {
		return NewConfigError("elevation.file", "required for %s elevation", c.Type)
	}
	if c.Type == ElevationSqlite && c.RasterID <= 0 {
		return NewConfigError("elevation.rasterID", "required for sqlite elevation")
	}
	if c.Type == ElevationGrid && c.CRS == "" {
		return NewConfigError("elevation.crs", "required for grid elevation")
	}
	if c.Timeout < 0 {
		return NewConfigError("elevation.timeout", "must not be negative")
	}
	return nil
}

var errNotPositive = errors.New("must be greater than zero")

func validateParams(p *flythrough.Params) error {
	switch {
	case p.Speed <= 0:
		return NewConfigError("animation.speed", "%s", errNotPositive)
	case p.FrameRate <= 0:
		return NewConfigError("animation.frameRate", "%s", errNotPositive)
	case p.VerticalExaggeration <= 0:
		return NewConfigError("animation.verticalExaggeration", "%s", errNotPositive)
	case p.Smoothing < 0:
		return NewConfigError("animation.smoothing", "must not be negative")
	case p.LookaheadDistance < 0:
		return NewConfigError("animation.lookaheadDistance", "must not be negative")
	}
	return nil
}

// LogLevel returns the configured level; Validate has already checked it.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.Settings.LogLevel))
	return level
}
