package app

import (
	"context"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `
route:
  name: headland
  crs: EPSG:3857
  points: [[0, 0], [2000, 0], [2000, 1000]]
elevation:
  type: constant
  height: 40
animation:
  altitudeMode: terrainRelative
  cameraHeight: 150
  speed: 500
  frameRate: 10
`

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeScenario(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o600))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()

	config := NewConfig()
	config.ScenarioFile = writeScenario(t, dir)
	config.OutputFile = filepath.Join(dir, "plan.png")
	config.ProfileFile = filepath.Join(dir, "profile.png")
	config.Width = 300
	config.TraceEvery = 3

	require.NoError(t, Run(context.Background(), config, discard))

	f, err := os.Open(config.OutputFile)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, defaultLeftBorder+300+defaultRightBorder, img.Bounds().Dx())

	info, err := os.Stat(config.ProfileFile)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRun_JPEG(t *testing.T) {
	dir := t.TempDir()

	config := NewConfig()
	config.ScenarioFile = writeScenario(t, dir)
	config.OutputFile = filepath.Join(dir, "plan.jpeg")
	config.Format = ImageJPEG
	config.Width = 200
	config.NoAnnotations = true
	config.NoShading = true

	require.NoError(t, Run(context.Background(), config, discard))

	f, err := os.Open(config.OutputFile)
	require.NoError(t, err)
	defer f.Close()

	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestRun_MissingScenario(t *testing.T) {
	config := NewConfig()
	config.ScenarioFile = filepath.Join(t.TempDir(), "missing.yaml")
	config.OutputFile = filepath.Join(t.TempDir(), "plan.png")

	assert.ErrorIs(t, Run(context.Background(), config, discard), os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		c := NewConfig()
		c.ScenarioFile = "scenario.yaml"
		c.OutputFile = "plan"
		return c
	}
	require.NoError(t, valid().validate())

	tests := map[string]func(*Config){
		"no scenario":   func(c *Config) { c.ScenarioFile = "" },
		"no output":     func(c *Config) { c.OutputFile = "" },
		"narrow":        func(c *Config) { c.Width = 10 },
		"margin":        func(c *Config) { c.Margin = 2 },
		"trace":         func(c *Config) { c.TraceEvery = -1 },
		"bad format":    func(c *Config) { c.Format = "gif" },
		"unknown theme": func(c *Config) { c.Theme = "sepia" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.validate())
		})
	}
}
