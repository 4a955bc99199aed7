package app

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/roman-kulish/flythrough/internal/geom"
	"github.com/roman-kulish/flythrough/internal/playback"
)

var (
	groundColor = color.RGBA{R: 140, G: 100, B: 50, A: 255}
	lookColor   = color.RGBA{R: 255, G: 140, B: 0, A: 255}
)

// Profile is the altitude of the camera and the terrain against the
// distance flown.
type Profile struct {
	Camera plotter.XYs
	Ground plotter.XYs
	LookAt plotter.XYs
}

// NewProfile collects the profile from simulated steps. Ground heights are
// the exaggerated heights the camera was placed against.
func NewProfile(steps []playback.Step) *Profile {
	p := &Profile{
		Camera: make(plotter.XYs, 0, len(steps)),
		Ground: make(plotter.XYs, 0, len(steps)),
	}

	var distance float64
	for i, s := range steps {
		if i > 0 {
			distance += geom.Distance(steps[i-1].Frame.State.Position(), s.Frame.State.Position())
		}

		p.Camera = append(p.Camera, plotter.XY{X: distance, Y: s.Solution.CameraZ})
		p.Ground = append(p.Ground, plotter.XY{X: distance, Y: s.Frame.State.GroundZ})
		if s.Solution.TerrainSampled {
			p.LookAt = append(p.LookAt, plotter.XY{X: distance, Y: s.Solution.TerrainAtLookAt})
		}
	}

	return p
}

// Save writes the profile chart to path; the extension selects the format.
func (p *Profile) Save(path, title string) error {
	if len(p.Camera) == 0 {
		return errors.New("empty profile")
	}

	plt := plot.New()
	plt.Title.Text = fmt.Sprintf("%s - Altitude Profile", title)
	plt.X.Label.Text = "Distance (m)"
	plt.Y.Label.Text = "Altitude (m)"
	plt.Add(plotter.NewGrid())

	ground, err := plotter.NewLine(p.Ground)
	if err != nil {
		return err
	}
	ground.Color = groundColor
	ground.Width = vg.Points(1.5)
	plt.Add(ground)
	plt.Legend.Add("terrain below camera", ground)

	camera, err := plotter.NewLine(p.Camera)
	if err != nil {
		return err
	}
	camera.Color = trackColor
	camera.Width = vg.Points(1.5)
	plt.Add(camera)
	plt.Legend.Add("camera", camera)

	if len(p.LookAt) > 0 {
		look, err := plotter.NewScatter(p.LookAt)
		if err != nil {
			return err
		}
		look.Color = lookColor
		look.Radius = vg.Points(1)
		plt.Add(look)
		plt.Legend.Add("terrain at look-at", look)
	}

	plt.Legend.Top = true
	plt.Legend.Left = false
	plt.Legend.XOffs = -10
	plt.Legend.YOffs = -10

	if err = plt.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
