package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/flythrough"
	"github.com/roman-kulish/flythrough/internal/geom"
	"github.com/roman-kulish/flythrough/internal/playback"
)

const (
	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 20
	defaultBottomBorder = 110
	defaultRightBorder  = 110

	routeWidth = 3
	trackWidth = 2
)

var (
	routeColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	trackColor     = color.RGBA{R: 220, G: 30, B: 30, A: 255}
	rayColor       = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	correctedColor = color.RGBA{R: 200, G: 0, B: 200, A: 255}
	keyframeColor  = color.RGBA{R: 30, G: 60, B: 220, A: 255}
	startColor     = color.RGBA{R: 0, G: 170, B: 0, A: 255}
	endColor       = color.RGBA{A: 255}
)

// BorderConfig defines the sizes of white space around the map
type BorderConfig struct {
	Top    int // Space for the title
	Left   int
	Bottom int // Space for the scale bar and information
	Right  int // Space for the legend
}

// RenderConfig holds all configuration options for the plan view
type RenderConfig struct {
	ColorTheme   ColorTheme
	ColorMapSize int // Number of colors in gradient (0 for default)

	// Shading enables hillshading, exaggerated by ZFactor.
	Shading bool
	ZFactor float64

	// TraceEvery draws the view ray of every n-th frame; 0 disables rays.
	TraceEvery int

	Annotate     bool
	BorderConfig BorderConfig
}

// Plan is everything drawn on the map. All geometry is in CRS.
type Plan struct {
	Name     string
	CRS      crs.CRS
	Raster   *Raster
	Route    geom.Path
	Params   flythrough.Params
	Sequence flythrough.Sequence
	Steps    []playback.Step
}

// PlanRenderer draws a top-down view of a flythrough over its terrain
type PlanRenderer struct {
	config    RenderConfig
	annotator *Annotator
}

// NewPlanRenderer creates a new plan renderer with the given configuration
func NewPlanRenderer(config RenderConfig) (*PlanRenderer, error) {
	if config.ColorTheme == "" {
		config.ColorTheme = TerrainTheme
	}
	if config.ColorMapSize <= 0 {
		config.ColorMapSize = DefaultColorMapSize
	}
	if !(config.ZFactor > 0) {
		config.ZFactor = 1
	}

	r := &PlanRenderer{config: config}
	if !config.Annotate {
		return r, nil
	}

	if config.BorderConfig == (BorderConfig{}) {
		r.config.BorderConfig = BorderConfig{
			Top:    defaultTopBorder,
			Left:   defaultLeftBorder,
			Bottom: defaultBottomBorder,
			Right:  defaultRightBorder,
		}
	}

	annotator, err := NewAnnotator()
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	r.annotator = annotator
	return r, nil
}

// Render draws the plan and returns the image.
func (r *PlanRenderer) Render(plan *Plan) (*image.RGBA, error) {
	if plan == nil || plan.Raster == nil {
		return nil, errors.New("nothing to render")
	}

	b := r.config.BorderConfig
	raster := plan.Raster

	mapRect := image.Rect(b.Left, b.Top, b.Left+raster.Width, b.Top+raster.Height)
	img := image.NewRGBA(image.Rect(0, 0, mapRect.Max.X+b.Right, mapRect.Max.Y+b.Bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	colors := NewColorMapperWithSize(r.config.ColorTheme, raster.Histogram().GetPercentileBounds(), r.config.ColorMapSize)

	layer := img.SubImage(mapRect).(*image.RGBA)
	r.drawTerrain(layer, mapRect.Min, raster, colors)

	toPixel := func(x, y float64) (float64, float64) {
		px, py := raster.ToPixel(geom.Point{X: x, Y: y})
		return px + float64(mapRect.Min.X), py + float64(mapRect.Min.Y)
	}

	r.drawRoute(layer, plan.Route, toPixel)
	r.drawTrack(layer, plan.Steps, toPixel)
	r.drawKeyframes(layer, plan.Sequence.Keyframes, toPixel)

	if r.annotator != nil {
		if err := r.annotator.Annotate(img, plan, mapRect, colors); err != nil {
			return nil, fmt.Errorf("annotating plan: %w", err)
		}
	}

	return img, nil
}

func (r *PlanRenderer) drawTerrain(dst *image.RGBA, origin image.Point, raster *Raster, colors *ColorMapper) {
	flat := math.Cos(geom.Radians(90 - sunAltitude))

	for row := 0; row < raster.Height; row++ {
		for col := 0; col < raster.Width; col++ {
			z := raster.At(col, row)
			if z == nil {
				continue
			}

			c := colors.GetColor(z)
			if r.config.Shading {
				shade := raster.Shade(col, row, r.config.ZFactor) / flat
				c = shadeColor(c, 0.5+0.5*shade)
			}
			dst.SetRGBA(origin.X+col, origin.Y+row, c)
		}
	}
}

type pixelFunc func(x, y float64) (float64, float64)

func (r *PlanRenderer) drawRoute(dst *image.RGBA, route geom.Path, toPixel pixelFunc) {
	for i := 1; i < len(route); i++ {
		x0, y0 := toPixel(route[i-1].X, route[i-1].Y)
		x1, y1 := toPixel(route[i].X, route[i].Y)
		drawSegment(dst, x0, y0, x1, y1, routeColor, routeWidth)
	}
}

// drawTrack draws the camera ground track and the view rays of every n-th
// frame. Rays whose look-at point was pulled in are highlighted.
func (r *PlanRenderer) drawTrack(dst *image.RGBA, steps []playback.Step, toPixel pixelFunc) {
	if every := r.config.TraceEvery; every > 0 {
		for i := 0; i < len(steps); i += every {
			s := steps[i]
			x0, y0 := toPixel(s.Frame.State.X, s.Frame.State.Y)
			x1, y1 := toPixel(s.Solution.Pose.Center.X, s.Solution.Pose.Center.Y)

			c := rayColor
			if s.Solution.Corrected {
				c = correctedColor
			}
			drawSegment(dst, x0, y0, x1, y1, c, 1)
		}
	}

	for i := 1; i < len(steps); i++ {
		a, b := steps[i-1].Frame.State, steps[i].Frame.State
		x0, y0 := toPixel(a.X, a.Y)
		x1, y1 := toPixel(b.X, b.Y)
		drawSegment(dst, x0, y0, x1, y1, trackColor, trackWidth)
	}
}

func (r *PlanRenderer) drawKeyframes(dst *image.RGBA, keyframes []flythrough.Keyframe, toPixel pixelFunc) {
	if len(keyframes) == 0 {
		return
	}

	for _, k := range keyframes {
		x, y := toPixel(k.X, k.Y)
		drawDisc(dst, x, y, 2, keyframeColor)
	}

	first, last := keyframes[0], keyframes[len(keyframes)-1]
	x, y := toPixel(first.X, first.Y)
	drawDisc(dst, x, y, 5, startColor)
	x, y = toPixel(last.X, last.Y)
	drawDisc(dst, x, y, 5, endColor)
}
