package app

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi     float64 = 72
	hinting string  = "full"
	size    float64 = 13
	spacing float64 = 1.3

	legendWidth = 18
	scaleHeight = 6
)

type Annotator struct {
	context *freetype.Context
}

func NewAnnotator() (*Annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(size)
	context.SetSrc(image.Black)

	switch hinting {
	case "full":
		context.SetHinting(font.HintingFull)
	default:
		context.SetHinting(font.HintingNone)
	}

	return &Annotator{context: context}, nil
}

type annotation struct {
	plan    *Plan
	mapRect image.Rectangle
	colors  *ColorMapper
}

// Annotate draws the title, the scale bar, the legend and the flythrough
// summary into the borders around mapRect.
func (a *Annotator) Annotate(img *image.RGBA, plan *Plan, mapRect image.Rectangle, colors *ColorMapper) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	an := &annotation{plan: plan, mapRect: mapRect, colors: colors}

	ops := []struct {
		msg string
		fn  func(*image.RGBA, *annotation) error
	}{
		{"drawing title", a.drawTitle},
		{"drawing scale bar", a.drawScaleBar},
		{"drawing legend", a.drawLegend},
		{"drawing info", a.drawInfo},
	}
	for _, op := range ops {
		if err := op.fn(img, an); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

func (a *Annotator) drawTitle(_ *image.RGBA, an *annotation) error {
	name := an.plan.Name
	if name == "" {
		name = "Flythrough"
	}

	seq := an.plan.Sequence
	title := fmt.Sprintf("%s: %s in %s", name, humanMetres(seq.Length), humanSeconds(seq.TotalDuration))

	pt := freetype.Pt(an.mapRect.Min.X, an.mapRect.Min.Y-12)
	_, err := a.context.DrawString(title, pt)
	return err
}

func (a *Annotator) drawScaleBar(img *image.RGBA, an *annotation) error {
	ps := an.plan.Raster.PixelSize
	metres := niceLength(float64(an.mapRect.Dx()) / 5 * ps)
	px := int(math.Round(metres / ps))

	left, top := an.mapRect.Min.X, an.mapRect.Max.Y+12
	for x := left; x < left+px; x++ {
		for y := top; y < top+scaleHeight; y++ {
			// alternate halves so the bar reads as a ruler
			if (x-left)*2 < px {
				img.Set(x, y, color.Black)
			} else if y == top || y == top+scaleHeight-1 {
				img.Set(x, y, color.Black)
			}
		}
	}
	for y := top; y < top+scaleHeight; y++ {
		img.Set(left+px-1, y, color.Black)
	}

	pt := freetype.Pt(left+px+8, top+scaleHeight)
	_, err := a.context.DrawString(humanMetres(metres), pt)
	return err
}

func (a *Annotator) drawLegend(img *image.RGBA, an *annotation) error {
	left := an.mapRect.Max.X + 12
	top, bottom := an.mapRect.Min.Y, an.mapRect.Max.Y
	height := bottom - top
	if height <= 1 {
		return nil
	}

	lo, hi := an.colors.Bounds()
	for y := top; y < bottom; y++ {
		z := hi - (hi-lo)*float64(y-top)/float64(height-1)
		c := an.colors.GetColor(&z)
		for x := left; x < left+legendWidth; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	labels := []struct {
		z float64
		y int
	}{
		{hi, top + int(size)},
		{(lo + hi) / 2, top + height/2 + int(size)/2},
		{lo, bottom},
	}
	for _, l := range labels {
		pt := freetype.Pt(left+legendWidth+6, l.y)
		if _, err := a.context.DrawString(fmt.Sprintf("%s m", humanize.CommafWithDigits(l.z, 0)), pt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Annotator) drawInfo(_ *image.RGBA, an *annotation) error {
	p := an.plan.Params
	seq := an.plan.Sequence

	corrected := 0
	for _, s := range an.plan.Steps {
		if s.Solution.Corrected {
			corrected++
		}
	}

	strings := []string{
		fmt.Sprintf("Altitude: %s, camera height %s, pitch %g°, exaggeration %gx",
			p.AltitudeMode, humanMetres(p.CameraHeight), p.Pitch, p.VerticalExaggeration),
		fmt.Sprintf("Keyframes: %d, frames: %s at %d fps, view rays pulled in: %d",
			len(seq.Keyframes), humanize.Comma(int64(len(an.plan.Steps))), p.FrameRate, corrected),
		fmt.Sprintf("Highest terrain on route: %s m", humanize.CommafWithDigits(seq.MaxElevation, 1)),
		fmt.Sprintf("1 pixel = %s, %s", humanMetres(an.plan.Raster.PixelSize), an.plan.CRS),
	}
	if seq.BelowTerrainPeak {
		strings = append(strings, "Warning: camera altitude is below the highest terrain")
	}

	lineHeight := size * spacing
	pt := freetype.Pt(an.mapRect.Min.X, an.mapRect.Max.Y+12+scaleHeight+int(lineHeight)+4)
	for _, s := range strings {
		if _, err := a.context.DrawString(s, pt); err != nil {
			return err
		}
		pt.Y += a.context.PointToFixed(size * spacing)
	}

	return nil
}

// niceLength rounds v down to 1, 2 or 5 times a power of ten.
func niceLength(v float64) float64 {
	if !(v > 0) {
		return 1
	}

	exp := math.Pow(10, math.Floor(math.Log10(v)))
	if v/exp >= 10 {
		exp *= 10
	}
	switch f := v / exp; {
	case f >= 5:
		return 5 * exp
	case f >= 2:
		return 2 * exp
	default:
		return exp
	}
}

func humanMetres(m float64) string {
	if math.Abs(m) < 1 {
		return fmt.Sprintf("%s m", humanize.FtoaWithDigits(m, 2))
	}
	v, prefix := humanize.ComputeSI(m)
	return fmt.Sprintf("%s %sm", humanize.FtoaWithDigits(v, 2), prefix)
}

func humanSeconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Second).String()
}
