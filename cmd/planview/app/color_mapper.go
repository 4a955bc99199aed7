package app

import (
	"image/color"
	"math"
)

// ColorTheme is a predefined elevation color scheme.
type ColorTheme string

const (
	TerrainTheme   ColorTheme = "terrain"   // Green lowlands, brown hills, white peaks
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorMapSize = 256
)

var validColorThemes = map[ColorTheme]struct{}{
	TerrainTheme:   {},
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
}

// ColorMapper maps elevations to colors through a pre-computed gradient.
type ColorMapper struct {
	colorMap       []color.RGBA
	theme          func(float64) color.RGBA
	themeName      ColorTheme
	size           int
	metresPerIndex float64
	boundsMin      float64
	boundsMax      float64
}

// NewColorMapper creates a mapper with the default gradient size.
func NewColorMapper(theme ColorTheme, bounds ElevationBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

func NewColorMapperWithSize(theme ColorTheme, bounds ElevationBounds, size int) *ColorMapper {
	if size <= 1 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap:  make([]color.RGBA, size),
		theme:     getColorTheme(theme),
		themeName: theme,
		size:      size,
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds sets the elevation range and rebuilds the gradient.
func (cm *ColorMapper) UpdateBounds(bounds ElevationBounds) {
	span := bounds.Max - bounds.Min
	if !(span > 0) {
		span = 1
	}

	cm.boundsMin = bounds.Min
	cm.boundsMax = bounds.Min + span
	cm.metresPerIndex = span / float64(cm.size-1)

	for i := 0; i < cm.size; i++ {
		cm.colorMap[i] = cm.theme(float64(i) / float64(cm.size-1))
	}
}

// GetColor returns the color for an elevation. A nil elevation, i.e. a
// cell without data, maps to the lowest color.
func (cm *ColorMapper) GetColor(z *float64) color.RGBA {
	if z == nil {
		return cm.colorMap[0]
	}

	index := int((*z - cm.boundsMin) / cm.metresPerIndex)
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= cm.size {
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

// Bounds returns the elevation range covered by the gradient.
func (cm *ColorMapper) Bounds() (lo, hi float64) {
	return cm.boundsMin, cm.boundsMax
}

func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}

func (cm *ColorMapper) Size() int {
	return cm.size
}

// HSV represents a color in HSV (Hue, Saturation, Value) color space
type HSV struct {
	H float64 // Hue angle in degrees [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value/Brightness [0-1]
}

// RGB converts HSV to RGB color space
func (hsv HSV) RGB() color.RGBA {
	hsv.V = math.Max(0, math.Min(1, hsv.V))
	if hsv.S <= 0.0 {
		v := uint8(hsv.V * 255)
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}

	h := math.Mod(hsv.H, 360)
	if h < 0 {
		h += 360
	}
	h /= 60

	i := int(h)
	f := h - float64(i)

	v := uint8(hsv.V * 255)
	p := uint8((hsv.V * (1 - hsv.S)) * 255)
	q := uint8((hsv.V * (1 - (hsv.S * f))) * 255)
	t := uint8((hsv.V * (1 - (hsv.S * (1 - f)))) * 255)

	switch i {
	case 0:
		return color.RGBA{R: v, G: t, B: p, A: 255}
	case 1:
		return color.RGBA{R: q, G: v, B: p, A: 255}
	case 2:
		return color.RGBA{R: p, G: v, B: t, A: 255}
	case 3:
		return color.RGBA{R: p, G: q, B: v, A: 255}
	case 4:
		return color.RGBA{R: t, G: p, B: v, A: 255}
	default:
		return color.RGBA{R: v, G: p, B: q, A: 255}
	}
}

func getColorTheme(theme ColorTheme) func(float64) color.RGBA {
	switch theme {
	case ClassicTheme:
		return func(z float64) color.RGBA {
			return HSV{
				H: 240 - (z * 240),
				S: 0.9 + (z * 0.1),
				V: 0.2 + math.Pow(z, 0.7)*0.8,
			}.RGB()
		}

	case GrayscaleTheme:
		return func(z float64) color.RGBA {
			v := uint8(math.Pow(z, 0.7) * 255)
			return color.RGBA{R: v, G: v, B: v, A: 255}
		}

	case JungleTheme:
		return func(z float64) color.RGBA {
			return HSV{
				H: 120 - (z * 60),
				S: 1.0,
				V: 0.3 + (math.Pow(z, 0.6) * 0.7),
			}.RGB()
		}

	case ThermalTheme:
		return func(z float64) color.RGBA {
			if z < 0.33 {
				return color.RGBA{R: uint8((z * 3) * 255), A: 255}
			}
			if z < 0.66 {
				return color.RGBA{R: 255, G: uint8(((z - 0.33) * 3) * 255), A: 255}
			}
			return color.RGBA{R: 255, G: 255, B: uint8(math.Min(1, (z-0.66)*3) * 255), A: 255}
		}

	case MarineTheme:
		return func(z float64) color.RGBA {
			return HSV{
				H: 240 - (z * 60),
				S: 1.0 - (z * 0.8),
				V: 0.3 + (math.Pow(z, 0.6) * 0.7),
			}.RGB()
		}

	default: // hypsometric tint
		return func(z float64) color.RGBA {
			z = math.Max(0, math.Min(1, z))

			switch {
			case z < 0.3:
				return HSV{H: 110 - z*50, S: 0.6, V: 0.45 + z}.RGB()
			case z < 0.6:
				p := (z - 0.3) / 0.3
				return HSV{H: 95 - p*65, S: 0.6 - p*0.1, V: 0.75 - p*0.15}.RGB()
			case z < 0.85:
				p := (z - 0.6) / 0.25
				return HSV{H: 30 - p*10, S: 0.5 - p*0.2, V: 0.6 - p*0.1}.RGB()
			default:
				p := (z - 0.85) / 0.15
				return HSV{H: 20, S: 0.3 * (1 - p), V: 0.5 + p*0.5}.RGB()
			}
		}
	}
}
