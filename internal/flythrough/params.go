package flythrough

import (
	"fmt"
	"strings"
	"unicode"
)

// AltitudeMode selects how camera altitude is derived from the terrain.
type AltitudeMode int

const (
	// AboveSafePath flies every keyframe at the same altitude: the highest
	// terrain along the route plus the camera height.
	AboveSafePath AltitudeMode = iota
	// FixedAMSL flies at the camera height above mean sea level.
	FixedAMSL
	// TerrainRelative keeps the camera height above the terrain under each
	// vertex.
	TerrainRelative
)

func (m AltitudeMode) String() string {
	switch m {
	case AboveSafePath:
		return "aboveSafePath"
	case FixedAMSL:
		return "fixedAMSL"
	case TerrainRelative:
		return "terrainRelative"
	default:
		return fmt.Sprintf("AltitudeMode(%d)", int(m))
	}
}

// ParseAltitudeMode accepts the canonical names as well as the labels used
// by desktop tools ("Above Safe Path", "Fixed Altitude (AMSL)"), ignoring
// case and punctuation.
func ParseAltitudeMode(s string) (AltitudeMode, error) {
	key := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)

	switch key {
	case "abovesafepath", "safepath":
		return AboveSafePath, nil
	case "fixedamsl", "amsl", "fixedaltitude", "fixedaltitudeamsl":
		return FixedAMSL, nil
	case "terrainrelative", "terrainfollowing", "relative":
		return TerrainRelative, nil
	default:
		return 0, fmt.Errorf("unknown altitude mode %q", s)
	}
}

func (m AltitudeMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *AltitudeMode) UnmarshalText(text []byte) error {
	mode, err := ParseAltitudeMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Params is the complete set of tunable animation settings. Values are not
// validated up front; the algorithms clamp what they need to.
type Params struct {
	AltitudeMode AltitudeMode `yaml:"altitudeMode"`

	// CameraHeight is the offset above the safe path or terrain, or the
	// absolute altitude in FixedAMSL mode. It also serves as the fallback
	// orbit distance.
	CameraHeight float64 `yaml:"cameraHeight"`

	// Pitch in degrees; negative looks down.
	Pitch float64 `yaml:"pitch"`

	// FieldOfView is passed through to the renderer.
	FieldOfView float64 `yaml:"fieldOfView"`

	VerticalExaggeration float64 `yaml:"verticalExaggeration"`

	// Speed in distance units per second.
	Speed float64 `yaml:"speed"`

	Smoothing int `yaml:"smoothing"`

	Banking       bool    `yaml:"banking"`
	BankingFactor float64 `yaml:"bankingFactor"`

	LookaheadDistance float64 `yaml:"lookaheadDistance"`

	FrameRate int `yaml:"frameRate"`

	// TerrainShading is passed through to the renderer.
	TerrainShading bool `yaml:"terrainShading"`
}

func DefaultParams() Params {
	return Params{
		AltitudeMode:         AboveSafePath,
		CameraHeight:         200,
		Pitch:                -65,
		FieldOfView:          45,
		VerticalExaggeration: 1,
		Speed:                50,
		Smoothing:            0,
		Banking:              true,
		BankingFactor:        0.5,
		LookaheadDistance:    1000,
		FrameRate:            30,
		TerrainShading:       true,
	}
}
