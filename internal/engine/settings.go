package engine

import (
	"time"

	"github.com/talgya/torus/internal/torus"
)

// Setting limits. Color intensity has none; palettes clamp their output
// channels.
const (
	MinFPS           = 5
	MaxFPS           = 120
	MinRotationSpeed = 0.1
	MaxRotationSpeed = 5.0
	MinColorSpeed    = 0.1
	MaxColorSpeed    = 3.0
)

// AngleIncrement is how far angleA advances per rendered frame at rotation speed 1.
const AngleIncrement = 0.15

// HueIncrement is how far the spectrum hue advances per frame at color speed 1.
const HueIncrement = 0.005

// Settings are the user-adjustable animation parameters.
type Settings struct {
	FPS            int     `json:"fps"`
	RotationSpeed  float64 `json:"rotation_speed"`
	ColorIntensity float64 `json:"color_intensity"`
	ColorSpeed     float64 `json:"color_speed"`
}

// DefaultSettings returns the values a reset restores.
func DefaultSettings() Settings {
	return Settings{
		FPS:            30,
		RotationSpeed:  1,
		ColorIntensity: 0.5,
		ColorSpeed:     1,
	}
}

// Normalize clamps the settings into their supported ranges.
func (s Settings) Normalize() Settings {
	s.FPS = torus.Clamp(s.FPS, MinFPS, MaxFPS)
	s.RotationSpeed = torus.Clamp(s.RotationSpeed, MinRotationSpeed, MaxRotationSpeed)
	s.ColorSpeed = torus.Clamp(s.ColorSpeed, MinColorSpeed, MaxColorSpeed)
	return s
}

// Interval is the tick period for the target frame rate.
func (s Settings) Interval() time.Duration {
	fps := s.FPS
	if fps <= 0 {
		fps = MinFPS
	}
	return time.Second / time.Duration(fps)
}
