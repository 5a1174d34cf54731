package torus

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Channel bounds applied by every palette: never fully black, never past 255.
const (
	MinChannel = 50
	MaxChannel = 255
)

// RGB is an 8-bit colour.
type RGB struct {
	R, G, B uint8
}

// Hex formats the colour as #rrggbb.
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// Shade is what a palette sees for one filled cell.
type Shade struct {
	Index     int // glyph position in Ramp
	AngleA    float64
	Intensity float64
	Hue       float64
}

// Brightness is the glyph's position along Ramp as a fraction of its length.
func (s Shade) Brightness() float64 {
	return float64(s.Index) / float64(len(Ramp))
}

// Palette maps a shaded cell to a colour.
type Palette interface {
	Name() string
	Color(s Shade) RGB
}

// Classic tints each glyph by the rotation angle and its own brightness.
type Classic struct{}

func (Classic) Name() string { return "classic" }

func (Classic) Color(s Shade) RGB {
	brightness := s.Brightness()
	hue := (s.AngleA + brightness) * 0.1
	channel := func(offset float64) uint8 {
		v := math.Floor(128 + 100*math.Sin(hue+offset)*s.Intensity + 50*brightness)
		return uint8(Clamp(v, MinChannel, MaxChannel))
	}
	return RGB{R: channel(0), G: channel(2), B: channel(4)}
}

// Spectrum cycles a fully saturated hue over time. Intensity sets the
// saturation and denser glyphs get a higher value.
type Spectrum struct{}

func (Spectrum) Name() string { return "spectrum" }

func (Spectrum) Color(s Shade) RGB {
	hue := s.Hue - math.Floor(s.Hue)
	sat := Clamp(s.Intensity, 0, 1)
	val := 0.6 + 0.4*s.Brightness()
	r, g, b := colorful.Hsv(hue*360, sat, val).RGB255()
	return RGB{
		R: Clamp(r, MinChannel, MaxChannel),
		G: Clamp(g, MinChannel, MaxChannel),
		B: Clamp(b, MinChannel, MaxChannel),
	}
}

// Palettes lists the selectable palettes by name.
var Palettes = []Palette{Classic{}, Spectrum{}}

// ParsePalette looks a palette up by name.
func ParsePalette(name string) (Palette, error) {
	for _, p := range Palettes {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown palette %q", name)
}
