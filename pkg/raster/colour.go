package raster

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/fractalview/pkg/errors"
)

// Scheme holds the three colours of a rendering: Outer for pixels that
// escape immediately, Edge for pixels close to the set, Inner for pixels
// inside.
type Scheme struct {
	Outer colorful.Color
	Edge  colorful.Color
	Inner colorful.Color
}

// DefaultScheme is red fading to blue around a black set.
func DefaultScheme() Scheme {
	return Scheme{
		Outer: colorful.Color{R: 1},
		Edge:  colorful.Color{B: 1},
		Inner: colorful.Color{},
	}
}

// ParseScheme builds a Scheme from three hex colours such as "#ff0000".
func ParseScheme(outer, edge, inner string) (Scheme, error) {
	var s Scheme
	for _, c := range []struct {
		name string
		hex  string
		dst  *colorful.Color
	}{{"outer", outer, &s.Outer}, {"edge", edge, &s.Edge}, {"inner", inner, &s.Inner}} {
		v, err := colorful.Hex(c.hex)
		if err != nil {
			return Scheme{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid %s colour %q", c.name, c.hex)
		}
		*c.dst = v
	}
	return s, nil
}

// Hex returns the outer, edge and inner colours as hex strings.
func (s Scheme) Hex() (outer, edge, inner string) {
	return s.Outer.Hex(), s.Edge.Hex(), s.Inner.Hex()
}

// Overlay returns the colour used for orbit lines and box outlines: the
// inverse of the outer colour.
func (s Scheme) Overlay() color.Color {
	return Invert(s.Outer)
}

// Blend returns the colour a fraction t of the way from Outer to Edge.
func (s Scheme) Blend(t float64) colorful.Color {
	return s.Outer.BlendRgb(s.Edge, clamp01(t)).Clamped()
}

// Palette rotates the hue of Outer by t full turns, keeping its saturation
// and value.
func (s Scheme) Palette(t float64) colorful.Color {
	h, sat, v := s.Outer.Hsv()
	h = math.Mod(h+360*t, 360)
	if h < 0 {
		h += 360
	}
	return colorful.Hsv(h, sat, v).Clamped()
}

// Invert returns the RGB complement of c.
func Invert(c colorful.Color) colorful.Color {
	return colorful.Color{R: 1 - c.R, G: 1 - c.G, B: 1 - c.B}.Clamped()
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

// rgba converts c to an 8-bit colour.
func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
