package fractal

import (
	"image"
	"math"

	"github.com/matzehuels/fractalview/pkg/cplx"
)

// Mapper converts between pixel coordinates and points of the complex
// plane. The pixel (Width/2, Height/2) maps to Centre and one unit of the
// plane spans Zoom pixels. The imaginary axis points up.
type Mapper struct {
	Width, Height int
	Centre        cplx.Number
	Zoom          float64
}

// PixelToComplex returns the plane point under pixel (x, y).
func (m Mapper) PixelToComplex(x, y int) cplx.Number {
	return cplx.Number{
		Re: m.Centre.Re + float64(x-m.Width/2)/m.Zoom,
		Im: m.Centre.Im - float64(y-m.Height/2)/m.Zoom,
	}
}

// ComplexToPixel returns the pixel nearest to z. The result may lie outside
// the image.
func (m Mapper) ComplexToPixel(z cplx.Number) (x, y int) {
	x = int(math.Round((z.Re-m.Centre.Re)*m.Zoom)) + m.Width/2
	y = int(math.Round(-(z.Im-m.Centre.Im)*m.Zoom)) + m.Height/2
	return x, y
}

// Drag returns the centre that keeps the plane point under from
// underneath to after a pointer drag.
func (m Mapper) Drag(from, to image.Point) cplx.Number {
	delta := m.PixelToComplex(to.X, to.Y).Sub(m.PixelToComplex(from.X, from.Y))
	return m.Centre.Sub(delta)
}

// Bounds returns the plane points under the top-left and bottom-right
// pixels.
func (m Mapper) Bounds() (topLeft, bottomRight cplx.Number) {
	return m.PixelToComplex(0, 0), m.PixelToComplex(m.Width-1, m.Height-1)
}
