package raster

import (
	"image"
	"image/color"

	"github.com/matzehuels/fractalview/pkg/fractal"
)

// Mask is a per-pixel inside/outside bitmap.
type Mask struct {
	Width, Height int
	inside        []bool
}

// MaskFromGrid classifies every pixel of g, replicating lattice results
// over their blocks.
func MaskFromGrid(g fractal.GridView) *Mask {
	m := &Mask{Width: g.Width, Height: g.Height, inside: make([]bool, g.Width*g.Height)}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			m.inside[y*g.Width+x] = g.Inside(x, y)
		}
	}
	return m
}

// MaskFromImage classifies pixels of a rendered image: a pixel is inside
// when its colour equals inner.
func MaskFromImage(img image.Image, inner color.Color) *Mask {
	b := img.Bounds()
	m := &Mask{Width: b.Dx(), Height: b.Dy(), inside: make([]bool, b.Dx()*b.Dy())}
	ir, ig, ib, ia := inner.RGBA()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			m.inside[y*m.Width+x] = r == ir && g == ig && bl == ib && a == ia
		}
	}
	return m
}

// Bounds returns the mask dimensions.
func (m *Mask) Bounds() (width, height int) { return m.Width, m.Height }

// Inside reports whether pixel (x, y) is inside the set.
func (m *Mask) Inside(x, y int) bool { return m.inside[y*m.Width+x] }

// Image renders the mask in two colours.
func (m *Mask) Image(in, out color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Inside(x, y) {
				img.Set(x, y, in)
			} else {
				img.Set(x, y, out)
			}
		}
	}
	return img
}
