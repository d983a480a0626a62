package raster

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/fractal"
)

const crossSize = 4

// DrawOrbit traces orbit on img in colour c, mapping plane points through
// m. The first and last points are marked with a diagonal cross.
func DrawOrbit(img *image.RGBA, m fractal.Mapper, orbit []cplx.Number, c color.Color) {
	if len(orbit) == 0 {
		return
	}
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(c)
	dc.SetLineWidth(1)

	px, py := m.ComplexToPixel(orbit[0])
	cross(dc, px, py)
	for _, z := range orbit[1:] {
		nx, ny := m.ComplexToPixel(z)
		dc.DrawLine(float64(px)+0.5, float64(py)+0.5, float64(nx)+0.5, float64(ny)+0.5)
		px, py = nx, ny
	}
	dc.Stroke()
	if len(orbit) > 1 {
		cross(dc, px, py)
	}
}

func cross(dc *gg.Context, x, y int) {
	fx, fy := float64(x)+0.5, float64(y)+0.5
	dc.DrawLine(fx-crossSize, fy-crossSize, fx+crossSize, fy+crossSize)
	dc.DrawLine(fx-crossSize, fy+crossSize, fx+crossSize, fy-crossSize)
	dc.Stroke()
}

// DrawBoxes fills the given size×size boxes on img and outlines them. With
// grid set, the full box grid is drawn as well.
func DrawBoxes(img *image.RGBA, boxes []image.Point, size int, fill, line color.Color, grid bool) {
	dc := gg.NewContextForRGBA(img)
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	s := float64(size)

	dc.SetColor(fill)
	for _, b := range boxes {
		dc.DrawRectangle(float64(b.X)+1, float64(b.Y)+1, s-1, s-1)
	}
	dc.Fill()

	dc.SetColor(line)
	dc.SetLineWidth(1)
	if grid {
		for x := 0.0; x < w; x += s {
			dc.DrawLine(x+0.5, 0, x+0.5, h)
		}
		for y := 0.0; y < h; y += s {
			dc.DrawLine(0, y+0.5, w, y+0.5)
		}
	} else {
		for _, b := range boxes {
			dc.DrawRectangle(float64(b.X)+0.5, float64(b.Y)+0.5, s, s)
		}
	}
	dc.Stroke()
}
