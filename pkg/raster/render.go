package raster

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
)

// Mode selects how escaped pixels are coloured.
type Mode int

const (
	// Blend fades linearly from the outer to the edge colour.
	Blend Mode = iota
	// Palette rotates the hue of the outer colour.
	Palette
)

// Options control Render.
type Options struct {
	Scheme    Scheme
	Mode      Mode
	Histogram bool // scale by iteration-count rank instead of count/max
}

// Render colours g. Each lattice pixel's colour fills its whole
// stride×stride block, clipped at the image edge.
func Render(g fractal.GridView, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	stride := max(g.Stride, 1)
	inner := rgba(opts.Scheme.Inner)

	var cdf []float64
	if opts.Histogram {
		cdf = Histogram(g)
	}

	for y := 0; y < g.Height; y += stride {
		for x := 0; x < g.Width; x += stride {
			count := g.Counts[y*g.Width+x]
			c := inner
			if count < g.MaxIterations {
				t := float64(count) / float64(g.MaxIterations)
				if cdf != nil {
					t = cdf[count]
				}
				if opts.Mode == Palette {
					c = rgba(opts.Scheme.Palette(t))
				} else {
					c = rgba(opts.Scheme.Blend(t))
				}
			}
			fillBlock(img, x, y, stride, c)
		}
	}
	return img
}

func fillBlock(img *image.RGBA, x, y, size int, c color.RGBA) {
	b := img.Bounds()
	for yy := y; yy < y+size && yy < b.Max.Y; yy++ {
		for xx := x; xx < x+size && xx < b.Max.X; xx++ {
			img.SetRGBA(xx, yy, c)
		}
	}
}

// Histogram returns, for every count n below the cap, the fraction of
// escaped lattice pixels with a count of at most n.
func Histogram(g fractal.GridView) []float64 {
	stride := max(g.Stride, 1)
	freq := make([]int, g.MaxIterations+1)
	total := 0
	for y := 0; y < g.Height; y += stride {
		for x := 0; x < g.Width; x += stride {
			if n := g.Counts[y*g.Width+x]; n < g.MaxIterations {
				freq[n]++
				total++
			}
		}
	}

	cdf := make([]float64, g.MaxIterations+1)
	if total == 0 {
		return cdf
	}
	running := 0
	for n := range cdf {
		running += freq[n]
		cdf[n] = float64(running) / float64(total)
	}
	return cdf
}

// Scale resizes img by factor with Catmull-Rom resampling. Factors below
// one shrink the image.
func Scale(img image.Image, factor float64) (*image.RGBA, error) {
	if factor <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidParams, "scale factor must be positive, got %v", factor)
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor+0.5))
	h := max(1, int(float64(b.Dy())*factor+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

// SideBySide places a and b next to each other, top-aligned.
func SideBySide(a, b image.Image) *image.RGBA {
	ab, bb := a.Bounds(), b.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, ab.Dx()+bb.Dx(), max(ab.Dy(), bb.Dy())))
	draw.Draw(dst, image.Rect(0, 0, ab.Dx(), ab.Dy()), a, ab.Min, draw.Src)
	draw.Draw(dst, image.Rect(ab.Dx(), 0, ab.Dx()+bb.Dx(), bb.Dy()), b, bb.Min, draw.Src)
	return dst
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return nil
}

// ParseMode parses "blend" or "palette".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "blend", "":
		return Blend, nil
	case "palette":
		return Palette, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown colour mode %q (want blend or palette)", s)
}

// String returns "blend" or "palette".
func (m Mode) String() string {
	if m == Palette {
		return "palette"
	}
	return "blend"
}
