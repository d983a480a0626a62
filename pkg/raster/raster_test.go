package raster

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/fractal"
)

func grid(t *testing.T, w, h, chunk int) fractal.GridView {
	t.Helper()
	p := fractal.DefaultParams()
	p.ChunkSize = chunk
	p.Zoom = 30
	s, err := fractal.NewSet(w, h, p)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Iterate(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	return s.Grid()
}

func TestRenderBlocksUniform(t *testing.T) {
	const chunk = 4
	g := grid(t, 50, 42, chunk)
	img := Render(g, Options{Scheme: DefaultScheme()})

	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			want := img.RGBAAt(x-x%chunk, y-y%chunk)
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want block colour %v", x, y, got, want)
			}
		}
	}
}

func TestRenderInsideUsesInner(t *testing.T) {
	g := grid(t, 40, 40, 1)
	s := DefaultScheme()
	s.Inner = colorful.Color{G: 1}
	img := Render(g, Options{Scheme: s})

	// the centre of the default view is the origin, inside the set
	if got, want := img.RGBAAt(20, 20), (color.RGBA{G: 0xff, A: 0xff}); got != want {
		t.Errorf("centre = %v, want %v", got, want)
	}
}

func TestBlendEndpoints(t *testing.T) {
	s := DefaultScheme()
	if got := rgba(s.Blend(0)); got != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Errorf("Blend(0) = %v, want red", got)
	}
	if got := rgba(s.Blend(1)); got != (color.RGBA{B: 0xff, A: 0xff}) {
		t.Errorf("Blend(1) = %v, want blue", got)
	}
}

func TestPaletteRotatesHue(t *testing.T) {
	s := DefaultScheme()
	tests := []struct {
		t    float64
		want color.RGBA
	}{
		{0, color.RGBA{R: 0xff, A: 0xff}},
		{1.0 / 3, color.RGBA{G: 0xff, A: 0xff}},
		{2.0 / 3, color.RGBA{B: 0xff, A: 0xff}},
		{1, color.RGBA{R: 0xff, A: 0xff}},
	}
	for _, tt := range tests {
		if got := rgba(s.Palette(tt.t)); got != tt.want {
			t.Errorf("Palette(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestHistogram(t *testing.T) {
	g := fractal.GridView{
		Width: 4, Height: 1, Stride: 1, MaxIterations: 5,
		Counts: []int{1, 1, 3, 5},
	}
	cdf := Histogram(g)
	want := []float64{0, 2.0 / 3, 2.0 / 3, 1, 1, 1}
	for n := range want {
		if cdf[n] != want[n] {
			t.Errorf("cdf[%d] = %v, want %v", n, cdf[n], want[n])
		}
	}
}

func TestHistogramAllInside(t *testing.T) {
	g := fractal.GridView{Width: 2, Height: 1, Stride: 1, MaxIterations: 3, Counts: []int{3, 3}}
	for n, v := range Histogram(g) {
		if v != 0 {
			t.Errorf("cdf[%d] = %v, want 0", n, v)
		}
	}
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("#ff0000", "#0000ff", "#000000")
	if err != nil {
		t.Fatal(err)
	}
	o, e, i := s.Hex()
	if o != "#ff0000" || e != "#0000ff" || i != "#000000" {
		t.Errorf("Hex() = %s %s %s", o, e, i)
	}
	if _, err := ParseScheme("red", "#0000ff", "#000000"); err == nil {
		t.Error("expected error for non-hex colour")
	}
}

func TestMaskFromGridAndImage(t *testing.T) {
	g := grid(t, 30, 30, 1)
	s := DefaultScheme()
	img := Render(g, Options{Scheme: s})

	a := MaskFromGrid(g)
	b := MaskFromImage(img, rgba(s.Inner))
	inside := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			if a.Inside(x, y) != b.Inside(x, y) {
				t.Fatalf("masks disagree at (%d,%d)", x, y)
			}
			if a.Inside(x, y) {
				inside++
			}
		}
	}
	if inside == 0 {
		t.Error("expected some inside pixels")
	}
}

func TestScale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 6))
	out, err := Scale(img, 2)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 12 {
		t.Errorf("Scale bounds = %v, want 20x12", out.Bounds())
	}
	if _, err := Scale(img, 0); err == nil {
		t.Error("expected error for zero factor")
	}
}

func TestSideBySide(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 3, 4))
	b := image.NewRGBA(image.Rect(0, 0, 5, 2))
	b.SetRGBA(0, 0, color.RGBA{R: 1, A: 0xff})
	out := SideBySide(a, b)
	if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 4 {
		t.Errorf("bounds = %v, want 8x4", out.Bounds())
	}
	if got := out.RGBAAt(3, 0); got.R != 1 {
		t.Errorf("pixel (3,0) = %v, want b's first pixel", got)
	}
}

func TestEncodePNG(t *testing.T) {
	img := Render(grid(t, 16, 16, 2), Options{Scheme: DefaultScheme(), Mode: Palette, Histogram: true})
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatal(err)
	}
	dec, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", dec.Bounds(), img.Bounds())
	}
}

func TestDrawOrbit(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	m := fractal.Mapper{Width: 40, Height: 40, Zoom: 10}
	orbit := []cplx.Number{cplx.New(-1, 0), cplx.New(1, 0)}
	DrawOrbit(img, m, orbit, color.White)

	// the segment runs along the middle row
	if got := img.RGBAAt(20, 20); got.A == 0 {
		t.Errorf("pixel on orbit segment not drawn")
	}
	if got := img.RGBAAt(20, 5); got.A != 0 {
		t.Errorf("pixel far from orbit = %v, want untouched", got)
	}
}

func TestDrawOrbitEmpty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	DrawOrbit(img, fractal.Mapper{Width: 4, Height: 4, Zoom: 1}, nil, color.White)
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatal("empty orbit modified the image")
		}
	}
}

func TestDrawBoxes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	DrawBoxes(img, []image.Point{{X: 8, Y: 8}}, 8, color.White, color.Black, false)
	if got := img.RGBAAt(12, 12); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("box interior = %v, want white", got)
	}
	if got := img.RGBAAt(24, 24); got.A != 0 {
		t.Errorf("outside box = %v, want untouched", got)
	}
}
