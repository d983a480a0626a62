package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/matzehuels/fractalview/pkg/cache"
	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
)

func testParams() fractal.Params {
	p := fractal.DefaultParams()
	p.Zoom = 20
	p.MaxIterations = 60
	return p
}

func TestValidateOutput(t *testing.T) {
	tests := []struct {
		output  string
		wantErr bool
	}{
		{"mandelbrot", false},
		{"julia", false},
		{"both", false},
		{"Both", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateOutput(tt.output)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateOutput(%q) error = %v, wantErr %v", tt.output, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Params: testParams()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Output != OutputBoth || opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("defaults = %s %dx%d", opts.Output, opts.Width, opts.Height)
	}
	if opts.Scale != 1 || opts.StartStride != fractal.DefaultStartStride {
		t.Errorf("scale = %v, start stride = %d", opts.Scale, opts.StartStride)
	}
}

func TestOptionsInvalid(t *testing.T) {
	julia := fractal.JuliaParams(testParams())
	bad := testParams()
	bad.MaxIterations = 0

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"output", Options{Params: testParams(), Output: "both-ways"}, errors.ErrCodeInvalidInput},
		{"julia params", Options{Params: julia}, errors.ErrCodeInvalidParams},
		{"params", Options{Params: bad}, errors.ErrCodeInvalidParams},
		{"size", Options{Params: testParams(), Width: -1}, errors.ErrCodeInvalidParams},
		{"stride", Options{Params: testParams(), Progressive: true, StartStride: 6}, errors.ErrCodeInvalidParams},
		{"scale", Options{Params: testParams(), Scale: -2}, errors.ErrCodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	orbit := cplx.New(-0.1, 0.65)
	tests := []struct {
		name  string
		opts  Options
		wantW int
		wantH int
	}{
		{"both", Options{Output: OutputBoth, Width: 40, Height: 30}, 80, 30},
		{"mandelbrot progressive", Options{Output: OutputMandelbrot, Width: 40, Height: 30, Progressive: true, StartStride: 8}, 40, 30},
		{"julia orbit", Options{Output: OutputJulia, Width: 40, Height: 30, Orbit: &orbit}, 40, 30},
		{"scaled", Options{Output: OutputMandelbrot, Width: 40, Height: 30, Scale: 0.5}, 20, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Params = testParams()
			res, err := NewRunner(nil, nil, nil).Execute(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			img, err := png.Decode(bytes.NewReader(res.PNG))
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			if f := res.InsideFraction[fractal.Mandelbrot]; f <= 0 || f >= 1 {
				t.Errorf("mandelbrot inside fraction = %v, want in (0,1)", f)
			}
		})
	}
}

func TestExecuteProgressiveMatchesFull(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	full, err := r.Execute(ctx, Options{Params: testParams(), Width: 48, Height: 32})
	if err != nil {
		t.Fatal(err)
	}
	var strides []int
	prog, err := r.Execute(ctx, Options{
		Params: testParams(), Width: 48, Height: 32, Progressive: true,
		OnPass: func(p fractal.Pass) { strides = append(strides, p.Stride) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(strides) != prog.Stats.Passes || strides[len(strides)-1] != 1 {
		t.Errorf("OnPass strides = %v, want %d passes ending at 1", strides, prog.Stats.Passes)
	}
	if !bytes.Equal(full.Image.Pix, prog.Image.Pix) {
		t.Error("progressive render differs from full render")
	}
	if prog.Stats.Passes != 10 {
		t.Errorf("progressive passes = %d, want 10", prog.Stats.Passes)
	}
}

func TestExecuteCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	opts := Options{Params: testParams(), Width: 32, Height: 32}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the cache")
	}
	if !bytes.Equal(first.PNG, second.PNG) {
		t.Error("cached PNG differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}

	changed := Options{Params: testParams(), Width: 32, Height: 32, Histogram: true}
	fourth, err := r.Execute(ctx, changed)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.RenderHit {
		t.Error("different options should miss the cache")
	}
}

func TestExecuteCacheKeyedByOutput(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)

	tests := []struct {
		output string
		width  int
	}{
		{OutputMandelbrot, 32},
		{OutputJulia, 32},
		{OutputBoth, 64},
	}
	for _, tt := range tests {
		res, err := r.Execute(ctx, Options{Params: testParams(), Output: tt.output, Width: 32, Height: 24})
		if err != nil {
			t.Fatalf("%s: %v", tt.output, err)
		}
		if res.CacheInfo.RenderHit {
			t.Errorf("%s: RenderHit = true, want false", tt.output)
		}
		img, err := png.Decode(bytes.NewReader(res.PNG))
		if err != nil {
			t.Fatalf("%s: decode: %v", tt.output, err)
		}
		if got := img.Bounds().Dx(); got != tt.width {
			t.Errorf("%s: width = %v, want %v", tt.output, got, tt.width)
		}
	}

	again, err := r.Execute(ctx, Options{Params: testParams(), Output: OutputJulia, Width: 32, Height: 24})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RenderHit {
		t.Error("repeat julia render: RenderHit = false, want true")
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).Execute(ctx, Options{Params: testParams(), Width: 32, Height: 32})
	if !errors.Is(err, errors.ErrCodeCancelled) {
		t.Errorf("err = %v, want CANCELLED", err)
	}
}

func TestDimension(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	p := fractal.DefaultParams()
	p.Zoom = 100
	p.MaxIterations = 80
	opts := DimensionOptions{Params: p, Width: 256, Height: 256, InitialSize: 64, Overlay: true}

	res, err := r.Dimension(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Dimension < 1 || res.Dimension > 2 {
		t.Errorf("dimension = %v, want in [1,2]", res.Dimension)
	}
	if len(res.Passes) != 5 {
		t.Errorf("passes = %d, want 5 (sizes 32..2)", len(res.Passes))
	}
	if _, err := png.Decode(bytes.NewReader(res.Overlay)); err != nil {
		t.Errorf("overlay is not a PNG: %v", err)
	}

	again, err := r.Dimension(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit || again.Dimension != res.Dimension {
		t.Errorf("cached result = %+v (hit %v), want %v", again.Dimension, again.CacheHit, res.Dimension)
	}
}

func TestDimensionInvalid(t *testing.T) {
	opts := DimensionOptions{Params: testParams(), InitialSize: 64, OverlaySize: 3}
	if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("err = %v, want INVALID_PARAMS", err)
	}
}
