// Package pipeline turns fractal parameters into finished artifacts.
//
// A [Runner] drives the whole chain for one request: iterate the
// Mandelbrot/Julia pair (in one full pass or by successive refinement),
// colour the grids, draw overlays, scale, and encode PNG. Results are
// cached under a key derived from the parameters and output options, so
// repeated requests skip the iteration entirely. The same runner estimates
// box-counting dimensions.
//
// The CLI and the HTTP server both use the runner:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Params: fractal.DefaultParams(),
//	    Output: pipeline.OutputBoth,
//	})
//	os.WriteFile("out.png", res.PNG, 0644)
package pipeline

import (
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fractalview/pkg/cache"
	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/dimension"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/raster"
)

// Default output size.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Output selects which set is rendered.
const (
	OutputMandelbrot = "mandelbrot"
	OutputJulia      = "julia"
	OutputBoth       = "both"
)

// ValidOutputs is the set of supported outputs.
var ValidOutputs = map[string]bool{
	OutputMandelbrot: true,
	OutputJulia:      true,
	OutputBoth:       true,
}

// ValidateOutput checks that an output name is valid.
func ValidateOutput(output string) error {
	if !ValidOutputs[output] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid output %q (must be one of: mandelbrot, julia, both)", output)
	}
	return nil
}

// Options configures a render. Params are the Mandelbrot parameters; the
// Julia set uses fractal.JuliaParams of them.
type Options struct {
	Params fractal.Params `json:"params"`
	Output string         `json:"output,omitempty"`
	Width  int            `json:"width,omitempty"`
	Height int            `json:"height,omitempty"`

	Progressive bool `json:"progressive,omitempty"`
	StartStride int  `json:"start_stride,omitempty"`

	Mode      raster.Mode   `json:"mode,omitempty"`
	Histogram bool          `json:"histogram,omitempty"`
	Scheme    raster.Scheme `json:"-"`
	Orbit     *cplx.Number  `json:"orbit,omitempty"` // plane point whose orbit is drawn
	Scale     float64       `json:"scale,omitempty"`

	Refresh bool        `json:"refresh,omitempty"`
	Logger  *log.Logger `json:"-"`

	// OnPass, if set, is called after each progressive pass.
	OnPass func(fractal.Pass) `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Output == "" {
		o.Output = OutputBoth
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.StartStride == 0 {
		o.StartStride = fractal.DefaultStartStride
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Scheme == (raster.Scheme{}) {
		o.Scheme = raster.DefaultScheme()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}

	if err := ValidateOutput(o.Output); err != nil {
		return err
	}
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if o.Params.Variant != fractal.Mandelbrot {
		return errors.New(errors.ErrCodeInvalidParams, "render params must describe the mandelbrot set")
	}
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if o.Progressive {
		if _, err := fractal.Schedule(o.StartStride, o.Params.ChunkSize); err != nil {
			return err
		}
	}
	if err := errors.ValidatePositive("scale", o.Scale); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// RenderKeyOpts returns the cache key options for o.
func (o *Options) RenderKeyOpts() cache.RenderKeyOpts {
	outer, edge, inner := o.Scheme.Hex()
	k := cache.RenderKeyOpts{
		Output:      o.Output,
		Width:       o.Width,
		Height:      o.Height,
		Progressive: o.Progressive,
		Mode:        o.Mode.String(),
		Histogram:   o.Histogram,
		Colours:     [3]string{outer, edge, inner},
		Scale:       o.Scale,
	}
	if o.Orbit != nil {
		k.Orbit = o.Orbit.String()
	}
	return k
}

// Result is the outcome of Execute.
type Result struct {
	PNG []byte

	// Image and InsideFraction are nil on a cache hit.
	Image          *image.RGBA
	InsideFraction map[fractal.Variant]float64

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds timings.
type Stats struct {
	IterateTime time.Duration
	RenderTime  time.Duration
	Passes      int
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool
}

// DimensionOptions configures a dimension estimate of the Mandelbrot set.
type DimensionOptions struct {
	Params      fractal.Params `json:"params"`
	Width       int            `json:"width,omitempty"`
	Height      int            `json:"height,omitempty"`
	InitialSize int            `json:"initial_size,omitempty"`

	// Overlay renders the image with the boxes of the pass at OverlaySize
	// (the coarsest pass when zero) highlighted.
	Overlay     bool          `json:"overlay,omitempty"`
	OverlaySize int           `json:"overlay_size,omitempty"`
	Scheme      raster.Scheme `json:"-"`

	Refresh bool        `json:"refresh,omitempty"`
	Logger  *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *DimensionOptions) ValidateAndSetDefaults() error {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.InitialSize == 0 {
		o.InitialSize = dimension.DefaultInitialSize
	}
	if o.Scheme == (raster.Scheme{}) {
		o.Scheme = raster.DefaultScheme()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if err := o.Params.Validate(); err != nil {
		return err
	}
	sizes, err := dimension.Sizes(o.InitialSize)
	if err != nil {
		return err
	}
	if o.OverlaySize != 0 {
		found := false
		for _, s := range sizes {
			found = found || s == o.OverlaySize
		}
		if !found {
			return errors.New(errors.ErrCodeInvalidParams, "overlay size %d is not one of the box sizes %v", o.OverlaySize, sizes)
		}
	}
	return nil
}

// DimensionResult is the outcome of Dimension.
type DimensionResult struct {
	Dimension      float64         `json:"dimension"`
	Passes         []DimensionPass `json:"passes"`
	LogInverseSize []float64       `json:"log_inverse_size"`
	LogCount       []float64       `json:"log_count"`
	Overlay        []byte          `json:"overlay,omitempty"` // PNG
	CacheHit       bool            `json:"-"`
}

// DimensionPass is one box size and its count.
type DimensionPass struct {
	Size  int `json:"size"`
	Count int `json:"count"`
}
