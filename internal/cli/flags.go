package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/fractalview/pkg/config"
	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/raster"
)

// complexValue is a pflag.Value holding a complex number written as
// "x", "yi" or "x+yi".
type complexValue cplx.Number

func (v *complexValue) String() string { return cplx.Number(*v).String() }

func (v *complexValue) Set(s string) error {
	z, err := cplx.Parse(s)
	if err != nil {
		return err
	}
	*v = complexValue(z)
	return nil
}

func (v *complexValue) Type() string { return "complex" }

var _ pflag.Value = (*complexValue)(nil)

// viewFlags are the flags shared by every command that computes a view.
// Values not set on the command line come from the configuration.
type viewFlags struct {
	width, height int
	maxIterations int
	power         float64
	chunk         int
	zoom          float64
	centre        complexValue
	zStart        complexValue
}

func addViewFlags(cmd *cobra.Command, f *viewFlags) {
	d := config.Default().Render
	cmd.Flags().IntVar(&f.width, "width", d.Width, "image width in pixels")
	cmd.Flags().IntVar(&f.height, "height", d.Height, "image height in pixels")
	cmd.Flags().IntVarP(&f.maxIterations, "iterations", "n", d.MaxIterations, "maximum iterations per point")
	cmd.Flags().Float64Var(&f.power, "power", d.Power, "exponent p in z^p + c")
	cmd.Flags().IntVar(&f.chunk, "chunk", d.ChunkSize, "sampling stride (1 = every pixel)")
	cmd.Flags().Float64VarP(&f.zoom, "zoom", "z", d.Zoom, "pixels per unit of the complex plane")
	cmd.Flags().Var(&f.centre, "centre", "view centre, e.g. -0.75+0.1i")
	cmd.Flags().Var(&f.zStart, "z-start", "starting z for the mandelbrot iteration")
}

// resolve merges flags over the configuration.
func (f *viewFlags) resolve(cmd *cobra.Command, cfg config.Config) (fractal.Params, int, int) {
	changed := cmd.Flags().Changed
	r := cfg.Render
	if changed("width") {
		r.Width = f.width
	}
	if changed("height") {
		r.Height = f.height
	}
	if changed("iterations") {
		r.MaxIterations = f.maxIterations
	}
	if changed("power") {
		r.Power = f.power
	}
	if changed("chunk") {
		r.ChunkSize = f.chunk
	}
	if changed("zoom") {
		r.Zoom = f.zoom
	}
	if changed("centre") {
		r.Centre = cplx.Number(f.centre)
	}
	cfg.Render = r

	p := cfg.Params()
	p.ZStart = cplx.Number(f.zStart)
	return p, r.Width, r.Height
}

// styleFlags select colours and colouring mode.
type styleFlags struct {
	outer, edge, inner string
	mode               string
	histogram          bool
}

func addStyleFlags(cmd *cobra.Command, f *styleFlags) {
	cmd.Flags().StringVar(&f.outer, "outer", "", "outer colour (hex)")
	cmd.Flags().StringVar(&f.edge, "edge", "", "edge colour (hex)")
	cmd.Flags().StringVar(&f.inner, "inner", "", "inner colour (hex)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "colouring: blend or palette")
	cmd.Flags().BoolVar(&f.histogram, "histogram", false, "scale colours by iteration histogram")
}

func (f *styleFlags) resolve(cmd *cobra.Command, cfg config.Config) (raster.Scheme, raster.Mode, bool, error) {
	changed := cmd.Flags().Changed
	if changed("outer") {
		cfg.Colours.Outer = f.outer
	}
	if changed("edge") {
		cfg.Colours.Edge = f.edge
	}
	if changed("inner") {
		cfg.Colours.Inner = f.inner
	}
	if changed("mode") {
		cfg.Render.Mode = f.mode
	}
	scheme, err := cfg.Scheme()
	if err != nil {
		return raster.Scheme{}, 0, false, err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return raster.Scheme{}, 0, false, err
	}
	histogram := cfg.Render.Histogram
	if changed("histogram") {
		histogram = f.histogram
	}
	return scheme, mode, histogram, nil
}

// parseVariant maps the --variant flag.
func parseVariant(s string) (fractal.Variant, error) {
	v, err := fractal.ParseVariant(s)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "--variant")
	}
	return v, nil
}
