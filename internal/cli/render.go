package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/pipeline"
	"github.com/matzehuels/fractalview/pkg/view"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	view        viewFlags
	style       styleFlags
	output      string // PNG path
	set         string // mandelbrot, julia or both
	progressive bool
	startStride int
	orbit       complexValue
	scale       float64
	viewFile    string // TOML view file to render instead of flags
	noCache     bool
	refresh     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{set: pipeline.OutputBoth, scale: 1}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the Mandelbrot set and/or its Julia companion to PNG",
		Example: `  fractalview render -o set.png
  fractalview render --centre=-0.7436+0.1318i --zoom 40000 -n 800 --set mandelbrot
  fractalview render --progressive --chunk 2 --orbit=-0.1+0.65i`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, &opts)
		},
	}

	addViewFlags(cmd, &opts.view)
	addStyleFlags(cmd, &opts.style)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "fractal.png", "output PNG file")
	cmd.Flags().StringVar(&opts.set, "set", opts.set, "what to render: mandelbrot, julia or both")
	cmd.Flags().BoolVar(&opts.progressive, "progressive", false, "iterate by successive refinement")
	cmd.Flags().IntVar(&opts.startStride, "start-stride", 0, "first refinement stride (power of two)")
	cmd.Flags().Var(&opts.orbit, "orbit", "draw the orbit of this point")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "scale the output image by this factor")
	cmd.Flags().StringVar(&opts.viewFile, "view", "", "render a saved view file (TOML)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached renders")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	popts, err := c.renderOptions(cmd, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", popts.Output))
	popts.OnPass = func(p fractal.Pass) {
		spinner.SetMessage(fmt.Sprintf("Refined %s at stride %d...", p.Variant, p.Stride))
	}
	spinner.Start()
	res, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.output, res.PNG, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("Rendered "+popts.Output, "passes", res.Stats.Passes, "cached", res.CacheInfo.RenderHit)

	printSuccess("Rendered %s", popts.Output)
	printFile(opts.output)
	printRenderStats(res)
	return nil
}

// renderOptions builds pipeline options from flags, config, and an
// optional view file.
func (c *CLI) renderOptions(cmd *cobra.Command, opts *renderOpts) (pipeline.Options, error) {
	params, width, height := opts.view.resolve(cmd, c.Config)
	scheme, mode, histogram, err := opts.style.resolve(cmd, c.Config)
	if err != nil {
		return pipeline.Options{}, err
	}

	if opts.viewFile != "" {
		v, err := view.ReadFile(opts.viewFile)
		if err != nil {
			return pipeline.Options{}, err
		}
		records, err := v.Params()
		if err != nil {
			return pipeline.Options{}, err
		}
		params = records[0]
		if scheme, err = v.Scheme(); err != nil {
			return pipeline.Options{}, err
		}
	}

	startStride := c.Config.Refine.StartStride
	if cmd.Flags().Changed("start-stride") {
		startStride = opts.startStride
	}

	popts := pipeline.Options{
		Params:      params,
		Output:      opts.set,
		Width:       width,
		Height:      height,
		Progressive: opts.progressive,
		StartStride: startStride,
		Mode:        mode,
		Histogram:   histogram,
		Scheme:      scheme,
		Scale:       opts.scale,
		Refresh:     opts.refresh,
		Logger:      c.Logger,
	}
	if cmd.Flags().Changed("orbit") {
		z := cplx.Number(opts.orbit)
		popts.Orbit = &z
	}
	return popts, popts.ValidateAndSetDefaults()
}

func printRenderStats(res *pipeline.Result) {
	if res.CacheInfo.RenderHit {
		printStats(nil, 0, true)
		return
	}
	printStats(res.InsideFraction, res.Stats.Passes, false)
	printDetail("iterate %s · render %s",
		res.Stats.IterateTime.Round(time.Millisecond), res.Stats.RenderTime.Round(time.Millisecond))
}

// variantOrder is the display order of per-set statistics.
var variantOrder = []fractal.Variant{fractal.Mandelbrot, fractal.Julia}
