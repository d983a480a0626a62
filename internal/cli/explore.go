package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/raster"
	"github.com/matzehuels/fractalview/pkg/view"
)

// exploreOpts holds the command-line flags for the explore command.
type exploreOpts struct {
	view        viewFlags
	style       styleFlags
	startStride int
	load        string // saved view to start from
	save        string // save the final state under this name
}

// exploreCommand creates the interactive explorer command.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOpts

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the Mandelbrot set and its Julia companion in the terminal",
		Long: `Explore draws the Mandelbrot set next to the Julia set for the current
Mandelbrot centre. Panning the Mandelbrot view moves the Julia c along.

Keys: arrows pan, +/- zoom, [ and ] halve or double iterations, c cycles
the chunk size, p cycles the power, tab switches focus, u/r undo and redo,
space replays successive refinement, q quits.`,
		Example: `  fractalview explore
  fractalview explore --load seahorse --save seahorse-deeper`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd, &opts)
		},
	}

	addViewFlags(cmd, &opts.view)
	addStyleFlags(cmd, &opts.style)
	cmd.Flags().IntVar(&opts.startStride, "start-stride", 0, "first refinement stride (power of two)")
	cmd.Flags().StringVar(&opts.load, "load", "", "start from a saved view")
	cmd.Flags().StringVar(&opts.save, "save", "", "save the final view under this name")

	return cmd
}

func (c *CLI) runExplore(cmd *cobra.Command, opts *exploreOpts) error {
	ctx, cancel := context.WithCancel(withLogger(cmd.Context(), c.Logger))
	defer cancel()

	params, width, height := opts.view.resolve(cmd, c.Config)
	scheme, mode, histogram, err := opts.style.resolve(cmd, c.Config)
	if err != nil {
		return err
	}
	startStride := c.Config.Refine.StartStride
	if cmd.Flags().Changed("start-stride") {
		startStride = opts.startStride
	}
	if _, err := fractal.Schedule(startStride, params.ChunkSize); err != nil {
		return err
	}

	e, err := fractal.NewExplorer(width, height, params)
	if err != nil {
		return err
	}
	defer e.Close()
	e.Logger = c.Logger
	e.Refiner().Delay = c.Config.Refine.Delay.Duration

	var store view.Store
	if opts.load != "" || opts.save != "" {
		if store, err = c.newViewStore(ctx); err != nil {
			return err
		}
		defer store.Close()
	}
	if opts.load != "" {
		v, err := store.Load(ctx, opts.load)
		if err != nil {
			return err
		}
		if err := v.Restore(ctx, e); err != nil {
			return err
		}
		if scheme, err = v.Scheme(); err != nil {
			return err
		}
	}

	model := NewExploreModel(ctx, e, raster.Options{Scheme: scheme, Mode: mode, Histogram: histogram}, startStride)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("explorer: %w", err)
	}

	if opts.save != "" {
		v, err := view.FromExplorer(opts.save, e, scheme)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, v); err != nil {
			return err
		}
		printSuccess("Saved view %s", StyleHighlight.Render(opts.save))
	}
	return nil
}
