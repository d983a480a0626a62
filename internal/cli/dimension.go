package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fractalview/pkg/pipeline"
)

type dimensionOpts struct {
	view        viewFlags
	initialSize int
	overlay     string // PNG path for the box overlay
	overlaySize int
	noCache     bool
	refresh     bool
}

// dimensionCommand estimates the box-counting dimension of the view's
// boundary.
func (c *CLI) dimensionCommand() *cobra.Command {
	var opts dimensionOpts

	cmd := &cobra.Command{
		Use:   "dimension",
		Short: "Estimate the box-counting dimension of the set boundary",
		Example: `  fractalview dimension --width 1024 --height 1024 -n 500
  fractalview dimension --overlay boxes.png --overlay-size 16`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, width, height := opts.view.resolve(cmd, c.Config)
			scheme, err := c.Config.Scheme()
			if err != nil {
				return err
			}
			initial := c.Config.Dimension.InitialSize
			if cmd.Flags().Changed("initial-size") {
				initial = opts.initialSize
			}
			dopts := pipeline.DimensionOptions{
				Params:      params,
				Width:       width,
				Height:      height,
				InitialSize: initial,
				Overlay:     opts.overlay != "",
				OverlaySize: opts.overlaySize,
				Scheme:      scheme,
				Refresh:     opts.refresh,
				Logger:      c.Logger,
			}
			return c.runDimension(cmd, dopts, &opts)
		},
	}

	addViewFlags(cmd, &opts.view)
	cmd.Flags().IntVar(&opts.initialSize, "initial-size", 0, "initial box size (power of two >= 8); passes start at half of it")
	cmd.Flags().StringVar(&opts.overlay, "overlay", "", "write a PNG with the counted boxes highlighted")
	cmd.Flags().IntVar(&opts.overlaySize, "overlay-size", 0, "box size shown in the overlay (default: largest)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	return cmd
}

func (c *CLI) runDimension(cmd *cobra.Command, dopts pipeline.DimensionOptions, opts *dimensionOpts) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Counting boxes...")
	spinner.Start()
	res, err := runner.Dimension(ctx, dopts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Estimated dimension", "dimension", res.Dimension)

	rows := make([][]string, len(res.Passes))
	for i, p := range res.Passes {
		rows[i] = []string{strconv.Itoa(p.Size), strconv.Itoa(p.Count)}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("box size", "boxes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
		})
	fmt.Fprintln(stdout, t.Render())

	printKeyValue("dimension", StyleNumber.Render(strconv.FormatFloat(res.Dimension, 'f', 4, 64)))
	printStats(nil, len(res.Passes), res.CacheHit)

	if opts.overlay != "" {
		if err := os.WriteFile(opts.overlay, res.Overlay, 0644); err != nil {
			return fmt.Errorf("write %s: %w", opts.overlay, err)
		}
		printFile(opts.overlay)
	}
	return nil
}
