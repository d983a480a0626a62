package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/fractal"
)

type trackOpts struct {
	variant      string
	c            complexValue
	zStart       complexValue
	power        float64
	maxIter      int
	includeStart bool
	decimals     int
}

// trackCommand prints the orbit of a single point.
func (c *CLI) trackCommand() *cobra.Command {
	opts := trackOpts{variant: "mandelbrot", decimals: 6}

	cmd := &cobra.Command{
		Use:   "track POINT",
		Short: "Print the orbit of a point",
		Long: `Print the orbit of a point under z ← z^p + c.

For the mandelbrot set POINT is c and the orbit starts at --z-start. For a
julia set POINT is the starting z and c comes from --c.`,
		Example: `  fractalview track -- -0.1+0.65i
  fractalview track --variant julia --c=-0.8+0.156i 0.3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			point, err := cplx.Parse(args[0])
			if err != nil {
				return err
			}
			v, err := parseVariant(opts.variant)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("power") {
				opts.power = c.Config.Render.Power
			}
			if !cmd.Flags().Changed("iterations") {
				opts.maxIter = c.Config.Render.MaxIterations
			}
			return runTrack(stdout, v, point, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.variant, "variant", opts.variant, "mandelbrot or julia")
	cmd.Flags().Var(&opts.c, "c", "fixed c for julia orbits")
	cmd.Flags().Var(&opts.zStart, "z-start", "starting z for mandelbrot orbits")
	cmd.Flags().Float64Var(&opts.power, "power", fractal.DefaultPower, "exponent p")
	cmd.Flags().IntVarP(&opts.maxIter, "iterations", "n", fractal.DefaultMaxIterations, "maximum orbit length")
	cmd.Flags().BoolVar(&opts.includeStart, "include-start", false, "list the starting value as step 0")
	cmd.Flags().IntVar(&opts.decimals, "decimals", opts.decimals, "decimal places printed")
	return cmd
}

func runTrack(w io.Writer, v fractal.Variant, point cplx.Number, opts *trackOpts) error {
	p := fractal.DefaultParams()
	p.Variant = v
	p.Power = opts.power
	p.MaxIterations = opts.maxIter
	if err := p.Validate(); err != nil {
		return err
	}

	zStart, c := cplx.Number(opts.zStart), point
	if v == fractal.Julia {
		zStart, c = point, cplx.Number(opts.c)
	}
	orbit := fractal.Track(zStart, c, opts.power, opts.maxIter, opts.includeStart)
	count, _ := fractal.IteratePoint(zStart, c, opts.power, opts.maxIter)

	first := 1
	if opts.includeStart {
		first = 0
	}
	rows := make([][]string, len(orbit))
	for i, z := range orbit {
		rows[i] = []string{
			strconv.Itoa(first + i),
			z.Format(opts.decimals),
			strconv.FormatFloat(z.Magnitude(), 'f', opts.decimals, 64),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("step", "z", "|z|").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(w, t.Render())

	if count >= opts.maxIter {
		fmt.Fprintln(w, StyleSuccess.Render(fmt.Sprintf("bounded after %d iterations (inside)", count)))
	} else {
		fmt.Fprintln(w, StyleWarning.Render(fmt.Sprintf("escaped after %d iterations", count)))
	}
	return nil
}
