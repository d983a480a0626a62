package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/pipeline"
	"github.com/matzehuels/fractalview/pkg/view"
)

// viewCommand creates the saved-view management command.
func (c *CLI) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Manage saved views",
		Long: `Saved views hold the parameters of a Mandelbrot view and its Julia
companion together with a colour scheme. They live in the configured view
store (TOML files by default, or MongoDB).`,
	}

	cmd.AddCommand(c.viewSaveCommand())
	cmd.AddCommand(c.viewListCommand())
	cmd.AddCommand(c.viewLoadCommand())
	cmd.AddCommand(c.viewDeleteCommand())
	cmd.AddCommand(c.viewExportCommand())
	cmd.AddCommand(c.viewImportCommand())

	return cmd
}

// viewSaveCommand saves the view described by the view flags.
func (c *CLI) viewSaveCommand() *cobra.Command {
	var (
		vf viewFlags
		sf styleFlags
	)
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save a view from flags and configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, _, _ := vf.resolve(cmd, c.Config)
			scheme, _, _, err := sf.resolve(cmd, c.Config)
			if err != nil {
				return err
			}
			v, err := view.New(args[0], []view.Record{
				view.FromParams(params, scheme),
				view.FromParams(fractal.JuliaParams(params), scheme),
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := c.newViewStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(ctx, v); err != nil {
				return err
			}
			printSuccess("Saved view %s", StyleHighlight.Render(v.Name))
			return nil
		},
	}
	addViewFlags(cmd, &vf)
	addStyleFlags(cmd, &sf)
	return cmd
}

func (c *CLI) viewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newViewStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			views, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(views) == 0 {
				printInfo("No saved views")
				return nil
			}
			printViewTable(stdout, views)
			return nil
		},
	}
}

func printViewTable(w io.Writer, views []*view.View) {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		centre, zoom, c := "—", "—", "—"
		if params, err := v.Params(); err == nil {
			centre = params[0].Centre.Format(6)
			zoom = fmt.Sprintf("%g", params[0].Zoom)
			c = params[1].C.Format(6)
		}
		rows = append(rows, []string{v.Name, centre, zoom, c, formatRelativeTime(v.UpdatedAt)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Centre", "Zoom", "Julia c", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch col {
			case 0:
				return listSelectedStyle
			case 4:
				return listDimStyle
			}
			return listNormalStyle
		})
	fmt.Fprintln(w, t.Render())
}

// viewLoadCommand prints a saved view and optionally renders it.
func (c *CLI) viewLoadCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:               "load NAME",
		Aliases:           []string{"show"},
		Short:             "Print a saved view, or render it with --output",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeViewNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newViewStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			v, err := store.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if output != "" {
				return c.renderView(cmd, v, output)
			}
			printView(v)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "render the view to this PNG file")
	return cmd
}

func printView(v *view.View) {
	fmt.Fprintln(stdout, StyleTitle.Render(v.Name))
	printKeyValue("id", v.ID)
	printKeyValue("updated", formatRelativeTime(v.UpdatedAt))
	for _, r := range v.Records {
		printNewline()
		fmt.Fprintln(stdout, StyleHighlight.Render(r.Variant.String()))
		printKeyValue("centre", r.Centre.Format(10))
		printKeyValue("zoom", fmt.Sprintf("%g", r.Zoom))
		printKeyValue("iterations", fmt.Sprintf("%d", r.MaxIterations))
		printKeyValue("power", fmt.Sprintf("%g", r.Power))
		printKeyValue("chunk", fmt.Sprintf("%d", r.ChunkSize))
		if r.Variant == fractal.Julia {
			printKeyValue("c", r.C.Format(10))
		} else {
			printKeyValue("z start", r.ZStart.Format(10))
		}
	}
	printNewline()
	printNextStep("Render it", fmt.Sprintf("%s view load %s -o %s.png", appName, v.Name, v.Name))
}

// renderView renders both sets of v at the configured size.
func (c *CLI) renderView(cmd *cobra.Command, v *view.View, output string) error {
	params, err := v.Params()
	if err != nil {
		return err
	}
	scheme, err := v.Scheme()
	if err != nil {
		return err
	}
	mode, err := c.Config.Mode()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, pipeline.Options{
		Params:    params[0],
		Width:     c.Config.Render.Width,
		Height:    c.Config.Render.Height,
		Mode:      mode,
		Histogram: c.Config.Render.Histogram,
		Scheme:    scheme,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, res.PNG, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Rendered view %s", StyleHighlight.Render(v.Name))
	printFile(output)
	printRenderStats(res)
	return nil
}

func (c *CLI) viewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete NAME",
		Short:             "Delete a saved view",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeViewNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newViewStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted view %s", args[0])
			return nil
		},
	}
}

func (c *CLI) viewExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "export NAME FILE",
		Short:             "Write a saved view to a TOML file",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeViewNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newViewStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			v, err := store.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if err := view.WriteFile(args[1], v); err != nil {
				return err
			}
			printSuccess("Exported view %s", v.Name)
			printFile(args[1])
			return nil
		},
	}
}

func (c *CLI) viewImportCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Add a view from a TOML file to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := view.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name != "" {
				v.Name = name
			}
			if err := v.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := c.newViewStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(ctx, v); err != nil {
				return err
			}
			printSuccess("Imported view %s", StyleHighlight.Render(v.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "store under this name instead of the file's")
	return cmd
}
