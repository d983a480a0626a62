package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fractalview/pkg/buildinfo"
	"github.com/matzehuels/fractalview/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands
// registered. The configuration file is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "fractalview renders and explores Mandelbrot and Julia sets",
		Long: `fractalview renders escape-time fractals (the Mandelbrot set and its Julia
companions), explores them interactively in the terminal, estimates their
box-counting dimension, and serves renders over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.UseLogger(c.Logger)
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/fractalview/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.trackCommand())
	root.AddCommand(c.dimensionCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
