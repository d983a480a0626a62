package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fractalview/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached renders and dimension estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cc, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}
			defer cc.Close()

			switch cc := cc.(type) {
			case *cache.FileCache:
				if err := cc.Clear(); err != nil {
					return err
				}
				printSuccess("Cleared render cache")
				printDetail("Directory: %s", cc.Dir())
			case *cache.RedisCache:
				if err := cc.Clear(ctx); err != nil {
					return err
				}
				printSuccess("Cleared render cache")
				printDetail("Redis: %s", c.Config.Cache.RedisAddr)
			default:
				printInfo("Caching is disabled")
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.Config.Cache.Dir
			if dir == "" {
				var err error
				if dir, err = cacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
