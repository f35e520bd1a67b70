package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tempomaze/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered artifact cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts from the file cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cacheDir()
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}
			store, err := cache.NewFileCache(dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared cache")
			printDetail("Directory: %s", dir)
			if c.Config.Cache.RedisURL != "" {
				printWarning("Redis entries expire on their own TTL and were not cleared")
			}
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cacheDir())
			return nil
		},
	}
}
