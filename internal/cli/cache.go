package cli

import (
	"fmt"
	"os"

	"github.com/gitguardhq/gitguard/internal/cache"
	"github.com/gitguardhq/gitguard/internal/config"
	"github.com/gitguardhq/gitguard/internal/gitrepo"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the verdict cache",
}

// openCache builds the cache from the effective config. Management
// commands force it on so the default directory is reachable even
// while caching is disabled for runs.
func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	var root string
	if cwd, err := os.Getwd(); err == nil {
		if repo, err := gitrepo.Open(cmd.Context(), cwd, nil); err == nil {
			root = repo.Root()
		}
	}
	cfg, err := config.Load(root, "", nil)
	if err != nil {
		return nil, err
	}
	return cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show verdict cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			return err
		}
		stats, err := c.GetStats()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Directory: %s\n", stats.Dir)
		fmt.Fprintf(os.Stdout, "Entries:   %d\n", stats.Entries)
		fmt.Fprintf(os.Stdout, "Size:      %d bytes\n", stats.TotalBytes)
		fmt.Fprintf(os.Stdout, "Expired:   %d\n", stats.Expired)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached verdicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			return err
		}
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Cache cleared at %s\n", c.Dir())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
