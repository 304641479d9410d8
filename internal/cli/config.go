package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gitguardhq/gitguard/internal/config"
	"github.com/gitguardhq/gitguard/internal/gitrepo"
	"github.com/spf13/cobra"
)

var flagGlobal bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gitguard configuration",
}

// configTargetPath picks the file init and set operate on: the repo's
// .gitguard/config.json, or the user-level file with --global.
func configTargetPath(ctx context.Context) (string, error) {
	if flagGlobal {
		return config.GlobalPath()
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	repo, err := gitrepo.Open(ctx, cwd, nil)
	if err != nil {
		return "", fmt.Errorf("not inside a git repository; use --global for the user-level config: %w", err)
	}
	return filepath.Join(repo.Root(), ".gitguard", "config.json"), nil
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTargetPath(cmd.Context())
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Config file already exists at %s\n", path)
			return nil
		}

		if err := config.Save(config.Default(), path); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(os.Stdout, "Config file created at %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTargetPath(cmd.Context())
		if err != nil {
			return err
		}

		cfg, err := config.LoadFile(path)
		if err != nil {
			// No config file yet — start from defaults
			cfg = config.Default()
		}

		if err := config.SetField(&cfg, args[0], args[1]); err != nil {
			return err
		}

		if err := config.Save(cfg, path); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Fprintf(os.Stdout, "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		var root string
		if cwd, err := os.Getwd(); err == nil {
			if repo, err := gitrepo.Open(cmd.Context(), cwd, nil); err == nil {
				root = repo.Root()
			}
		}

		cfg, err := config.Load(root, "", nil)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.PersistentFlags().BoolVar(&flagGlobal, "global", false, "Operate on the user-level config (~/.gitguard)")
}
