package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/feudal-ffa/internal/config"
)

var configPath string

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective match configuration as YAML",
		Args:  cobra.NoArgs,
		RunE:  runConfig,
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding the default tuning")
	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	out, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("rendering config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

// loadConfig returns the defaults, or the defaults overridden by path.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
