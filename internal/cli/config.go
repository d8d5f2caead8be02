// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds defaults that flags fall back to when not set explicitly.
// Values come from the YAML config file, then IMAGENETTE_* environment
// variables, then CLI flags (strongest).
type Config struct {
	Root string `yaml:"root" envconfig:"ROOT"`
	Out  string `yaml:"out" envconfig:"OUT"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Root: "datasets",
		Out:  "project",
	}
}

func configPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".config", "imagenette.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// loadConfig reads the config file (if any) and applies environment
// overrides.
func loadConfig(explicit string) (Config, error) {
	cfg := Config{}

	if path := configPath(explicit); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("imagenette", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyConfigDefaults overwrites flag destinations that the user did not set
// on the command line with values from the config file / environment.
func applyConfigDefaults(cmd *cobra.Command, ro *RootOpts, dests map[string]*string) error {
	cfg, err := loadConfig(ro.Config)
	if err != nil {
		return err
	}

	apply := func(flagName, value string) {
		if value == "" || cmd.Flags().Changed(flagName) {
			return
		}
		if dst, ok := dests[flagName]; ok {
			*dst = value
		}
	}
	apply("root", cfg.Root)
	apply("out", cfg.Out)
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Long: `Creates a default configuration file at ~/.config/imagenette.yaml.

The configuration file sets default values for the --root and --out flags.
Environment variables (IMAGENETTE_ROOT, IMAGENETTE_OUT) and CLI flags
override config file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("could not find home directory: %w", err)
			}

			configDir := filepath.Join(home, ".config")
			path := filepath.Join(configDir, "imagenette.yaml")

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
			}
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				return fmt.Errorf("could not create config directory: %w", err)
			}

			data, err := yaml.Marshal(DefaultConfig())
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("could not write config file: %w", err)
			}

			fmt.Printf("created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath("")
			if path == "" {
				fmt.Println("No config file found.")
				fmt.Println("Run 'imagenette config init' to create one.")
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("Config file: %s\n\n%s", path, data)
			return nil
		},
	}
}
