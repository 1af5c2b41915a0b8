package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/phlp/studeval/internal/config"
	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage studeval configuration.

Config file: ~/.config/studeval/config.toml
Environment: STUDEVAL_BASE_DIR, STUDEVAL_SHELL`,
		Example: `  studeval config init     # Create default config
  studeval config show     # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(force)
			if err != nil {
				if !force {
					return fmt.Errorf("%w (use -f to overwrite)", err)
				}
				return err
			}
			log.FromContext(cmd.Context()).Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)

			if path, err := config.Path(); err == nil {
				out.Printf("# %s\n", path)
			}
			shown := struct {
				BaseDir      string   `toml:"base_dir"`
				Shell        []string `toml:"shell"`
				Placeholder  string   `toml:"placeholder"`
				DrainTimeout string   `toml:"drain_timeout"`
				KillGrace    string   `toml:"kill_grace"`
				Theme        string   `toml:"theme"`
			}{
				BaseDir:      cfg.BaseDir,
				Shell:        cfg.Shell,
				Placeholder:  cfg.Placeholder,
				DrainTimeout: cfg.DrainTimeout.String(),
				KillGrace:    cfg.KillGrace.String(),
				Theme:        cfg.Theme,
			}
			return toml.NewEncoder(out.Writer()).Encode(shown)
		},
	}

	return cmd
}
