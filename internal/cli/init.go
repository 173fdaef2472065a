package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pablasso/taskloop/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long:  "Creates a commented config.yaml at --config or $XDG_CONFIG_HOME/taskloop/config.yaml.",
		Args:  cobra.NoArgs,
		// Skip config loading; the file may not exist yet.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a.cfgFile)
		},
	}
}

func runInit(cmd *cobra.Command, path string) error {
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	if err := config.WriteDefault(path); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Wrote config to", path)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Set OPENAI_API_KEY or edit llm.api_key")
	fmt.Fprintln(out, "  2. Run: taskloop run \"<objective>\"")
	return nil
}
