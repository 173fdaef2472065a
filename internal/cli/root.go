// Package cli implements the taskloop command-line interface using Cobra.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pablasso/taskloop/internal/config"
	"github.com/pablasso/taskloop/internal/logging"
	"github.com/pablasso/taskloop/internal/version"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string
	logFile   string

	cfg     *config.Config
	logger  zerolog.Logger
	logSink io.Closer
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskloop",
		Short: "Task-driven autonomous agent loop",
		Long: `Taskloop pursues an objective by executing one task at a time and asking a
model to rewrite the remaining task list after each result.

Run 'taskloop init' to write a config file, then 'taskloop run "<objective>"'.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/taskloop/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "override logging format (json, console)")
	flags.StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(
		newRunCmd(a),
		newServeCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	a := &app{}
	return a.execute(context.Background(), newRootCmd(a))
}

// execute runs cmd and releases the log sink afterwards, including when RunE
// fails and cobra skips its post-run hooks.
func (a *app) execute(ctx context.Context, cmd *cobra.Command) error {
	defer a.teardown()
	return cmd.ExecuteContext(ctx)
}

// setup loads configuration and initializes logging. Flags override the
// config file and environment.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = a.logFile
	}
	a.cfg = cfg

	out := cmd.ErrOrStderr()
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logSink = f
		out = f
	}
	a.initLogging(out)

	if cfg.Path != "" {
		a.logger.Debug().Str("config_file", cfg.Path).Msg("loaded config file")
	}
	return nil
}

func (a *app) initLogging(out io.Writer) {
	logging.Init(logging.Config{
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
		Output: out,
	})
	a.logger = logging.Component("cli")
}

func (a *app) teardown() {
	if a.logSink != nil {
		a.logSink.Close()
		a.logSink = nil
	}
}
