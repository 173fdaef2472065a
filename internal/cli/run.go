package cli

import (
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pablasso/taskloop/internal/config"
	"github.com/pablasso/taskloop/internal/orchestrator"
	"github.com/pablasso/taskloop/internal/transcript"
	"github.com/pablasso/taskloop/internal/tui"
)

type runOptions struct {
	iterations     int
	gateway        string
	model          string
	baseURL        string
	apiURL         string
	language       string
	plain          bool
	transcriptFile string
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <objective>",
		Short: "Pursue an objective until the task list is empty",
		Long: `Runs the task loop for an objective. Each iteration executes the next task and
asks the model for a new task list based on the result.

On a terminal the run is shown interactively; press s to stop. Use --plain to
print events as lines instead.`,
		Example: `  taskloop run "Plan a weekend trip to Kyoto"
  taskloop run -n 0 --plain "Write a blog post outline about Go iterators"
  taskloop run --gateway http --api-url http://localhost:8080 "Solve world hunger"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runObjective(cmd, strings.Join(args, " "), opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.iterations, "iterations", "n", config.DefaultIterations, "maximum iterations, 0 for no limit")
	flags.StringVar(&opts.gateway, "gateway", "", "gateway: llm, claude or http")
	flags.StringVar(&opts.model, "model", "", "model name for the llm or claude gateway")
	flags.StringVar(&opts.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	flags.StringVar(&opts.apiURL, "api-url", "", "taskloop server URL for the http gateway")
	flags.StringVar(&opts.language, "language", "", "answer language appended to prompts")
	flags.BoolVar(&opts.plain, "plain", false, "print events as plain text instead of the interactive view")
	flags.StringVar(&opts.transcriptFile, "transcript-file", "", "append run events to this JSON Lines file")

	return cmd
}

// applyFlags overrides config values with explicitly set flags.
func (o *runOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("iterations") {
		cfg.Loop.Iterations = o.iterations
	}
	if flags.Changed("gateway") {
		cfg.Gateway = o.gateway
	}
	if flags.Changed("model") {
		cfg.LLM.Model = o.model
		cfg.Claude.Model = o.model
	}
	if flags.Changed("base-url") {
		cfg.LLM.BaseURL = o.baseURL
	}
	if flags.Changed("api-url") {
		cfg.API.URL = o.apiURL
	}
	if flags.Changed("language") {
		cfg.Language = o.language
	}
	return cfg.Validate()
}

func (a *app) runObjective(cmd *cobra.Command, objective string, opts *runOptions) error {
	cfg := a.cfg
	if err := opts.applyFlags(cmd, cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	interactive := !opts.plain && isTerminal(out) && term.IsTerminal(int(os.Stdin.Fd()))
	if interactive && cfg.Log.File == "" {
		// Log lines would corrupt the alternate screen.
		a.initLogging(io.Discard)
	}

	gw, err := buildGateway(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var loopOpts []orchestrator.Option
	var rec *transcript.Recorder
	if opts.transcriptFile != "" {
		loopOpts = append(loopOpts, orchestrator.WithObserver(func(runID string, ev transcript.Event) {
			if rec == nil {
				rec = transcript.NewRecorder(opts.transcriptFile, runID)
			}
			if err := rec.Record(ev); err != nil {
				a.logger.Warn().Err(err).Str("path", opts.transcriptFile).Msg("failed to record event")
			}
		}))
	}

	loop := orchestrator.New(gw, gw, loopOpts...)
	run, err := loop.Start(ctx, objective, cfg.Loop.Iterations)
	if err != nil {
		return err
	}

	a.logger.Info().
		Str("run_id", run.ID()).
		Str("gateway", cfg.Gateway).
		Bool("interactive", interactive).
		Msg("starting run")

	var outcome orchestrator.Outcome
	if interactive {
		outcome, err = tui.Run(ctx, run, objective, cfg.Loop.Iterations)
	} else {
		outcome, err = printRun(out, run)
	}

	if rec != nil && outcome != orchestrator.OutcomeQueueEmpty {
		if recErr := rec.RecordStopped(outcome.String(), run.State().IterationCount); recErr != nil {
			a.logger.Warn().Err(recErr).Msg("failed to record outcome")
		}
	}

	return report(out, outcome, cfg.Loop.Iterations, err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
