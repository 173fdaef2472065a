package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pablasso/taskloop/internal/config"
	"github.com/pablasso/taskloop/internal/gateway/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the execute and create endpoints over HTTP",
		Long: `Starts an HTTP server exposing POST /api/execute and POST /api/create, backed
by the configured llm or claude gateway. Point 'taskloop run --gateway http'
at it to run the loop remotely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cfg.Gateway == config.GatewayHTTP {
				return fmt.Errorf("serve needs an llm or claude gateway, not %q", cfg.Gateway)
			}

			gw, err := buildGateway(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", cfg.Serve.Addr)
			return httpapi.NewServer(gw).ListenAndServe(ctx, cfg.Serve.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	return cmd
}
