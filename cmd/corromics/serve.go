package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"corromics/internal/api"
	"corromics/internal/metrics"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Server.Port = port
			}
			server, err := api.NewServer(a.cfg, metrics.NewRecorder(), a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT and the config file)")
	return cmd
}
