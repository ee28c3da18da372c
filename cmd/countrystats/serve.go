package main

import (
	"github.com/spf13/cobra"

	"github.com/rewired-gh/countrystats/internal/logger"
	"github.com/rewired-gh/countrystats/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API for rendering collaborators",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}

			deps := server.Dependencies{
				Session: a.session,
				Sink:    a.sink,
				Logger:  logger.Get(),
			}
			// Typed nils must not leak into the interfaces.
			if a.archive != nil {
				deps.History = a.archive
			}
			if a.telegram != nil {
				deps.Notifier = a.telegram
			}

			api := server.NewWebAPI(server.Config{
				Addr:            addr,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				Dependencies:    deps,
			})
			return api.Start()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
