package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"dgii_fiscal/internal/handlers"
	"dgii_fiscal/internal/server"
	"dgii_fiscal/internal/transport/auth"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := open(runCtx)
			if err != nil {
				return err
			}
			defer a.Config.Close(context.Background())
			fmt.Println("✅ All connections successfully established!")

			if err := a.Ping(runCtx); err != nil {
				return fmt.Errorf("connection check failed: %w", err)
			}
			fmt.Println("🟢 All connections OK")

			h := handlers.New(runCtx, a)
			srv := server.NewServer(a.Config.Port, h, auth.ParseTokens(a.Config.Settings.APITokens))
			return srv.Run(runCtx)
		},
	}
}
