package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"dgii_fiscal/internal/app"
	"dgii_fiscal/internal/config"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "dgii",
	Short:         "DGII fiscal toolkit: registry import, 606/607 reports, RNC/NCF checks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd(), importCmd(), reportCmd(), checkCmd(), versionCmd())
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// open loads the environment and wires the services. The caller closes the
// returned Config.
func open(ctx context.Context) (*app.App, error) {
	s, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cfg, err := config.Connect(setupCtx, s)
	if err != nil {
		cfg.Close(context.Background())
		return nil, err
	}
	a, err := app.Build(setupCtx, cfg)
	if err != nil {
		cfg.Close(context.Background())
		return nil, err
	}
	return a, nil
}
