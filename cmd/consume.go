package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverline/enrichd/internal/app"
	"github.com/riverline/enrichd/internal/config"
	"github.com/riverline/enrichd/internal/worker"
)

// newConsumeCmd creates the 'consume' subcommand, the daemon's only mode of
// operation: start the loop and run until terminated externally.
func newConsumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Start the consumer loop",
		Long: `Starts the blocking consume-enrich-persist loop. The loop runs until the
process receives SIGINT or SIGTERM; every per-item failure is logged and
contained, and broker outages are retried indefinitely.`,
		RunE: runConsumeCommand,
	}
}

func runConsumeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize application services: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		application.Close(shutdownCtx)
	}()

	w := worker.New(
		application.Consumer(),
		application.Enricher(),
		application.Storage(),
		application.Clock(),
		worker.Config{
			ReconnectBackoff: cfg.ReconnectBackoff(),
			ErrorDelay:       cfg.ErrorDelay(),
		},
		application.Logger(),
	)

	application.Logger().Info("starting consumer", zap.String("queue", cfg.Queue.Name))
	w.Run(ctx)
	return nil
}
