package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lalaba/merchant-app/internal/app"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the merchant runtime until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				log.Error().Err(err).Msg("failed to start")
				return err
			}
			if err := a.Start(ctx); err != nil {
				_ = a.Shutdown(context.Background())
				return err
			}

			if err := a.Serve(ctx); err != nil {
				log.Error().Err(err).Msg("shutdown with errors")
				return err
			}
			log.Info().Msg("merchant runtime stopped")
			return nil
		},
	}
}
