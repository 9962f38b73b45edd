package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lalaba/merchant-app/internal/pkg/config"
	"github.com/lalaba/merchant-app/pkg/logger"
)

var (
	envFile string

	cfg *config.Config
	log zerolog.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:          "merchant",
		Short:        "Merchant app runtime",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load(envFile)
			log = logger.Init(logger.Options{
				Level:           cfg.LogLevel,
				ComponentLevels: cfg.LogLevels,
				Pretty:          !cfg.Production(),
				Service:         "merchant-app",
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file (default ./.env when present)")

	root.AddCommand(serveCmd(), registerCmd())
	return root.Execute()
}
