package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/infrastructure/db/mongo"
	"github.com/lalaba/merchant-app/internal/infrastructure/identity"
	"github.com/lalaba/merchant-app/pkg/logger"
)

func registerCmd() *cobra.Command {
	var (
		password string
		role     string
		verified bool
	)

	cmd := &cobra.Command{
		Use:   "register [email]",
		Short: "Create an account in the user store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, db, err := mongo.Connect(ctx, mongo.Config{
				URI:      cfg.Mongo.URI,
				Database: cfg.Mongo.Database,
				AppName:  "merchant-app-cli",
			})
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(ctx) }()

			users := mongo.NewUserRepository(db)
			if err := users.EnsureIndexes(ctx); err != nil {
				return err
			}

			provider := identity.NewProvider(users, cfg.JWTSecret, cfg.TokenTTL, logger.For("identity"))
			user, err := provider.Register(ctx, args[0], password, role)
			if err != nil {
				return err
			}
			if verified {
				if err := users.MarkEmailVerified(ctx, user.ID); err != nil {
					return err
				}
			}

			fmt.Printf("Registered %s (%s) as %s\n", user.Email, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", domain.RoleMerchant, "account role")
	cmd.Flags().BoolVar(&verified, "verified", false, "mark the email as already verified")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
