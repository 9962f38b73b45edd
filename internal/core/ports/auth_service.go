package ports

import (
	"context"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// AuthService backs the login, logout and verify-email screens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Logout(ctx context.Context) error
	ResendVerification(ctx context.Context) (string, error)
	ConfirmVerification(ctx context.Context, code string) (domain.Session, error)
	CheckVerification(ctx context.Context) (domain.Session, error)
}
