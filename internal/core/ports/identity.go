package ports

import (
	"context"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// IdentityListener receives every identity snapshot, in emission order.
type IdentityListener func(domain.Session)

// IdentitySource is the push-based identity provider. Subscribe delivers the
// current snapshot immediately once the initial state is resolved and returns
// a disposer; no callback fires after the disposer returns.
type IdentitySource interface {
	Subscribe(fn IdentityListener) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) (domain.Session, error)
	SignOut(ctx context.Context) error
	// Reload refreshes the current identity (verification status, role claim,
	// token) and emits the new snapshot.
	Reload(ctx context.Context) (domain.Session, error)
	// Restore resumes a session from a previously issued token.
	Restore(ctx context.Context, token string) (domain.Session, error)
	SendVerification(ctx context.Context) (string, error)
	ConfirmVerification(ctx context.Context, code string) error
}
