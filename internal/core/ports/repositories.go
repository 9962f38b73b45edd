package ports

import (
	"context"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// BusinessRepository reads the merchant's setup documents. Writes go through
// the REST backend.
type BusinessRepository interface {
	// Info returns nil, nil when no profile exists yet.
	Info(ctx context.Context, uid string) (*domain.BusinessInfo, error)
	Categories(ctx context.Context, uid string) ([]domain.Category, error)
	Products(ctx context.Context, uid string) ([]domain.Product, error)
	Services(ctx context.Context, uid string) ([]domain.Service, error)
}

// BusinessStatusReader answers the secondary gate check.
type BusinessStatusReader interface {
	SetupComplete(ctx context.Context, uid string) (bool, error)
}

// OrderRepository queries the orders collection.
type OrderRepository interface {
	// ByMerchantStatus returns the merchant's orders with status, newest first.
	ByMerchantStatus(ctx context.Context, merchantID string, status domain.OrderStatus) ([]domain.Order, error)
}

type WalletRepository interface {
	// Find returns nil, nil when the merchant has no wallet document.
	Find(ctx context.Context, merchantID string) (*domain.Wallet, error)
}

// UserRepository persists identity accounts.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
}

// AcceptLock suppresses duplicate accept submissions for one order.
type AcceptLock interface {
	Acquire(ctx context.Context, orderID string) (bool, error)
	Release(ctx context.Context, orderID string) error
}
