package ports

import (
	"context"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

type OrderService interface {
	Incoming(ctx context.Context) ([]domain.Order, error)
	Accepted(ctx context.Context) ([]domain.Order, error)
	FromBackend(ctx context.Context) ([]domain.Order, error)
	Accept(ctx context.Context, orderID string) (*domain.AcceptResult, error)
}

type WalletService interface {
	Balance(ctx context.Context) (*domain.Wallet, error)
}

type LocationService interface {
	Cities(ctx context.Context) ([]Division, error)
	Barangays(ctx context.Context, cityCode string) ([]Division, error)
	Resolve(ctx context.Context, address string) (domain.Coordinates, error)
}
