package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

const walletCurrency = "PHP"

type WalletService struct {
	session ports.SessionReader
	repo    ports.WalletRepository
	logger  zerolog.Logger
}

func NewWalletService(session ports.SessionReader, repo ports.WalletRepository, logger zerolog.Logger) *WalletService {
	return &WalletService{session: session, repo: repo, logger: logger}
}

// Balance returns the merchant's wallet. A merchant without a wallet document
// sees an empty one.
func (s *WalletService) Balance(ctx context.Context) (*domain.Wallet, error) {
	if s.session.State() != domain.StateAuthorized {
		return nil, domain.ErrAuthenticationRequired
	}
	uid := s.session.Session().UserID

	w, err := s.repo.Find(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}
	if w == nil {
		s.logger.Debug().Str("uid", uid).Msg("no wallet document, returning empty wallet")
		return &domain.Wallet{MerchantID: uid, Currency: walletCurrency, Transactions: []domain.WalletTransaction{}}, nil
	}
	if w.Currency == "" {
		w.Currency = walletCurrency
	}
	if w.Transactions == nil {
		w.Transactions = []domain.WalletTransaction{}
	}
	return w, nil
}
