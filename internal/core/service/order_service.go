package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/api/metrics"
	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

// OrderService backs the incoming and accepted order screens.
type OrderService struct {
	session ports.SessionReader
	repo    ports.OrderRepository
	backend ports.Backend
	lock    ports.AcceptLock
	logger  zerolog.Logger
}

func NewOrderService(session ports.SessionReader, repo ports.OrderRepository, backend ports.Backend, lock ports.AcceptLock, logger zerolog.Logger) *OrderService {
	return &OrderService{session: session, repo: repo, backend: backend, lock: lock, logger: logger}
}

// Incoming lists the merchant's pending orders, newest first.
func (s *OrderService) Incoming(ctx context.Context) ([]domain.Order, error) {
	return s.byStatus(ctx, domain.OrderPending)
}

// Accepted lists orders the merchant has accepted, newest first.
func (s *OrderService) Accepted(ctx context.Context) ([]domain.Order, error) {
	return s.byStatus(ctx, domain.OrderAcceptedByMerchant)
}

// FromBackend lists the merchant's orders as reported by the REST backend.
func (s *OrderService) FromBackend(ctx context.Context) ([]domain.Order, error) {
	if _, err := s.merchantID(); err != nil {
		return nil, err
	}
	orders, err := s.backend.MerchantOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("merchant orders: %w", err)
	}
	return orders, nil
}

// Accept accepts one order. A second submission for the same order while the
// first is outstanding fails with ErrAcceptInFlight.
func (s *OrderService) Accept(ctx context.Context, orderID string) (*domain.AcceptResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrOrderNotFound
	}
	uid, err := s.merchantID()
	if err != nil {
		return nil, err
	}

	acquired, err := s.lock.Acquire(ctx, orderID)
	if err != nil {
		// Lock outage does not block acceptance.
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("accept lock unavailable")
	} else if !acquired {
		metrics.OrdersAcceptedTotal.WithLabelValues("duplicate").Inc()
		return nil, domain.ErrAcceptInFlight
	}
	if err == nil {
		defer func() {
			if rerr := s.lock.Release(context.WithoutCancel(ctx), orderID); rerr != nil {
				s.logger.Warn().Err(rerr).Str("order_id", orderID).Msg("failed to release accept lock")
			}
		}()
	}

	res, err := s.backend.AcceptOrder(ctx, orderID)
	if err != nil {
		metrics.OrdersAcceptedTotal.WithLabelValues("error").Inc()
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return nil, fmt.Errorf("accept %s: %w", orderID, domain.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("accept %s: %w", orderID, err)
	}

	metrics.OrdersAcceptedTotal.WithLabelValues("accepted").Inc()
	s.logger.Info().Str("uid", uid).Str("order_id", orderID).Msg("order accepted")
	return res, nil
}

func (s *OrderService) byStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	uid, err := s.merchantID()
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.ByMerchantStatus(ctx, uid, status)
	if err != nil {
		return nil, fmt.Errorf("list %s orders: %w", status, err)
	}
	return orders, nil
}

func (s *OrderService) merchantID() (string, error) {
	if s.session.State() != domain.StateAuthorized {
		return "", domain.ErrAuthenticationRequired
	}
	return s.session.Session().UserID, nil
}
