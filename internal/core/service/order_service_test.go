package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

func TestOrderService_IncomingAndAccepted(t *testing.T) {
	now := time.Now()
	repo := &stubOrderRepo{orders: []domain.Order{
		{ID: "o1", MerchantID: "m1", Status: domain.OrderPending, CreatedAt: now},
		{ID: "o2", MerchantID: "m1", Status: domain.OrderAcceptedByMerchant, CreatedAt: now},
		{ID: "o3", MerchantID: "m2", Status: domain.OrderPending, CreatedAt: now},
	}}
	svc := NewOrderService(authorizedAs("m1"), repo, newStubBackend(), newStubLock(), zerolog.Nop())

	incoming, err := svc.Incoming(context.Background())
	if err != nil || len(incoming) != 1 || incoming[0].ID != "o1" {
		t.Fatalf("unexpected incoming: %+v err=%v", incoming, err)
	}
	accepted, err := svc.Accepted(context.Background())
	if err != nil || len(accepted) != 1 || accepted[0].ID != "o2" {
		t.Fatalf("unexpected accepted: %+v err=%v", accepted, err)
	}
}

func TestOrderService_RequiresAuthorizedSession(t *testing.T) {
	sess := authorizedAs("m1")
	sess.set(domain.StateUnauthenticated)
	svc := NewOrderService(sess, &stubOrderRepo{}, newStubBackend(), newStubLock(), zerolog.Nop())

	if _, err := svc.Incoming(context.Background()); !errors.Is(err, domain.ErrAuthenticationRequired) {
		t.Fatalf("expected authentication required, got %v", err)
	}
	if _, err := svc.Accept(context.Background(), "o1"); !errors.Is(err, domain.ErrAuthenticationRequired) {
		t.Fatalf("expected authentication required, got %v", err)
	}
}

func TestOrderService_Accept(t *testing.T) {
	backend := newStubBackend()
	lock := newStubLock()
	svc := NewOrderService(authorizedAs("m1"), &stubOrderRepo{}, backend, lock, zerolog.Nop())

	res, err := svc.Accept(context.Background(), "o1")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if res.OrderID != "o1" || len(backend.accepted) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if lock.held["o1"] {
		t.Fatalf("expected lock released")
	}
}

func TestOrderService_Accept_InFlight(t *testing.T) {
	backend := newStubBackend()
	lock := newStubLock()
	lock.held["o1"] = true
	svc := NewOrderService(authorizedAs("m1"), &stubOrderRepo{}, backend, lock, zerolog.Nop())

	if _, err := svc.Accept(context.Background(), "o1"); !errors.Is(err, domain.ErrAcceptInFlight) {
		t.Fatalf("expected in-flight error, got %v", err)
	}
	if len(backend.accepted) != 0 {
		t.Fatalf("duplicate submission reached the backend")
	}
}

func TestOrderService_Accept_NotFound(t *testing.T) {
	backend := newStubBackend()
	backend.acceptErr = &domain.APIError{Status: 404, Message: "Order not found"}
	svc := NewOrderService(authorizedAs("m1"), &stubOrderRepo{}, backend, newStubLock(), zerolog.Nop())

	if _, err := svc.Accept(context.Background(), "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderService_Accept_LockOutageDoesNotBlock(t *testing.T) {
	backend := newStubBackend()
	lock := newStubLock()
	lock.err = errors.New("redis down")
	svc := NewOrderService(authorizedAs("m1"), &stubOrderRepo{}, backend, lock, zerolog.Nop())

	if _, err := svc.Accept(context.Background(), "o1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
}

func TestOrderService_FromBackend(t *testing.T) {
	backend := newStubBackend()
	backend.orders = []domain.Order{{ID: "o9", MerchantID: "m1"}}
	svc := NewOrderService(authorizedAs("m1"), &stubOrderRepo{}, backend, newStubLock(), zerolog.Nop())

	orders, err := svc.FromBackend(context.Background())
	if err != nil || len(orders) != 1 {
		t.Fatalf("unexpected orders %+v err=%v", orders, err)
	}
}
