package ports

import (
	"context"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// SessionHandler processes one identity snapshot to completion.
type SessionHandler interface {
	Handle(ctx context.Context, s domain.Session) domain.Decision
}

// SessionReader exposes the gate's latest view to screens and services.
type SessionReader interface {
	State() domain.GateState
	Session() domain.Session
}

// SessionGate is the gate as seen by the local API.
type SessionGate interface {
	SessionReader
	Decision() domain.Decision
	Recheck(ctx context.Context) (domain.Decision, bool)
}
