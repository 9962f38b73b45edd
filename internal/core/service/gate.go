package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/api/metrics"
	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
	"github.com/lalaba/merchant-app/internal/infrastructure/queue"
)

// Gate decides, for every identity snapshot, whether the current screen may
// render or which route to replace it with.
//
// Snapshots are applied one at a time. The redirect latch records whether the
// first authorized redirect has been issued since the last (re)mount and is
// only reset by Remount.
type Gate struct {
	identity ports.IdentitySource
	tokens   ports.TokenStore
	nav      ports.Navigator
	log      zerolog.Logger

	// transition is held for the whole of one snapshot's processing.
	transition sync.Mutex

	mu         sync.RWMutex
	state      domain.GateState
	session    domain.Session
	decision   domain.Decision
	received   bool
	redirected bool
	detached   bool
}

// NewGate returns a gate in the Loading state.
func NewGate(identity ports.IdentitySource, tokens ports.TokenStore, nav ports.Navigator, log zerolog.Logger) *Gate {
	return &Gate{
		identity: identity,
		tokens:   tokens,
		nav:      nav,
		log:      log,
		state:    domain.StateLoading,
		decision: domain.Decision{State: domain.StateLoading, Loading: true},
	}
}

// Mount subscribes the gate to the identity source through a serial pump and
// returns the unmount disposer. Nothing reaches the gate after the disposer
// returns.
func (g *Gate) Mount(ctx context.Context) func() {
	unmount := queue.Mount(ctx, g.identity, g, g.log)
	return func() {
		unmount()
		g.Detach()
	}
}

// Handle applies one snapshot. It satisfies ports.SessionHandler.
func (g *Gate) Handle(ctx context.Context, s domain.Session) domain.Decision {
	g.transition.Lock()
	defer g.transition.Unlock()

	if g.isDetached() {
		return g.Decision()
	}
	return g.apply(ctx, s)
}

// Recheck re-evaluates the latest snapshot against the current location, as a
// screen does when it is re-entered. It is dropped, returning false, when a
// transition is already in flight.
func (g *Gate) Recheck(ctx context.Context) (domain.Decision, bool) {
	if !g.transition.TryLock() {
		metrics.GateDroppedChecksTotal.Inc()
		g.log.Debug().Msg("recheck dropped: transition in flight")
		return g.Decision(), false
	}
	defer g.transition.Unlock()

	g.mu.RLock()
	s, received, detached := g.session, g.received, g.detached
	state := g.state
	g.mu.RUnlock()

	if detached || !received || state == domain.StateWrongRole {
		return g.Decision(), true
	}
	return g.apply(ctx, s), true
}

// Remount resets the gate as if the root were mounted again: Loading state,
// latch cleared.
func (g *Gate) Remount() {
	g.transition.Lock()
	defer g.transition.Unlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = domain.StateLoading
	g.session = domain.Session{}
	g.decision = domain.Decision{State: domain.StateLoading, Loading: true}
	g.received = false
	g.redirected = false
	g.detached = false
}

// Detach makes subsequent snapshots no-ops. Used on teardown.
func (g *Gate) Detach() {
	g.mu.Lock()
	g.detached = true
	g.mu.Unlock()
}

func (g *Gate) State() domain.GateState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Gate) Session() domain.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// Decision returns the outcome of the most recent transition.
func (g *Gate) Decision() domain.Decision {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.decision
}

// Redirected reports the latch value.
func (g *Gate) Redirected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.redirected
}

func (g *Gate) isDetached() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.detached
}

func (g *Gate) apply(ctx context.Context, s domain.Session) domain.Decision {
	state := domain.Classify(s)
	metrics.GateTransitionsTotal.WithLabelValues(state.String()).Inc()

	g.mu.Lock()
	g.state = state
	g.session = s
	g.received = true
	g.mu.Unlock()

	loc := g.nav.Location()
	d := domain.Decision{State: state}

	switch state {
	case domain.StateUnauthenticated:
		g.clearTokens(ctx)
		if !domain.SameRoute(loc, domain.RouteLogin) {
			d.Redirect = g.redirect(domain.RouteLogin, loc)
		}

	case domain.StateUnverified:
		g.log.Info().Str("uid", s.UserID).Msg("email not verified")
		if !domain.SameRoute(loc, domain.RouteVerifyEmail) {
			d.Redirect = g.redirect(domain.RouteVerifyEmail, loc)
		}

	case domain.StateWrongRole:
		g.clearTokens(ctx)
		if err := g.identity.SignOut(ctx); err != nil {
			g.log.Error().Err(err).Str("uid", s.UserID).Msg("sign out of non-merchant failed")
		}
		g.mu.Lock()
		g.session = domain.SignedOut()
		g.mu.Unlock()
		g.log.Warn().Str("uid", s.UserID).Str("role", s.Role).Msg("not a merchant, signed out")

	case domain.StateAuthorized:
		g.persist(ctx, s)

		g.mu.Lock()
		first := !g.redirected
		if first && !domain.IsAuthorizedRoute(loc) {
			g.redirected = true
			g.mu.Unlock()
			d.Redirect = g.redirect(domain.RouteTabs, loc)
		} else {
			g.mu.Unlock()
		}
	}

	g.mu.Lock()
	g.decision = d
	g.mu.Unlock()
	return d
}

func (g *Gate) redirect(target, from string) string {
	g.nav.Replace(target)
	metrics.GateRedirectsTotal.WithLabelValues(target).Inc()
	g.log.Info().Str("from", from).Str("to", target).Msg("redirect")
	return target
}

// persist writes the token and user id. Failures are logged and never block
// the navigation decision.
func (g *Gate) persist(ctx context.Context, s domain.Session) {
	if err := g.tokens.Save(ctx, ports.KeyUserToken, s.Token); err != nil {
		g.log.Error().Err(err).Str("uid", s.UserID).Msg("failed to persist token")
	}
	if err := g.tokens.Save(ctx, ports.KeyUserID, s.UserID); err != nil {
		g.log.Error().Err(err).Str("uid", s.UserID).Msg("failed to persist user id")
	}
}

func (g *Gate) clearTokens(ctx context.Context) {
	for _, key := range []string{ports.KeyUserToken, ports.KeyUserID} {
		if err := g.tokens.Delete(ctx, key); err != nil {
			g.log.Error().Err(err).Str("key", key).Msg("failed to delete persisted token")
		}
	}
}
