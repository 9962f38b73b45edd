package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/api/metrics"
	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

// SetupCheck sends authorized merchants with an incomplete business profile
// to the setup screen. It runs at most once per route entry, ignores entries
// that are no longer current and fails open.
type SetupCheck struct {
	session ports.SessionReader
	status  ports.BusinessStatusReader
	nav     ports.Navigator
	log     zerolog.Logger

	mu   sync.Mutex
	last string
}

func NewSetupCheck(session ports.SessionReader, status ports.BusinessStatusReader, nav ports.Navigator, log zerolog.Logger) *SetupCheck {
	return &SetupCheck{
		session: session,
		status:  status,
		nav:     nav,
		log:     log,
	}
}

// OnRouteEnter performs the check for entry and reports whether it redirected.
func (c *SetupCheck) OnRouteEnter(ctx context.Context, entry domain.RouteEntry) bool {
	if c.nav.Entry().ID != entry.ID {
		return false
	}
	if !c.claim(entry.ID) {
		return false
	}
	if c.session.State() != domain.StateAuthorized {
		return false
	}
	if domain.SameRoute(entry.Path, domain.RouteSetup) {
		return false
	}

	uid := c.session.Session().UserID
	complete, err := c.status.SetupComplete(ctx, uid)
	if err != nil {
		c.log.Warn().Err(err).Str("uid", uid).Str("route", entry.Path).Msg("business status check failed, not redirecting")
		return false
	}
	if complete {
		return false
	}

	// The read may have outlived the route or the session.
	if c.nav.Entry().ID != entry.ID || c.session.State() != domain.StateAuthorized {
		c.log.Debug().Str("route", entry.Path).Msg("route left during status check")
		return false
	}

	c.nav.Replace(domain.RouteSetup)
	metrics.GateRedirectsTotal.WithLabelValues(domain.RouteSetup).Inc()
	c.log.Info().Str("uid", uid).Str("from", entry.Path).Msg("business setup incomplete, redirecting")
	return true
}

func (c *SetupCheck) claim(entryID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == entryID {
		return false
	}
	c.last = entryID
	return true
}
