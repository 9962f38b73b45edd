package service

import (
	"context"
	"sync"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// SetupScreen owns the wizard shown on the business-setup route. A wizard
// lives exactly as long as one visit to the route; leaving the route closes
// it so late completions are discarded.
type SetupScreen struct {
	deps WizardDeps

	mu     sync.Mutex
	wizard *Wizard
}

func NewSetupScreen(deps WizardDeps) *SetupScreen {
	return &SetupScreen{deps: deps}
}

// Open returns the wizard for the signed-in merchant, creating and loading a
// new one when none is open or the merchant changed.
func (s *SetupScreen) Open(ctx context.Context) (*Wizard, error) {
	if s.deps.Session.State() != domain.StateAuthorized {
		return nil, domain.ErrAuthenticationRequired
	}
	uid := s.deps.Session.Session().UserID

	s.mu.Lock()
	w := s.wizard
	if w != nil && !w.Closed() && w.MerchantID() == uid {
		s.mu.Unlock()
		return w, nil
	}
	if w != nil {
		w.Close()
	}
	w = NewWizard(uid, s.deps)
	s.wizard = w
	s.mu.Unlock()

	if _, err := w.Load(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// Leave closes the open wizard, if any.
func (s *SetupScreen) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard != nil {
		s.wizard.Close()
		s.wizard = nil
	}
}

// OnRouteEnter closes the wizard whenever another route is entered.
func (s *SetupScreen) OnRouteEnter(entry domain.RouteEntry) {
	if !domain.SameRoute(entry.Path, domain.RouteSetup) {
		s.Leave()
	}
}
