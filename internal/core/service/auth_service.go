package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

// AuthService drives the login, logout and verify-email screens. Routing
// after a state change is left to the gate except where the screen itself
// navigates.
type AuthService struct {
	identity ports.IdentitySource
	tokens   ports.TokenStore
	nav      ports.Navigator
	log      zerolog.Logger
}

func NewAuthService(identity ports.IdentitySource, tokens ports.TokenStore, nav ports.Navigator, log zerolog.Logger) *AuthService {
	return &AuthService{identity: identity, tokens: tokens, nav: nav, log: log}
}

// Login signs in with email and password. An unverified account is sent to
// the verify screen; a non-merchant account is signed straight back out.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.SignedOut(), domain.ErrInvalidCredentials
	}

	sess, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return domain.SignedOut(), fmt.Errorf("login: %w", err)
	}

	switch domain.Classify(sess) {
	case domain.StateUnverified:
		if !domain.SameRoute(s.nav.Location(), domain.RouteVerifyEmail) {
			s.nav.Replace(domain.RouteVerifyEmail)
		}
		return sess, domain.ErrVerificationRequired
	case domain.StateWrongRole:
		if err := s.identity.SignOut(ctx); err != nil {
			s.log.Error().Err(err).Str("uid", sess.UserID).Msg("sign out after role check failed")
		}
		s.clearTokens(ctx)
		return domain.SignedOut(), domain.ErrAuthorizationDenied
	}

	s.log.Info().Str("uid", sess.UserID).Msg("merchant signed in")
	return sess, nil
}

// Logout signs out. The gate reacts to the signed-out snapshot.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.identity.SignOut(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.clearTokens(ctx)
	return nil
}

// ResendVerification issues a new verification code for the signed-in user.
func (s *AuthService) ResendVerification(ctx context.Context) (string, error) {
	code, err := s.identity.SendVerification(ctx)
	if err != nil {
		return "", fmt.Errorf("resend verification: %w", err)
	}
	return code, nil
}

// ConfirmVerification redeems code and refreshes the identity.
func (s *AuthService) ConfirmVerification(ctx context.Context, code string) (domain.Session, error) {
	if strings.TrimSpace(code) == "" {
		return domain.SignedOut(), &domain.ValidationError{Fields: []string{"code"}, Msg: "code is required"}
	}
	if err := s.identity.ConfirmVerification(ctx, code); err != nil {
		return domain.SignedOut(), fmt.Errorf("confirm verification: %w", err)
	}
	return s.CheckVerification(ctx)
}

// CheckVerification reloads the identity and moves to home once the email is
// verified.
func (s *AuthService) CheckVerification(ctx context.Context) (domain.Session, error) {
	sess, err := s.identity.Reload(ctx)
	if err != nil {
		return domain.SignedOut(), fmt.Errorf("check verification: %w", err)
	}
	if !sess.IdentityPresent {
		return sess, domain.ErrAuthenticationRequired
	}
	if !sess.EmailVerified {
		return sess, domain.ErrVerificationRequired
	}
	s.nav.Replace(domain.RouteHome)
	return sess, nil
}

func (s *AuthService) clearTokens(ctx context.Context) {
	var errs []error
	for _, key := range []string{ports.KeyUserToken, ports.KeyUserID} {
		if err := s.tokens.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Error().Err(err).Msg("failed to clear persisted tokens")
	}
}
