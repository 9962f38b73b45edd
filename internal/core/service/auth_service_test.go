package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

func newTestAuth(path string) (*AuthService, *stubIdentity, *memTokens, *stubNav) {
	id := newStubIdentity()
	tokens := newMemTokens()
	nav := newStubNav(path)
	return NewAuthService(id, tokens, nav, zerolog.Nop()), id, tokens, nav
}

func TestAuthService_Login_Merchant(t *testing.T) {
	svc, id, _, nav := newTestAuth(domain.RouteLogin)
	id.signIn = merchantSession("m1")

	sess, err := svc.Login(context.Background(), " m1@test.ph ", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if sess.UserID != "m1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if len(nav.replacements()) != 0 {
		t.Fatalf("login must leave routing to the gate, got %v", nav.replacements())
	}
}

func TestAuthService_Login_Validation(t *testing.T) {
	svc, _, _, _ := newTestAuth(domain.RouteLogin)
	if _, err := svc.Login(context.Background(), "", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Unverified(t *testing.T) {
	svc, id, _, nav := newTestAuth(domain.RouteLogin)
	id.signIn = domain.Session{IdentityPresent: true, UserID: "m1", Role: domain.RoleMerchant}

	if _, err := svc.Login(context.Background(), "m1@test.ph", "secret"); !errors.Is(err, domain.ErrVerificationRequired) {
		t.Fatalf("expected verification required, got %v", err)
	}
	if got := nav.replacements(); len(got) != 1 || got[0] != domain.RouteVerifyEmail {
		t.Fatalf("expected redirect to verify, got %v", got)
	}
}

func TestAuthService_Login_WrongRole(t *testing.T) {
	svc, id, tokens, _ := newTestAuth(domain.RouteLogin)
	id.signIn = domain.Session{IdentityPresent: true, UserID: "c1", EmailVerified: true, Role: "customer"}
	_ = tokens.Save(context.Background(), ports.KeyUserToken, "tok")

	sess, err := svc.Login(context.Background(), "c1@test.ph", "secret")
	if !errors.Is(err, domain.ErrAuthorizationDenied) {
		t.Fatalf("expected authorization denied, got %v", err)
	}
	if sess.IdentityPresent {
		t.Fatalf("expected signed-out session")
	}
	if id.signOutCount() != 1 || tokens.get(ports.KeyUserToken) != "" {
		t.Fatalf("expected sign out and cleared tokens")
	}
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	svc, id, _, _ := newTestAuth(domain.RouteLogin)
	id.signInErr = domain.ErrInvalidCredentials

	if _, err := svc.Login(context.Background(), "m1@test.ph", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, id, tokens, _ := newTestAuth("/profile")
	_ = tokens.Save(context.Background(), ports.KeyUserID, "m1")

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if id.signOutCount() != 1 || tokens.get(ports.KeyUserID) != "" {
		t.Fatalf("expected sign out and cleared tokens")
	}
}

func TestAuthService_CheckVerification(t *testing.T) {
	svc, id, _, nav := newTestAuth(domain.RouteVerifyEmail)
	id.reload = domain.Session{IdentityPresent: true, UserID: "m1", Role: domain.RoleMerchant}

	if _, err := svc.CheckVerification(context.Background()); !errors.Is(err, domain.ErrVerificationRequired) {
		t.Fatalf("expected still unverified, got %v", err)
	}
	if len(nav.replacements()) != 0 {
		t.Fatalf("unverified check must not navigate")
	}

	id.reload = merchantSession("m1")
	if _, err := svc.CheckVerification(context.Background()); err != nil {
		t.Fatalf("CheckVerification: %v", err)
	}
	if got := nav.replacements(); len(got) != 1 || got[0] != domain.RouteHome {
		t.Fatalf("expected redirect home, got %v", got)
	}
}

func TestAuthService_ConfirmVerification(t *testing.T) {
	svc, id, _, _ := newTestAuth(domain.RouteVerifyEmail)
	id.reload = merchantSession("m1")

	if _, err := svc.ConfirmVerification(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.ConfirmVerification(context.Background(), "code-1"); err != nil {
		t.Fatalf("ConfirmVerification: %v", err)
	}
	if len(id.confirmed) != 1 || id.confirmed[0] != "code-1" {
		t.Fatalf("unexpected confirmations: %v", id.confirmed)
	}
}
