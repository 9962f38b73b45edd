// Package identity is a local identity provider: bcrypt-hashed accounts and
// HS256 session tokens carrying the role and email_verified claims.
package identity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

const (
	purposeVerifyEmail = "verify_email"
	verificationTTL    = 24 * time.Hour
)

// Provider implements ports.IdentitySource for a single signed-in user.
//
// Snapshots are delivered synchronously under emitMu, so listeners see them
// in emission order and an unsubscribe waits for any delivery in progress.
// Listeners must not unsubscribe from inside the callback.
type Provider struct {
	users     ports.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       zerolog.Logger

	emitMu    sync.Mutex
	resolved  bool
	current   domain.Session
	listeners map[int]ports.IdentityListener
	nextID    int
}

func NewProvider(users ports.UserRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *Provider {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Provider{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		listeners: make(map[int]ports.IdentityListener),
	}
}

// Subscribe registers fn. Once the provider has resolved its initial state
// (Restore, SignIn or SignOut), fn receives the current snapshot right away.
func (p *Provider) Subscribe(fn ports.IdentityListener) func() {
	p.emitMu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	if p.resolved {
		fn(p.current)
	}
	p.emitMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.emitMu.Lock()
			delete(p.listeners, id)
			p.emitMu.Unlock()
		})
	}
}

// Current returns the latest snapshot.
func (p *Provider) Current() domain.Session {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	return p.current
}

func (p *Provider) emit(s domain.Session) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.resolved = true
	p.current = s
	ids := make([]int, 0, len(p.listeners))
	for id := range p.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p.listeners[id](s)
	}
}

// Register creates an account. Email is stored lowercased.
func (p *Provider) Register(ctx context.Context, email, password, role string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || role == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := p.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	p.log.Info().Str("uid", created.ID).Str("role", role).Msg("identity registered")
	return created, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	if email == "" || password == "" {
		return domain.SignedOut(), domain.ErrInvalidCredentials
	}

	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.SignedOut(), domain.ErrInvalidCredentials
		}
		return domain.SignedOut(), err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.SignedOut(), domain.ErrInvalidCredentials
	}

	s, err := p.sessionFor(user)
	if err != nil {
		return domain.SignedOut(), err
	}
	p.emit(s)
	return s, nil
}

func (p *Provider) SignOut(_ context.Context) error {
	p.emit(domain.SignedOut())
	return nil
}

// Reload re-reads the signed-in account and emits a snapshot with a fresh
// token. With nobody signed in it emits the signed-out snapshot.
func (p *Provider) Reload(ctx context.Context) (domain.Session, error) {
	cur := p.Current()
	if !cur.IdentityPresent {
		p.emit(domain.SignedOut())
		return domain.SignedOut(), nil
	}

	user, err := p.users.FindByID(ctx, cur.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			p.emit(domain.SignedOut())
			return domain.SignedOut(), nil
		}
		return cur, fmt.Errorf("reload identity: %w", err)
	}

	s, err := p.sessionFor(user)
	if err != nil {
		return cur, err
	}
	p.emit(s)
	return s, nil
}

// Restore resumes the session encoded in token. An empty, expired or unknown
// token, or a single-purpose code such as an email verification code,
// resolves to the signed-out snapshot.
func (p *Provider) Restore(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		p.emit(domain.SignedOut())
		return domain.SignedOut(), nil
	}

	claims, err := p.parse(token)
	if err != nil {
		p.log.Info().Err(err).Msg("persisted session token rejected")
		p.emit(domain.SignedOut())
		return domain.SignedOut(), nil
	}
	if _, scoped := claims["purpose"]; scoped {
		p.log.Warn().Msg("persisted token is not a session token")
		p.emit(domain.SignedOut())
		return domain.SignedOut(), nil
	}
	uid, _ := claims["uid"].(string)

	user, err := p.users.FindByID(ctx, uid)
	if err != nil {
		p.emit(domain.SignedOut())
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.SignedOut(), nil
		}
		return domain.SignedOut(), fmt.Errorf("restore identity: %w", err)
	}

	s, err := p.sessionFor(user)
	if err != nil {
		return domain.SignedOut(), err
	}
	p.emit(s)
	return s, nil
}

// SendVerification issues a one-time email verification code for the
// signed-in account. Delivery of the code is left to the caller.
func (p *Provider) SendVerification(_ context.Context) (string, error) {
	cur := p.Current()
	if !cur.IdentityPresent {
		return "", domain.ErrAuthenticationRequired
	}

	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"uid":     cur.UserID,
		"purpose": purposeVerifyEmail,
		"jti":     jti,
		"exp":     time.Now().Add(verificationTTL).Unix(),
	}
	code, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign verification code: %w", err)
	}
	p.log.Info().Str("uid", cur.UserID).Str("jti", jti).Msg("verification code issued")
	return code, nil
}

// ConfirmVerification marks the account verified. The new state is picked
// up by the next Reload.
func (p *Provider) ConfirmVerification(ctx context.Context, code string) error {
	claims, err := p.parse(code)
	if err != nil {
		return domain.ErrInvalidCode
	}
	if claims["purpose"] != purposeVerifyEmail {
		return domain.ErrInvalidCode
	}
	uid, _ := claims["uid"].(string)
	if cur := p.Current(); cur.IdentityPresent && cur.UserID != uid {
		return domain.ErrInvalidCode
	}
	if err := p.users.MarkEmailVerified(ctx, uid); err != nil {
		return fmt.Errorf("confirm verification: %w", err)
	}
	return nil
}

func (p *Provider) sessionFor(user *domain.User) (domain.Session, error) {
	token, err := p.generateToken(user)
	if err != nil {
		return domain.SignedOut(), fmt.Errorf("sign session token: %w", err)
	}
	return domain.Session{
		IdentityPresent: true,
		UserID:          user.ID,
		Email:           user.Email,
		EmailVerified:   user.EmailVerified,
		Role:            user.Role,
		Token:           token,
	}, nil
}

func (p *Provider) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"uid":            user.ID,
		"email":          user.Email,
		"role":           user.Role,
		"email_verified": user.EmailVerified,
		"exp":            time.Now().Add(p.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(p.jwtSecret)
}

func (p *Provider) parse(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return p.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
