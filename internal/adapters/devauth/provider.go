// Package devauth provides a simple, config-driven stand-in for the remote
// auth API, for local development without a backend.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/target/dash-console/internal/domain/auth"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/ports"
	"golang.org/x/oauth2"
)

var _ ports.AuthAPI = (*Provider)(nil)

// Config controls the dev auth provider behavior.
// All fields are required except Name and Permissions.
type Config struct {
	UserID      string
	Name        string
	Email       string
	Password    string
	Permissions []string
	// TokenTTL is the lifetime of minted tokens (default 8h when zero).
	TokenTTL time.Duration
	// Tokens supplies the caller's current token for dash/* operations.
	Tokens oauth2.TokenSource
	// Now is the clock (defaults to time.Now).
	Now func() time.Time
}

// Provider implements ports.AuthAPI against one configured account. Tokens
// are HS256 JWTs signed with a per-process random secret, so they stop
// working when the process restarts.
type Provider struct {
	email    string
	password string
	ttl      time.Duration
	tokens   oauth2.TokenSource
	now      func() time.Time
	secret   []byte

	mu   sync.Mutex
	user domainauth.CurrentUser
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("dev auth: Password is required")
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	secret, err := randomString(32)
	if err != nil {
		return nil, fmt.Errorf("generate signing secret: %w", err)
	}
	name := cfg.Name
	if name == "" {
		name = cfg.UserID
	}
	return &Provider{
		email:    strings.ToLower(cfg.Email),
		password: cfg.Password,
		ttl:      ttl,
		tokens:   cfg.Tokens,
		now:      now,
		secret:   []byte(secret),
		user: domainauth.CurrentUser{
			ID:          cfg.UserID,
			Name:        name,
			Email:       cfg.Email,
			Status:      "online",
			Permissions: append([]string(nil), cfg.Permissions...),
		},
	}, nil
}

// SignIn checks the credentials against the configured account.
func (p *Provider) SignIn(_ context.Context, creds domainauth.Credentials) (domainauth.SignInResult, error) {
	if err := p.checkCredentials(creds); err != nil {
		return domainauth.SignInResult{}, err
	}
	return p.result()
}

// SignInWithToken accepts any unexpired token this process minted.
func (p *Provider) SignInWithToken(_ context.Context, accessToken string) (domainauth.SignInResult, error) {
	if err := p.verify(accessToken); err != nil {
		return domainauth.SignInResult{}, err
	}
	return p.result()
}

// SignUp accepts any well-formed request without creating an account.
func (p *Provider) SignUp(_ context.Context, in domainauth.SignUpInput) error {
	if strings.EqualFold(in.Email, p.email) {
		return apperrors.Remote(http.StatusConflict, "email already registered")
	}
	return nil
}

// ForgotPassword is accepted for every address so callers cannot probe accounts.
func (p *Provider) ForgotPassword(context.Context, string) error { return nil }

// ResetPassword replaces the configured password.
func (p *Provider) ResetPassword(_ context.Context, in domainauth.ResetPasswordInput) error {
	if in.Password == "" {
		return apperrors.Remote(http.StatusUnprocessableEntity, "password is required")
	}
	p.mu.Lock()
	p.password = in.Password
	p.mu.Unlock()
	return nil
}

// UnlockSession re-checks the password of the configured account.
func (p *Provider) UnlockSession(_ context.Context, creds domainauth.Credentials) error {
	return p.checkCredentials(creds)
}

// Me returns the configured user.
func (p *Provider) Me(context.Context) (*domainauth.CurrentUser, error) {
	if err := p.authorize(); err != nil {
		return nil, err
	}
	return p.snapshot(), nil
}

// UpdateUser applies the name, email and avatar keys of patch.
func (p *Provider) UpdateUser(_ context.Context, patch map[string]any) (*domainauth.CurrentUser, error) {
	if err := p.authorize(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	for key, dst := range map[string]*string{"name": &p.user.Name, "email": &p.user.Email, "avatar": &p.user.Avatar} {
		if v, ok := patch[key].(string); ok {
			*dst = v
		}
	}
	p.mu.Unlock()
	return p.snapshot(), nil
}

// UpdateStatus sets the presence status.
func (p *Provider) UpdateStatus(_ context.Context, status string) (*domainauth.CurrentUser, error) {
	if err := p.authorize(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.user.Status = status
	p.mu.Unlock()
	return p.snapshot(), nil
}

func (p *Provider) checkCredentials(creds domainauth.Credentials) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !strings.EqualFold(creds.Email, p.email) || creds.Password != p.password {
		return apperrors.Remote(http.StatusUnauthorized, "invalid credentials")
	}
	return nil
}

func (p *Provider) authorize() error {
	if p.tokens == nil {
		return nil
	}
	tok, err := p.tokens.Token()
	if err != nil {
		return apperrors.Remote(http.StatusUnauthorized, "missing bearer token")
	}
	return p.verify(tok.AccessToken)
}

func (p *Provider) verify(token string) error {
	_, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return apperrors.Remote(http.StatusUnauthorized, "invalid token")
	}
	return nil
}

func (p *Provider) result() (domainauth.SignInResult, error) {
	user := p.snapshot()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"iat": p.now().Unix(),
		"exp": p.now().Add(p.ttl).Unix(),
	}).SignedString(p.secret)
	if err != nil {
		return domainauth.SignInResult{}, fmt.Errorf("sign dev token: %w", err)
	}
	return domainauth.SignInResult{AccessToken: token, User: user}, nil
}

func (p *Provider) snapshot() *domainauth.CurrentUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := p.user
	u.Permissions = append([]string(nil), p.user.Permissions...)
	return &u
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return s[:n], nil
}
