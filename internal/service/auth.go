package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	domainauth "github.com/target/dash-console/internal/domain/auth"
	"github.com/target/dash-console/internal/domain/navigation"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/observability/metrics"
	"github.com/target/dash-console/internal/observability/statsd"
	"github.com/target/dash-console/internal/ports"
	"github.com/target/dash-console/internal/pubsub"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrAlreadyAuthenticated rejects a sign-in on an authenticated session.
	ErrAlreadyAuthenticated = &apperrors.AppError{
		Code:    apperrors.ErrCodeAlreadyAuthenticated,
		Message: "user is already logged in",
	}
	// ErrSignInInProgress rejects a sign-in while another one is running.
	ErrSignInInProgress = apperrors.Conflict("sign-in already in progress")
	// ErrNotAuthenticated is returned by operations that need a session.
	ErrNotAuthenticated = apperrors.Unauthorized("not authenticated")
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	API     ports.AuthAPI
	Tokens  ports.TokenStore
	Roles   ports.RoleMapper
	Catalog ports.NavigationCatalog
	Logger  *slog.Logger
	Metrics statsd.Sink
	// ExpirySkew treats tokens as expired this much before their exp claim.
	ExpirySkew time.Duration
	// Now is the clock (defaults to time.Now).
	Now func() time.Time
}

// AuthService is the session store and auth gateway of the console. It owns
// the single access token, the session state and the current user, and
// broadcasts every change of the current user.
type AuthService struct {
	api     ports.AuthAPI
	tokens  ports.TokenStore
	roles   ports.RoleMapper
	catalog ports.NavigationCatalog
	logger  *slog.Logger
	metrics statsd.Sink
	skew    time.Duration
	now     func() time.Time

	mu    sync.Mutex
	token string
	state domainauth.SessionState
	user  *domainauth.CurrentUser

	users  *pubsub.Broadcaster[*domainauth.CurrentUser]
	flight singleflight.Group
}

// NewAuthService constructs a new AuthService in the anonymous state.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		api:     opts.API,
		tokens:  opts.Tokens,
		roles:   opts.Roles,
		catalog: opts.Catalog,
		logger:  logger.With("component", "auth"),
		metrics: opts.Metrics,
		skew:    opts.ExpirySkew,
		now:     now,
		state:   domainauth.StateAnonymous,
		users:   pubsub.New[*domainauth.CurrentUser](pubsub.Options{Replay: true}),
	}
}

// Init restores the session from the persisted token. An absent or expired
// token is purged and leaves the session anonymous; otherwise the session is
// optimistically authenticated until Check or SignInWithToken confirms it.
func (s *AuthService) Init(ctx context.Context) error {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "load persisted token failed; starting anonymous", "error", err)
		token = ""
	}

	if token == "" || s.expired(token) {
		if token != "" {
			s.logger.InfoContext(ctx, "persisted token expired; purging")
		}
		s.purge(ctx)
		s.mu.Lock()
		s.token = ""
		s.state = domainauth.StateAnonymous
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.state = domainauth.StateAuthenticated
	s.mu.Unlock()
	return nil
}

// SignIn exchanges credentials for a session.
func (s *AuthService) SignIn(ctx context.Context, creds domainauth.Credentials) (*domainauth.CurrentUser, error) {
	start := s.now()
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	s.mu.Lock()
	switch s.state {
	case domainauth.StateAuthenticated:
		s.mu.Unlock()
		s.emit("sign_in", metrics.ResultNoop, 0, nil)
		return nil, ErrAlreadyAuthenticated
	case domainauth.StateAuthenticating:
		s.mu.Unlock()
		s.emit("sign_in", metrics.ResultNoop, 0, nil)
		return nil, ErrSignInInProgress
	}
	s.state = domainauth.StateAuthenticating
	s.mu.Unlock()

	res, err := s.api.SignIn(ctx, creds)
	if err != nil {
		s.mu.Lock()
		s.state = domainauth.StateAnonymous
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "sign-in failed", "email", creds.Email, "error", err)
		s.emit("sign_in", metrics.ResultError, s.now().Sub(start), err)
		return nil, err
	}

	s.persist(ctx, res.AccessToken)
	user := s.establish(res.AccessToken, res.User)
	s.logger.InfoContext(ctx, "signed in", "user_id", userID(user))
	s.emit("sign_in", metrics.ResultSuccess, s.now().Sub(start), nil)
	return user, nil
}

// SignInWithToken exchanges the stored token for a refreshed token and user.
// It reports false without a remote call when there is no token, and false
// after purging the session when the exchange fails. Concurrent callers share
// one in-flight exchange; it is not bound to any single caller's context, and
// each caller stops waiting when its own context is done.
func (s *AuthService) SignInWithToken(ctx context.Context) (bool, error) {
	ch := s.flight.DoChan("sign-in-with-token", func() (any, error) {
		return s.signInWithToken(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	}
}

func (s *AuthService) signInWithToken(ctx context.Context) (bool, error) {
	start := s.now()
	token := s.currentToken(ctx)
	if token == "" {
		s.emit("sign_in_with_token", metrics.ResultNoop, 0, nil)
		return false, nil
	}

	res, err := s.api.SignInWithToken(ctx, token)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.emit("sign_in_with_token", metrics.ResultError, s.now().Sub(start), err)
			return false, err
		}
		s.logger.WarnContext(ctx, "sign-in with token failed; clearing session", "error", err)
		s.clear(ctx)
		s.emit("sign_in_with_token", metrics.ResultError, s.now().Sub(start), err)
		return false, nil
	}

	if res.AccessToken != "" && res.AccessToken != token {
		token = res.AccessToken
		s.persist(ctx, token)
	}
	user := res.User
	if user == nil {
		user = s.CurrentUser()
	}
	s.establish(token, user)
	s.emit("sign_in_with_token", metrics.ResultSuccess, s.now().Sub(start), nil)
	return true, nil
}

// Check reports whether the session is authenticated. The order matters:
// an authenticated session answers immediately, a missing or expired token
// answers false without a remote call, and only then is the token confirmed
// remotely.
func (s *AuthService) Check(ctx context.Context) (bool, error) {
	if s.IsAuthenticated() {
		return true, nil
	}

	token := s.currentToken(ctx)
	if token == "" {
		s.emit("check", metrics.ResultNoop, 0, nil)
		return false, nil
	}
	if s.expired(token) {
		s.demote()
		s.emit("check", metrics.ResultNoop, 0, nil)
		return false, nil
	}
	return s.SignInWithToken(ctx)
}

// SignOut purges the token and clears the user. It always succeeds;
// persistence failures are logged.
func (s *AuthService) SignOut(ctx context.Context) {
	s.clear(ctx)
	s.logger.InfoContext(ctx, "signed out")
	s.emit("sign_out", metrics.ResultSuccess, 0, nil)
}

// SignUp registers a new account.
func (s *AuthService) SignUp(ctx context.Context, in domainauth.SignUpInput) error {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return apperrors.Validation("email and password are required")
	}
	return s.api.SignUp(ctx, in)
}

// ForgotPassword asks the API to send a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	return s.api.ForgotPassword(ctx, email)
}

// ResetPassword sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, in domainauth.ResetPasswordInput) error {
	if in.Password == "" {
		return apperrors.ValidationField("password", "password is required")
	}
	return s.api.ResetPassword(ctx, in)
}

// UnlockSession re-confirms the password of a locked session.
func (s *AuthService) UnlockSession(ctx context.Context, creds domainauth.Credentials) error {
	if creds.Password == "" {
		return apperrors.ValidationField("password", "password is required")
	}
	return s.api.UnlockSession(ctx, creds)
}

// IsAuthenticated reports whether the session is authenticated with a
// present, unexpired token.
func (s *AuthService) IsAuthenticated() bool {
	s.mu.Lock()
	state, token := s.state, s.token
	s.mu.Unlock()
	return state == domainauth.StateAuthenticated && token != "" && !s.expired(token)
}

// State returns the current session state.
func (s *AuthService) State() domainauth.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AccessToken returns the in-memory token, or "".
func (s *AuthService) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUser returns a copy of the current user, or nil.
func (s *AuthService) CurrentUser() *domainauth.CurrentUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// SubscribeUser subscribes to current-user changes. The last value is
// replayed first; nil means signed out.
func (s *AuthService) SubscribeUser() (*pubsub.Subscription[*domainauth.CurrentUser], error) {
	return s.users.Subscribe()
}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	State          domainauth.SessionState `json:"state"`
	Authenticated  bool                    `json:"authenticated"`
	User           *domainauth.CurrentUser `json:"user,omitempty"`
	TokenExpiresAt *time.Time              `json:"token_expires_at,omitempty"`
}

// Snapshot returns the current session view.
func (s *AuthService) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{State: s.state, User: s.user.Clone()}
	token := s.token
	s.mu.Unlock()

	snap.Authenticated = snap.State == domainauth.StateAuthenticated && token != "" && !s.expired(token)
	if exp, ok := TokenExpiry(token); ok {
		snap.TokenExpiresAt = &exp
	}
	return snap
}

// Menu returns the quick menu for the current user's first permission code.
func (s *AuthService) Menu() []navigation.Item {
	code := s.CurrentUser().PrimaryPermission()
	if code == "" {
		return []navigation.Item{}
	}
	return s.catalog.Menu(code)
}

// Navigation resolves the main navigation tree for the current user.
func (s *AuthService) Navigation() []navigation.Item {
	user := s.CurrentUser()
	if user == nil {
		return []navigation.Item{}
	}
	role, sub := s.roles.Map(user.Permissions)
	return s.catalog.Resolve(role, sub)
}

// Close ends every current-user subscription.
func (s *AuthService) Close() {
	s.users.Close()
}

func (s *AuthService) expired(token string) bool {
	return TokenExpired(token, s.now(), s.skew)
}

// currentToken returns the in-memory token, falling back to the persisted one.
func (s *AuthService) currentToken(ctx context.Context) string {
	if token := s.AccessToken(); token != "" {
		return token
	}
	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "load persisted token failed", "error", err)
		return ""
	}
	if token != "" {
		s.mu.Lock()
		if s.token == "" {
			s.token = token
		}
		s.mu.Unlock()
	}
	return token
}

// establish records an authenticated session and broadcasts the user.
func (s *AuthService) establish(token string, user *domainauth.CurrentUser) *domainauth.CurrentUser {
	s.mu.Lock()
	s.token = token
	s.user = user.Clone()
	s.state = domainauth.StateAuthenticated
	s.mu.Unlock()
	s.users.Publish(user.Clone())
	return user.Clone()
}

// setUser replaces the current user of an authenticated session.
func (s *AuthService) setUser(user *domainauth.CurrentUser) error {
	s.mu.Lock()
	if s.state != domainauth.StateAuthenticated {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	s.user = user.Clone()
	s.mu.Unlock()
	s.users.Publish(user.Clone())
	return nil
}

// clear drops the session and broadcasts nil.
func (s *AuthService) clear(ctx context.Context) {
	s.purge(ctx)
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.state = domainauth.StateAnonymous
	s.mu.Unlock()
	s.users.Publish(nil)
}

// demote drops the user of a session whose token expired. The token stays
// persisted; Init purges it on the next start.
func (s *AuthService) demote() {
	s.mu.Lock()
	hadUser := s.user != nil
	s.user = nil
	s.state = domainauth.StateAnonymous
	s.mu.Unlock()
	if hadUser {
		s.users.Publish(nil)
	}
}

func (s *AuthService) persist(ctx context.Context, token string) {
	if err := s.tokens.Save(ctx, token); err != nil {
		s.logger.ErrorContext(ctx, "persist access token failed; session kept in memory", "error", err)
	}
}

func (s *AuthService) purge(ctx context.Context) {
	if err := s.tokens.Purge(ctx); err != nil {
		s.logger.ErrorContext(ctx, "purge access token failed", "error", err)
	}
}

func (s *AuthService) emit(op, result string, d time.Duration, err error) {
	metrics.EmitAuthOutcome(s.metrics, metrics.AuthMetric{Operation: op, Result: result, Duration: d, Err: err})
}

func userID(u *domainauth.CurrentUser) string {
	if u == nil {
		return ""
	}
	return u.ID
}

// IsCredentialError reports whether err is a rejection of the submitted
// credentials as opposed to a local state conflict.
func IsCredentialError(err error) bool {
	return err != nil &&
		!errors.Is(err, ErrAlreadyAuthenticated) &&
		!errors.Is(err, ErrSignInInProgress) &&
		!apperrors.IsValidation(err)
}
