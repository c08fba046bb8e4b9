package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/target/dash-console/internal/domain/auth"
	"github.com/target/dash-console/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI    = (*FakeAuthAPI)(nil)
	_ ports.TokenStore = (*MemoryTokenStore)(nil)
	_ ports.RoleMapper = FixedRoleMapper{}
)

// ErrInvalidCredentials is what FakeAuthAPI returns for a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// FakeAuthAPI simulates the remote API with one known account.
// Any Func field overrides the default behavior of its method.
type FakeAuthAPI struct {
	SignInFunc          func(ctx context.Context, creds domainauth.Credentials) (domainauth.SignInResult, error)
	SignInWithTokenFunc func(ctx context.Context, token string) (domainauth.SignInResult, error)
	MeFunc              func(ctx context.Context) (*domainauth.CurrentUser, error)

	// Account is the only credential pair accepted by the default SignIn.
	Account domainauth.Credentials
	// Token is issued on successful sign-in.
	Token string
	User  domainauth.CurrentUser

	mu    sync.Mutex
	calls map[string]int
}

// NewFakeAuthAPI creates a FakeAuthAPI with sensible defaults.
func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{
		Account: domainauth.Credentials{Email: "ana@example.com", Password: "secret"},
		Token:   "fake-token",
		User: domainauth.CurrentUser{
			ID:          "user-1",
			Name:        "Ana",
			Email:       "ana@example.com",
			Status:      "online",
			Permissions: []string{string(domainauth.RoleCollaborator)},
		},
	}
}

// Calls returns how many times method was invoked.
func (f *FakeAuthAPI) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeAuthAPI) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
}

func (f *FakeAuthAPI) user() *domainauth.CurrentUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.User.Clone()
}

func (f *FakeAuthAPI) SignIn(ctx context.Context, creds domainauth.Credentials) (domainauth.SignInResult, error) {
	f.record("SignIn")
	if f.SignInFunc != nil {
		return f.SignInFunc(ctx, creds)
	}
	if creds != f.Account {
		return domainauth.SignInResult{}, ErrInvalidCredentials
	}
	return domainauth.SignInResult{AccessToken: f.Token, User: f.user()}, nil
}

func (f *FakeAuthAPI) SignInWithToken(ctx context.Context, token string) (domainauth.SignInResult, error) {
	f.record("SignInWithToken")
	if f.SignInWithTokenFunc != nil {
		return f.SignInWithTokenFunc(ctx, token)
	}
	return domainauth.SignInResult{AccessToken: token, User: f.user()}, nil
}

func (f *FakeAuthAPI) SignUp(context.Context, domainauth.SignUpInput) error {
	f.record("SignUp")
	return nil
}

func (f *FakeAuthAPI) ForgotPassword(context.Context, string) error {
	f.record("ForgotPassword")
	return nil
}

func (f *FakeAuthAPI) ResetPassword(context.Context, domainauth.ResetPasswordInput) error {
	f.record("ResetPassword")
	return nil
}

func (f *FakeAuthAPI) UnlockSession(_ context.Context, creds domainauth.Credentials) error {
	f.record("UnlockSession")
	if creds != f.Account {
		return ErrInvalidCredentials
	}
	return nil
}

func (f *FakeAuthAPI) Me(ctx context.Context) (*domainauth.CurrentUser, error) {
	f.record("Me")
	if f.MeFunc != nil {
		return f.MeFunc(ctx)
	}
	return f.user(), nil
}

func (f *FakeAuthAPI) UpdateUser(_ context.Context, patch map[string]any) (*domainauth.CurrentUser, error) {
	f.record("UpdateUser")
	f.mu.Lock()
	if v, ok := patch["name"].(string); ok {
		f.User.Name = v
	}
	if v, ok := patch["avatar"].(string); ok {
		f.User.Avatar = v
	}
	f.mu.Unlock()
	return f.user(), nil
}

func (f *FakeAuthAPI) UpdateStatus(_ context.Context, status string) (*domainauth.CurrentUser, error) {
	f.record("UpdateStatus")
	f.mu.Lock()
	f.User.Status = status
	f.mu.Unlock()
	return f.user(), nil
}

// MemoryTokenStore is an in-memory token store with failure injection.
type MemoryTokenStore struct {
	mu       sync.Mutex
	token    string
	SaveErr  error
	PurgeErr error
	LoadErr  error
}

// NewMemoryTokenStore creates a store seeded with token.
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (m *MemoryTokenStore) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return "", m.LoadErr
	}
	return m.token, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.token = token
	return nil
}

func (m *MemoryTokenStore) Purge(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PurgeErr != nil {
		return m.PurgeErr
	}
	m.token = ""
	return nil
}

// Peek returns the stored token without going through Load.
func (m *MemoryTokenStore) Peek() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// FixedRoleMapper always yields the same role and sub-role.
type FixedRoleMapper struct {
	Role domainauth.Role
	Sub  domainauth.SubRole
}

func (m FixedRoleMapper) Map([]string) (domainauth.Role, domainauth.SubRole) {
	return m.Role, m.Sub
}
