package ports

// Package ports defines interfaces (hexagonal ports) for auth and navigation behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/dash-console/internal/domain/auth"
	"github.com/target/dash-console/internal/domain/navigation"
)

// AuthAPI is the remote authentication and profile endpoint set.
type AuthAPI interface {
	// SignIn exchanges credentials for an access token and user (POST auth/sign-in).
	SignIn(ctx context.Context, creds domainauth.Credentials) (domainauth.SignInResult, error)

	// SignInWithToken exchanges a stored token for a refreshed token and user
	// (POST auth/sign-in-with-token). AccessToken may be empty when the server keeps the old one.
	SignInWithToken(ctx context.Context, accessToken string) (domainauth.SignInResult, error)

	SignUp(ctx context.Context, in domainauth.SignUpInput) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in domainauth.ResetPasswordInput) error
	UnlockSession(ctx context.Context, creds domainauth.Credentials) error

	// Me fetches the profile of the token's owner (GET dash/me).
	Me(ctx context.Context) (*domainauth.CurrentUser, error)
	// UpdateUser patches the profile (PATCH dash/user).
	UpdateUser(ctx context.Context, patch map[string]any) (*domainauth.CurrentUser, error)
	// UpdateStatus changes the user's presence status (POST dash/update-status).
	UpdateStatus(ctx context.Context, status string) (*domainauth.CurrentUser, error)
}

// TokenStore persists the single access token of the client session.
// Load returns "" with a nil error when no token is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Purge(ctx context.Context) error
}

// RoleMapper derives the role and sub-role from a user's permission codes.
type RoleMapper interface {
	Map(permissions []string) (domainauth.Role, domainauth.SubRole)
}

// NavigationCatalog resolves navigation trees and menus from static tables.
// Implementations never fail; unknown inputs yield empty trees.
type NavigationCatalog interface {
	Resolve(role domainauth.Role, sub domainauth.SubRole) []navigation.Item
	ResolveChild(role domainauth.Role, sub domainauth.SubRole) []navigation.Item
	Menu(code string) []navigation.Item
}
