package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainauth "github.com/target/dash-console/internal/domain/auth"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/ports"
)

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	API    ports.AuthAPI
	Auth   *AuthService
	Logger *slog.Logger
}

// ProfileService reads and edits the signed-in user's profile. Every
// successful response replaces the current user and is broadcast.
type ProfileService struct {
	api    ports.AuthAPI
	auth   *AuthService
	logger *slog.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{api: opts.API, auth: opts.Auth, logger: logger.With("component", "profile")}
}

// Refresh reloads the profile from the API.
func (p *ProfileService) Refresh(ctx context.Context) (*domainauth.CurrentUser, error) {
	return p.apply(ctx, "refresh profile", func() (*domainauth.CurrentUser, error) {
		return p.api.Me(ctx)
	})
}

// Update patches profile fields. Only name, email and avatar may be changed.
func (p *ProfileService) Update(ctx context.Context, patch map[string]any) (*domainauth.CurrentUser, error) {
	if len(patch) == 0 {
		return nil, apperrors.Validation("nothing to update")
	}
	for k := range patch {
		switch k {
		case "name", "email", "avatar":
		default:
			return nil, apperrors.ValidationField(k, "field cannot be updated")
		}
	}
	return p.apply(ctx, "update profile", func() (*domainauth.CurrentUser, error) {
		return p.api.UpdateUser(ctx, patch)
	})
}

// UpdateStatus sets the presence status.
func (p *ProfileService) UpdateStatus(ctx context.Context, status string) (*domainauth.CurrentUser, error) {
	status = strings.TrimSpace(status)
	if !validStatus(status) {
		return nil, apperrors.ValidationField("status", "status must be one of online, away, busy, not-visible")
	}
	return p.apply(ctx, "update status", func() (*domainauth.CurrentUser, error) {
		return p.api.UpdateStatus(ctx, status)
	})
}

func (p *ProfileService) apply(ctx context.Context, op string, call func() (*domainauth.CurrentUser, error)) (*domainauth.CurrentUser, error) {
	if !p.auth.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	user, err := call()
	if err != nil {
		p.logger.WarnContext(ctx, op+" failed", "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := p.auth.setUser(user); err != nil {
		return nil, err
	}
	return user.Clone(), nil
}

func validStatus(s string) bool {
	switch s {
	case "online", "away", "busy", "not-visible":
		return true
	}
	return false
}
