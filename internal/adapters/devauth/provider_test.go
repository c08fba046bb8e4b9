package devauth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/dash-console/internal/domain/auth"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/service"
	"golang.org/x/oauth2"
)

type staticTokens struct{ token *string }

func (s staticTokens) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: *s.token}, nil
}

func newProvider(t *testing.T, now func() time.Time, token *string) *Provider {
	t.Helper()
	var tokens oauth2.TokenSource
	if token != nil {
		tokens = staticTokens{token: token}
	}
	p, err := NewProvider(Config{
		UserID:      "dev-user",
		Name:        "Dev",
		Email:       "dev@example.com",
		Password:    "secret1",
		Permissions: []string{"hr"},
		TokenTTL:    time.Hour,
		Tokens:      tokens,
		Now:         now,
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiresAccount(t *testing.T) {
	_, err := NewProvider(Config{Email: "dev@example.com", Password: "x"})
	require.Error(t, err)
	_, err = NewProvider(Config{UserID: "u", Password: "x"})
	require.Error(t, err)
	_, err = NewProvider(Config{UserID: "u", Email: "dev@example.com"})
	require.Error(t, err)
}

func TestProvider_SignInMintsExpiringToken(t *testing.T) {
	now := time.Now()
	p := newProvider(t, func() time.Time { return now }, nil)

	res, err := p.SignIn(context.Background(), domainauth.Credentials{Email: "DEV@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, "dev-user", res.User.ID)
	assert.Equal(t, []string{"hr"}, res.User.Permissions)
	assert.False(t, service.TokenExpired(res.AccessToken, now, 0))
	assert.True(t, service.TokenExpired(res.AccessToken, now.Add(2*time.Hour), 0))
}

func TestProvider_SignInRejectsWrongPassword(t *testing.T) {
	p := newProvider(t, nil, nil)

	_, err := p.SignIn(context.Background(), domainauth.Credentials{Email: "dev@example.com", Password: "nope"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
	assert.Equal(t, http.StatusUnauthorized, apperrors.GetStatus(err))
}

func TestProvider_SignInWithToken(t *testing.T) {
	now := time.Now()
	p := newProvider(t, func() time.Time { return now }, nil)
	ctx := context.Background()

	res, err := p.SignIn(ctx, domainauth.Credentials{Email: "dev@example.com", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := p.SignInWithToken(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = p.SignInWithToken(ctx, "not-a-token")
	require.Error(t, err)

	other := newProvider(t, func() time.Time { return now }, nil)
	_, err = other.SignInWithToken(ctx, res.AccessToken)
	require.Error(t, err, "tokens from another process are rejected")

	now = now.Add(2 * time.Hour)
	_, err = p.SignInWithToken(ctx, res.AccessToken)
	require.Error(t, err)
}

func TestProvider_ProfileRequiresToken(t *testing.T) {
	token := "bogus"
	p := newProvider(t, nil, &token)
	ctx := context.Background()

	_, err := p.Me(ctx)
	require.Error(t, err)

	res, err := p.SignIn(ctx, domainauth.Credentials{Email: "dev@example.com", Password: "secret1"})
	require.NoError(t, err)
	token = res.AccessToken

	me, err := p.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dev", me.Name)

	updated, err := p.UpdateUser(ctx, map[string]any{"name": "Dev Two", "avatar": "a.png", "ignored": 3})
	require.NoError(t, err)
	assert.Equal(t, "Dev Two", updated.Name)
	assert.Equal(t, "a.png", updated.Avatar)

	updated, err = p.UpdateStatus(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, "busy", updated.Status)
}

func TestProvider_PassThroughs(t *testing.T) {
	p := newProvider(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, p.ForgotPassword(ctx, "anyone@example.com"))
	require.Error(t, p.SignUp(ctx, domainauth.SignUpInput{Email: "dev@example.com"}))
	require.NoError(t, p.SignUp(ctx, domainauth.SignUpInput{Email: "new@example.com"}))

	require.NoError(t, p.ResetPassword(ctx, domainauth.ResetPasswordInput{Password: "changed1"}))
	require.Error(t, p.UnlockSession(ctx, domainauth.Credentials{Email: "dev@example.com", Password: "secret1"}))
	require.NoError(t, p.UnlockSession(ctx, domainauth.Credentials{Email: "dev@example.com", Password: "changed1"}))
}
