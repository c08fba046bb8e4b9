package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/dash-console/internal/domain/auth"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/service"
)

func TestAuthHandlers_SignIn(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(t, http.MethodPost, "/auth/sign-in", c.api.Account)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[sessionResponse](t, rec)
	assert.True(t, resp.Authenticated)
	require.NotNil(t, resp.User)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, c.api.Token, c.tokens.Peek())
}

func TestAuthHandlers_SignInWrongPasswordIsGeneric(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(t, http.MethodPost, "/auth/sign-in", domainauth.Credentials{Email: c.api.Account.Email, Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "invalid_credentials", body.Error)
	assert.Equal(t, msgBadCredentials, body.Message)
	assert.Equal(t, domainauth.StateAnonymous, c.auth.State())
}

func TestAuthHandlers_SignInRemoteRejectionIsGeneric(t *testing.T) {
	c := newTestConsole(t)
	c.api.SignInFunc = func(context.Context, domainauth.Credentials) (domainauth.SignInResult, error) {
		return domainauth.SignInResult{}, apperrors.Remote(http.StatusUnauthorized, "user locked by admin")
	}

	rec := c.do(t, http.MethodPost, "/auth/sign-in", c.api.Account)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "locked")
}

func TestAuthHandlers_SignInRemoteOutageIsNotACredentialError(t *testing.T) {
	c := newTestConsole(t)
	c.api.SignInFunc = func(context.Context, domainauth.Credentials) (domainauth.SignInResult, error) {
		return domainauth.SignInResult{}, apperrors.Remote(http.StatusServiceUnavailable, "maintenance")
	}

	rec := c.do(t, http.MethodPost, "/auth/sign-in", c.api.Account)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAuthHandlers_SignInTwiceConflicts(t *testing.T) {
	c := newTestConsole(t)
	c.signIn(t)

	rec := c.do(t, http.MethodPost, "/auth/sign-in", c.api.Account)
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "already_authenticated", body.Error)
	assert.Equal(t, service.ErrAlreadyAuthenticated.Message, body.Message)
	assert.Equal(t, 1, c.api.Calls("SignIn"))
}

func TestAuthHandlers_SignInBadRequest(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(t, http.MethodPost, "/auth/sign-in", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(t, http.MethodPost, "/auth/sign-in", `{"email":"a@b.c","password":"x","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(t, http.MethodPost, "/auth/sign-in", domainauth.Credentials{Email: "a@b.c"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, c.api.Calls("SignIn"))
}

func TestAuthHandlers_CheckAndSignOut(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(t, http.MethodGet, "/auth/check", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[sessionResponse](t, rec).Authenticated)
	assert.Zero(t, c.api.Calls("SignInWithToken"))

	c.signIn(t)
	rec = c.do(t, http.MethodGet, "/auth/check", nil)
	assert.True(t, decodeBody[sessionResponse](t, rec).Authenticated)

	rec = c.do(t, http.MethodPost, "/auth/sign-out", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, c.tokens.Peek())

	rec = c.do(t, http.MethodGet, "/auth/check", nil)
	assert.False(t, decodeBody[sessionResponse](t, rec).Authenticated)
}

func TestAuthHandlers_SignInWithToken(t *testing.T) {
	c := newTestConsole(t)
	require.NoError(t, c.tokens.Save(context.Background(), c.api.Token))

	rec := c.do(t, http.MethodPost, "/auth/sign-in-with-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[sessionResponse](t, rec)
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "user-1", resp.User.ID)
}

func TestAuthHandlers_Status(t *testing.T) {
	c := newTestConsole(t)
	c.signIn(t)

	rec := c.do(t, http.MethodGet, "/auth/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeBody[service.Snapshot](t, rec)
	assert.Equal(t, domainauth.StateAuthenticated, snap.State)
	assert.True(t, snap.Authenticated)
	assert.NotNil(t, snap.TokenExpiresAt)
}

func TestAuthHandlers_AccountFlows(t *testing.T) {
	c := newTestConsole(t)

	rec := c.do(t, http.MethodPost, "/auth/sign-up", domainauth.SignUpInput{Name: "Bo", Email: "bo@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = c.do(t, http.MethodPost, "/auth/sign-up", domainauth.SignUpInput{Name: "Bo", Email: "bo", Password: "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decodeBody[errorBody](t, rec).Field)

	rec = c.do(t, http.MethodPost, "/auth/forgot-password", forgotPasswordRequest{Email: "bo@example.com"})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = c.do(t, http.MethodPost, "/auth/reset-password", domainauth.ResetPasswordInput{Token: "t", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(t, http.MethodPost, "/auth/reset-password", domainauth.ResetPasswordInput{Token: "t", Password: "newsecret"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(t, http.MethodPost, "/auth/unlock-session", domainauth.Credentials{Email: c.api.Account.Email, Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgBadPassword, decodeBody[errorBody](t, rec).Message)

	rec = c.do(t, http.MethodPost, "/auth/unlock-session", c.api.Account)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, 1, c.api.Calls("SignUp"))
	assert.Equal(t, 1, c.api.Calls("ResetPassword"))
}
