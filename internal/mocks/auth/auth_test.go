package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/dash-console/internal/domain/auth"
)

func TestFakeAuthAPI_SignIn(t *testing.T) {
	api := NewFakeAuthAPI()
	ctx := context.Background()

	res, err := api.SignIn(ctx, api.Account)
	require.NoError(t, err)
	assert.Equal(t, "fake-token", res.AccessToken)
	assert.Equal(t, "user-1", res.User.ID)

	_, err = api.SignIn(ctx, domainauth.Credentials{Email: "ana@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 2, api.Calls("SignIn"))
}

func TestFakeAuthAPI_UserIsCopied(t *testing.T) {
	api := NewFakeAuthAPI()
	u, err := api.Me(context.Background())
	require.NoError(t, err)
	u.Permissions[0] = "mutated"

	again, err := api.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "collaborator", again.Permissions[0])
}

func TestFakeAuthAPI_ProfileUpdates(t *testing.T) {
	api := NewFakeAuthAPI()
	ctx := context.Background()

	u, err := api.UpdateUser(ctx, map[string]any{"name": "Bea"})
	require.NoError(t, err)
	assert.Equal(t, "Bea", u.Name)

	u, err = api.UpdateStatus(ctx, "away")
	require.NoError(t, err)
	assert.Equal(t, "away", u.Status)
}

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTokenStore("seed")

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "seed", got)

	require.NoError(t, s.Purge(ctx))
	assert.Empty(t, s.Peek())

	s.SaveErr = errors.New("disk full")
	assert.Error(t, s.Save(ctx, "x"))
	assert.Empty(t, s.Peek())
}
