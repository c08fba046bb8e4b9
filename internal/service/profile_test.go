package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/dash-console/internal/domain/auth"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/mocks"
	fakes "github.com/target/dash-console/internal/mocks/auth"
	"go.uber.org/mock/gomock"
)

func signedInProfile(t *testing.T, api *fakes.FakeAuthAPI) (*ProfileService, *AuthService) {
	t.Helper()
	api.Token = validToken(t)
	auth := newAuthService(t, api, fakes.NewMemoryTokenStore(""))
	_, err := auth.SignIn(context.Background(), api.Account)
	require.NoError(t, err)
	return NewProfileService(ProfileServiceOptions{API: api, Auth: auth}), auth
}

func TestProfileService_RequiresSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAuthAPI(ctrl)
	api.EXPECT().Me(gomock.Any()).Times(0)
	api.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).Times(0)

	auth := newAuthService(t, api, fakes.NewMemoryTokenStore(""))
	svc := NewProfileService(ProfileServiceOptions{API: api, Auth: auth})

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.Update(context.Background(), map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestProfileService_UpdateReplacesAndBroadcastsUser(t *testing.T) {
	api := fakes.NewFakeAuthAPI()
	svc, auth := signedInProfile(t, api)

	sub, err := auth.SubscribeUser()
	require.NoError(t, err)
	defer sub.Close()
	<-sub.C() // replayed sign-in user

	user, err := svc.Update(context.Background(), map[string]any{"name": "Ana María"})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", user.Name)
	assert.Equal(t, "Ana María", auth.CurrentUser().Name)

	select {
	case u := <-sub.C():
		require.NotNil(t, u)
		assert.Equal(t, "Ana María", u.Name)
	case <-time.After(time.Second):
		t.Fatal("profile update not broadcast")
	}
}

func TestProfileService_UpdateValidation(t *testing.T) {
	api := fakes.NewFakeAuthAPI()
	svc, _ := signedInProfile(t, api)

	_, err := svc.Update(context.Background(), nil)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Update(context.Background(), map[string]any{"permissions": []string{"superadmin"}})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "permissions", apperrors.GetField(err))
	assert.Zero(t, api.Calls("UpdateUser"))
}

func TestProfileService_UpdateStatus(t *testing.T) {
	api := fakes.NewFakeAuthAPI()
	svc, auth := signedInProfile(t, api)

	user, err := svc.UpdateStatus(context.Background(), "busy")
	require.NoError(t, err)
	assert.Equal(t, "busy", user.Status)
	assert.Equal(t, "busy", auth.CurrentUser().Status)

	_, err = svc.UpdateStatus(context.Background(), "sleeping")
	assert.True(t, apperrors.IsValidation(err))
}

func TestProfileService_RefreshFailureKeepsUser(t *testing.T) {
	api := fakes.NewFakeAuthAPI()
	svc, auth := signedInProfile(t, api)
	api.MeFunc = func(context.Context) (*domainauth.CurrentUser, error) {
		return nil, apperrors.Remote(500, "boom")
	}

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
	assert.Equal(t, "user-1", auth.CurrentUser().ID)
}
