package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/target/dash-console/internal/adapters/authroles"
	"github.com/target/dash-console/internal/adapters/rolecatalog"
	fakes "github.com/target/dash-console/internal/mocks/auth"
	"github.com/target/dash-console/internal/service"
	"github.com/target/dash-console/internal/testutil"
)

type testConsole struct {
	api     *fakes.FakeAuthAPI
	tokens  *fakes.MemoryTokenStore
	auth    *service.AuthService
	store   *service.NavigationStore
	panels  *service.PanelRegistry
	handler http.Handler
}

func newTestConsole(t *testing.T) *testConsole {
	t.Helper()
	api := fakes.NewFakeAuthAPI()
	api.Token = testutil.TokenExpiringAt(t, time.Now().Add(time.Hour))
	tokens := fakes.NewMemoryTokenStore("")
	catalog := rolecatalog.New(rolecatalog.Options{})

	auth := service.NewAuthService(service.AuthServiceOptions{
		API:     api,
		Tokens:  tokens,
		Roles:   authroles.StaticRoleMapper{},
		Catalog: catalog,
	})
	store := service.NewNavigationStore(service.NavigationStoreOptions{})
	panels := service.NewPanelRegistry(nil)
	t.Cleanup(func() {
		auth.Close()
		store.Close()
	})

	return &testConsole{
		api:    api,
		tokens: tokens,
		auth:   auth,
		store:  store,
		panels: panels,
		handler: NewRouter(RouterServices{
			Auth:           auth,
			Profile:        service.NewProfileService(service.ProfileServiceOptions{API: api, Auth: auth}),
			Navigation:     store,
			Panels:         panels,
			Catalog:        catalog,
			EventKeepAlive: 50 * time.Millisecond,
		}),
	}
}

func (c *testConsole) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *testConsole) signIn(t *testing.T) {
	t.Helper()
	rec := c.do(t, http.MethodPost, "/auth/sign-in", c.api.Account)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
