package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/dash-console/internal/adapters/authroles"
	"github.com/target/dash-console/internal/adapters/rolecatalog"
	domainauth "github.com/target/dash-console/internal/domain/auth"
	nav "github.com/target/dash-console/internal/domain/navigation"
	fakes "github.com/target/dash-console/internal/mocks/auth"
)

type layoutFixture struct {
	auth   *AuthService
	store  *NavigationStore
	panels *PanelRegistry
	layout *LayoutCoordinator
}

func newLayoutFixture(t *testing.T) layoutFixture {
	t.Helper()
	f := layoutFixture{
		auth:   newAuthService(t, fakes.NewFakeAuthAPI(), fakes.NewMemoryTokenStore("")),
		store:  NewNavigationStore(NavigationStoreOptions{}),
		panels: NewPanelRegistry(nil),
	}
	t.Cleanup(f.store.Close)
	f.layout = NewLayoutCoordinator(LayoutCoordinatorOptions{
		Auth:    f.auth,
		Store:   f.store,
		Panels:  f.panels,
		Roles:   authroles.StaticRoleMapper{},
		Catalog: rolecatalog.New(rolecatalog.Options{}),
	})
	return f
}

func TestLayoutCoordinator_SyncCollaborator(t *testing.T) {
	f := newLayoutFixture(t)
	user := &domainauth.CurrentUser{ID: "1", Permissions: []string{"collaborator"}}

	require.NoError(t, f.layout.Sync(context.Background(), user))
	assert.Equal(t, []string{"inicio", "perfil", "viajes", "historial"}, nav.IDs(f.store.Get(SlotMain)))
	assert.False(t, f.store.Has(SlotReportProd))
}

func TestLayoutCoordinator_SyncSupervisorGetsReportSlot(t *testing.T) {
	f := newLayoutFixture(t)
	user := &domainauth.CurrentUser{ID: "2", Permissions: []string{"collaborator", "supervisor"}}

	require.NoError(t, f.layout.Sync(context.Background(), user))
	assert.Contains(t, nav.IDs(f.store.Get(SlotMain)), "reporte-produccion")
	assert.Equal(t, []string{"reportprod"}, nav.IDs(f.store.Get(SlotReportProd)))
}

func TestLayoutCoordinator_SyncDropsReportSlotWhenNoLongerEntitled(t *testing.T) {
	f := newLayoutFixture(t)
	ctx := context.Background()

	require.NoError(t, f.layout.Sync(ctx, &domainauth.CurrentUser{ID: "3", Permissions: []string{"superadmin"}}))
	require.True(t, f.store.Has(SlotReportProd))

	require.NoError(t, f.layout.Sync(ctx, &domainauth.CurrentUser{ID: "3", Permissions: []string{"hr"}}))
	assert.False(t, f.store.Has(SlotReportProd))
}

func TestLayoutCoordinator_SyncNilClearsSlotsAndClosesPanel(t *testing.T) {
	f := newLayoutFixture(t)
	ctx := context.Background()
	panel := NewPanelState(true)
	f.panels.Register(SlotReportProd, panel)

	require.NoError(t, f.layout.Sync(ctx, &domainauth.CurrentUser{ID: "4", Permissions: []string{"jefe"}}))
	require.NoError(t, f.layout.Sync(ctx, nil))

	assert.Empty(t, f.store.Slots())
	assert.False(t, panel.IsOpen())
}

func TestLayoutCoordinator_SyncNilWithoutPanel(t *testing.T) {
	f := newLayoutFixture(t)
	assert.NoError(t, f.layout.Sync(context.Background(), nil))
}

func TestLayoutCoordinator_RunFollowsUserFeed(t *testing.T) {
	f := newLayoutFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.layout.Run(ctx) }()

	f.auth.establish(validToken(t), &domainauth.CurrentUser{ID: "5", Permissions: []string{"hr"}})
	require.Eventually(t, func() bool { return f.store.Has(SlotMain) }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "inicio", f.store.Get(SlotMain)[0].ID)

	f.auth.SignOut(context.Background())
	require.Eventually(t, func() bool { return !f.store.Has(SlotMain) }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
