package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	nav "github.com/target/dash-console/internal/domain/navigation"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/observability/statsd"
	"github.com/target/dash-console/internal/pubsub"
)

func sampleTree() []nav.Item {
	return []nav.Item{
		{ID: "inicio", Type: nav.KindBasic, Title: "Inicio", Link: "/inicio"},
		{ID: "personal", Type: nav.KindGroup, Title: "Personal", Children: []nav.Item{
			{ID: "empleados", Type: nav.KindBasic, Link: "/empleados"},
		}},
	}
}

func nextChange(t *testing.T, sub *pubsub.Subscription[NavigationChange]) NavigationChange {
	t.Helper()
	select {
	case c, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for navigation change")
	}
	return NavigationChange{}
}

func TestNavigationStore_StoreAndGet(t *testing.T) {
	store := NewNavigationStore(NavigationStoreOptions{})
	defer store.Close()

	require.NoError(t, store.Store(context.Background(), SlotMain, sampleTree()))
	assert.True(t, store.Has(SlotMain))
	assert.Equal(t, sampleTree(), store.Get(SlotMain))
	assert.Equal(t, []string{SlotMain}, store.Slots())
}

func TestNavigationStore_GetMissingSlotIsEmpty(t *testing.T) {
	store := NewNavigationStore(NavigationStoreOptions{})
	defer store.Close()

	tree := store.Get("missing")
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
	assert.False(t, store.Has("missing"))
}

func TestNavigationStore_CopiesOnTheWayInAndOut(t *testing.T) {
	store := NewNavigationStore(NavigationStoreOptions{})
	defer store.Close()

	tree := sampleTree()
	require.NoError(t, store.Store(context.Background(), SlotMain, tree))
	tree[0].Title = "mutated"
	tree[1].Children[0].ID = "mutated"

	got := store.Get(SlotMain)
	assert.Equal(t, "Inicio", got[0].Title)
	got[1].Children[0].ID = "again"
	assert.Equal(t, "empleados", store.Get(SlotMain)[1].Children[0].ID)
}

func TestNavigationStore_RejectsInvalidInput(t *testing.T) {
	store := NewNavigationStore(NavigationStoreOptions{})
	defer store.Close()
	ctx := context.Background()

	err := store.Store(ctx, " ", sampleTree())
	assert.True(t, apperrors.IsValidation(err))

	dup := []nav.Item{{ID: "a", Type: nav.KindBasic}, {ID: "a", Type: nav.KindBasic}}
	err = store.Store(ctx, SlotMain, dup)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.ErrorIs(t, err, nav.ErrDuplicateID)
	assert.False(t, store.Has(SlotMain))
}

func TestNavigationStore_PublishesEveryMutationInOrder(t *testing.T) {
	store := NewNavigationStore(NavigationStoreOptions{})
	defer store.Close()
	ctx := context.Background()

	sub, err := store.Subscribe()
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, store.Store(ctx, SlotMain, sampleTree()))
	require.NoError(t, store.Store(ctx, SlotMain, sampleTree()))
	store.Delete(ctx, SlotMain)

	first := nextChange(t, sub)
	assert.Equal(t, SlotMain, first.Slot)
	assert.Equal(t, []string{"inicio", "personal"}, nav.IDs(first.Tree))

	second := nextChange(t, sub)
	assert.Equal(t, first, second, "storing the same tree publishes again")

	deleted := nextChange(t, sub)
	assert.Equal(t, SlotMain, deleted.Slot)
	assert.NotNil(t, deleted.Tree)
	assert.Empty(t, deleted.Tree)
	assert.False(t, store.Has(SlotMain))
}

func TestNavigationStore_DeleteMissingSlotStillPublishes(t *testing.T) {
	store := NewNavigationStore(NavigationStoreOptions{})
	defer store.Close()

	sub, err := store.Subscribe()
	require.NoError(t, err)
	defer sub.Close()

	store.Delete(context.Background(), "ghost")
	c := nextChange(t, sub)
	assert.Equal(t, "ghost", c.Slot)
	assert.Empty(t, c.Tree)
}

func TestNavigationStore_SubscribeAfterCloseFails(t *testing.T) {
	store := NewNavigationStore(NavigationStoreOptions{})
	store.Close()

	_, err := store.Subscribe()
	assert.ErrorIs(t, err, pubsub.ErrClosed)
}

func TestNavigationStore_EmitsMetrics(t *testing.T) {
	var rec statsd.Recorder
	store := NewNavigationStore(NavigationStoreOptions{Metrics: &rec})
	defer store.Close()

	require.NoError(t, store.Store(context.Background(), SlotMain, sampleTree()))
	store.Delete(context.Background(), SlotMain)

	changes := rec.Named("navigation.change")
	require.Len(t, changes, 2)
	assert.Equal(t, "store", changes[0].Tags["action"])
	assert.Equal(t, "delete", changes[1].Tags["action"])
}
