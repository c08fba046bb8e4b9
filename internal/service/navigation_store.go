package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/target/dash-console/internal/domain/navigation"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/observability/metrics"
	"github.com/target/dash-console/internal/observability/statsd"
	"github.com/target/dash-console/internal/pubsub"
)

// Well-known navigation slots.
const (
	SlotMain       = "main"
	SlotReportProd = "reportprod"
)

// NavigationChange is published on every Store and Delete. Tree is empty
// (never nil) for deletions.
type NavigationChange struct {
	Slot string           `json:"slot"`
	Tree []navigation.Item `json:"tree"`
}

// NavigationStoreOptions groups dependencies for NavigationStore.
type NavigationStoreOptions struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// NavigationStore maps slot keys to navigation trees and publishes every
// mutation. Trees are copied on the way in and on the way out.
type NavigationStore struct {
	logger  *slog.Logger
	metrics statsd.Sink

	mu    sync.RWMutex
	slots map[string][]navigation.Item

	changes *pubsub.Broadcaster[NavigationChange]
}

// NewNavigationStore constructs an empty NavigationStore.
func NewNavigationStore(opts NavigationStoreOptions) *NavigationStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NavigationStore{
		logger:  logger.With("component", "navigation_store"),
		metrics: opts.Metrics,
		slots:   make(map[string][]navigation.Item),
		changes: pubsub.New[NavigationChange](pubsub.Options{}),
	}
}

// Store replaces the tree of slot and publishes the change. Storing the same
// tree twice publishes twice.
func (s *NavigationStore) Store(ctx context.Context, slot string, tree []navigation.Item) error {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return apperrors.ValidationField("slot", "slot is required")
	}
	if err := navigation.Validate(tree); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid navigation tree")
	}

	stored := navigation.Clone(tree)
	s.mu.Lock()
	s.slots[slot] = stored
	// Publishing under the lock keeps feed order equal to write order.
	s.changes.Publish(NavigationChange{Slot: slot, Tree: navigation.Clone(stored)})
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "navigation stored", "slot", slot, "items", len(stored))
	metrics.EmitNavigationChange(s.metrics, metrics.NavigationMetric{Slot: slot, Action: "store", Items: len(stored)})
	return nil
}

// Get returns a copy of the tree stored under slot, or an empty tree.
func (s *NavigationStore) Get(slot string) []navigation.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return navigation.Clone(s.slots[slot])
}

// Has reports whether slot holds a tree.
func (s *NavigationStore) Has(slot string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.slots[slot]
	return ok
}

// Delete removes slot and publishes an empty tree for it. Deleting a missing
// slot only logs a warning.
func (s *NavigationStore) Delete(ctx context.Context, slot string) {
	s.mu.Lock()
	_, existed := s.slots[slot]
	delete(s.slots, slot)
	s.changes.Publish(NavigationChange{Slot: slot, Tree: []navigation.Item{}})
	s.mu.Unlock()

	if !existed {
		s.logger.WarnContext(ctx, "navigation slot not found", "slot", slot)
	}
	metrics.EmitNavigationChange(s.metrics, metrics.NavigationMetric{Slot: slot, Action: "delete"})
}

// Slots returns the populated slot keys in sorted order.
func (s *NavigationStore) Slots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.slots))
	for k := range s.slots {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Subscribe registers for changes published after this call. Close the
// subscription when the consumer goes away.
func (s *NavigationStore) Subscribe() (*pubsub.Subscription[NavigationChange], error) {
	sub, err := s.changes.Subscribe()
	if err == nil {
		metrics.EmitSubscribers(s.metrics, "navigation", s.changes.Len())
	}
	return sub, err
}

// Close ends every subscription.
func (s *NavigationStore) Close() {
	s.changes.Close()
}
