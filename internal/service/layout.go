package service

import (
	"context"
	"log/slog"

	domainauth "github.com/target/dash-console/internal/domain/auth"
	"github.com/target/dash-console/internal/ports"
)

// LayoutCoordinatorOptions groups dependencies for LayoutCoordinator.
type LayoutCoordinatorOptions struct {
	Auth    *AuthService
	Store   *NavigationStore
	Panels  *PanelRegistry
	Roles   ports.RoleMapper
	Catalog ports.NavigationCatalog
	Logger  *slog.Logger
}

// LayoutCoordinator keeps the main and production-report navigation slots in
// step with the current user.
type LayoutCoordinator struct {
	auth    *AuthService
	store   *NavigationStore
	panels  *PanelRegistry
	roles   ports.RoleMapper
	catalog ports.NavigationCatalog
	logger  *slog.Logger
}

// NewLayoutCoordinator constructs a LayoutCoordinator.
func NewLayoutCoordinator(opts LayoutCoordinatorOptions) *LayoutCoordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LayoutCoordinator{
		auth:    opts.Auth,
		store:   opts.Store,
		panels:  opts.Panels,
		roles:   opts.Roles,
		catalog: opts.Catalog,
		logger:  logger.With("component", "layout"),
	}
}

// Sync applies one user value: resolve and store the trees for a user, or
// clear both slots and close the report panel for nil.
func (c *LayoutCoordinator) Sync(ctx context.Context, user *domainauth.CurrentUser) error {
	if user == nil {
		for _, slot := range []string{SlotMain, SlotReportProd} {
			if c.store.Has(slot) {
				c.store.Delete(ctx, slot)
			}
		}
		if p, ok := c.panels.Get(SlotReportProd); ok {
			p.Close()
		}
		return nil
	}

	role, sub := c.roles.Map(user.Permissions)
	if err := c.store.Store(ctx, SlotMain, c.catalog.Resolve(role, sub)); err != nil {
		return err
	}

	child := c.catalog.ResolveChild(role, sub)
	if len(child) == 0 {
		if c.store.Has(SlotReportProd) {
			c.store.Delete(ctx, SlotReportProd)
		}
		return nil
	}
	if err := c.store.Store(ctx, SlotReportProd, child); err != nil {
		return err
	}
	c.logger.DebugContext(ctx, "layout synced", "user_id", user.ID, "role", role, "sub_role", sub)
	return nil
}

// Run follows the current-user feed until ctx is done.
func (c *LayoutCoordinator) Run(ctx context.Context) error {
	sub, err := c.auth.SubscribeUser()
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case user, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := c.Sync(ctx, user); err != nil {
				c.logger.ErrorContext(ctx, "layout sync failed", "error", err)
			}
		}
	}
}
