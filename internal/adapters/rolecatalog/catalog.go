// Package rolecatalog resolves navigation trees and menus from static
// role and sub-role tables.
package rolecatalog

import (
	"log/slog"
	"strings"

	domainauth "github.com/target/dash-console/internal/domain/auth"
	nav "github.com/target/dash-console/internal/domain/navigation"
	"github.com/target/dash-console/internal/ports"
)

var _ ports.NavigationCatalog = (*Catalog)(nil)

// Catalog is a read-only lookup over Tables. Every result is a fresh deep copy.
type Catalog struct {
	tables    Tables
	normalize func(string) string
	logger    *slog.Logger
}

// Options configure a Catalog.
type Options struct {
	// Tables overrides the built-in tables (tests).
	Tables *Tables
	// Normalize maps a permission code onto a menu key (default: trim and lowercase).
	Normalize func(string) string
	Logger    *slog.Logger
}

// New constructs a Catalog.
func New(opts Options) *Catalog {
	tables := DefaultTables()
	if opts.Tables != nil {
		tables = *opts.Tables
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	normalize := opts.Normalize
	if normalize == nil {
		normalize = func(code string) string { return strings.ToLower(strings.TrimSpace(code)) }
	}
	return &Catalog{tables: tables, normalize: normalize, logger: logger}
}

// Resolve returns the navigation tree for role. A sub-role with its own table
// replaces the base tree entirely. Unknown roles yield an empty tree.
func (c *Catalog) Resolve(role domainauth.Role, sub domainauth.SubRole) []nav.Item {
	tree := c.tables.Roles[role]
	source := "role"
	if override, found := c.tables.SubRoles[sub]; found && sub != domainauth.SubRoleNone {
		tree = override
		source = "sub_role"
	}
	return c.checked(tree, slog.String("role", string(role)), slog.String("sub_role", string(sub)),
		slog.String("source", source))
}

// ResolveChild returns the secondary production-report menu. Only the
// supervisor and jefe sub-roles, and the superadmin role, are entitled to it.
func (c *Catalog) ResolveChild(role domainauth.Role, sub domainauth.SubRole) []nav.Item {
	if !childAllowed(role, sub) {
		return []nav.Item{}
	}
	return c.checked(c.tables.Child, slog.String("role", string(role)), slog.String("sub_role", string(sub)),
		slog.String("source", "child"))
}

func childAllowed(role domainauth.Role, sub domainauth.SubRole) bool {
	switch sub {
	case domainauth.SubRoleSupervisor, domainauth.SubRoleJefe:
		return true
	}
	return role == domainauth.RoleSuperAdmin
}

// Menu returns the quick menu for a permission code (case-insensitive).
func (c *Catalog) Menu(code string) []nav.Item {
	menu, ok := c.tables.Menus[c.normalize(code)]
	if !ok {
		return []nav.Item{}
	}
	return c.checked(menu, slog.String("menu", code))
}

func (c *Catalog) checked(tree []nav.Item, attrs ...any) []nav.Item {
	if err := nav.Validate(tree); err != nil {
		c.logger.Error("invalid navigation table; using empty tree", append(attrs, "error", err)...)
		return []nav.Item{}
	}
	return nav.Clone(tree)
}
