// Package navigation defines the navigation tree shared by the role catalog,
// the navigation store and the HTTP API.
package navigation

import (
	"errors"
	"fmt"
	"maps"
)

// Kind is the node type of a navigation item.
type Kind string

const (
	KindBasic       Kind = "basic"
	KindGroup       Kind = "group"
	KindCollapsible Kind = "collapsible"
	KindAside       Kind = "aside"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindBasic, KindGroup, KindCollapsible, KindAside:
		return true
	default:
		return false
	}
}

// Container reports whether items of this kind may carry children.
func (k Kind) Container() bool {
	return k == KindGroup || k == KindCollapsible || k == KindAside
}

// Item is one node of a navigation tree. Title, Subtitle, Icon, Link and Meta
// are display metadata and are never interpreted here.
type Item struct {
	ID       string            `json:"id"`
	Type     Kind              `json:"type"`
	Title    string            `json:"title,omitempty"`
	Subtitle string            `json:"subtitle,omitempty"`
	Icon     string            `json:"icon,omitempty"`
	Link     string            `json:"link,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
	Children []Item            `json:"children,omitempty"`
}

var (
	// ErrEmptyID is returned when an item has no identifier.
	ErrEmptyID = errors.New("navigation item id is empty")
	// ErrDuplicateID is returned when an identifier appears twice in one tree.
	ErrDuplicateID = errors.New("duplicate navigation item id")
	// ErrInvalidKind is returned for unknown item kinds.
	ErrInvalidKind = errors.New("invalid navigation item kind")
	// ErrLeafWithChildren is returned when a basic item has children.
	ErrLeafWithChildren = errors.New("basic navigation item cannot have children")
)

// Validate checks the tree invariants: every item has a known kind and an id
// unique across the whole tree, and only container kinds have children.
func Validate(tree []Item) error {
	seen := make(map[string]struct{})
	return validate(tree, seen)
}

func validate(items []Item, seen map[string]struct{}) error {
	for i := range items {
		it := &items[i]
		if it.ID == "" {
			return fmt.Errorf("item at index %d: %w", i, ErrEmptyID)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, it.ID)
		}
		seen[it.ID] = struct{}{}
		if !it.Type.Valid() {
			return fmt.Errorf("item %q: %w: %q", it.ID, ErrInvalidKind, it.Type)
		}
		if len(it.Children) > 0 && !it.Type.Container() {
			return fmt.Errorf("item %q: %w", it.ID, ErrLeafWithChildren)
		}
		if err := validate(it.Children, seen); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the tree. The result is never nil.
func Clone(tree []Item) []Item {
	out := make([]Item, len(tree))
	for i := range tree {
		out[i] = tree[i].Clone()
	}
	return out
}

// Clone returns a deep copy of the item and its descendants.
func (it Item) Clone() Item {
	cp := it
	if it.Meta != nil {
		cp.Meta = maps.Clone(it.Meta)
	}
	if it.Children != nil {
		cp.Children = Clone(it.Children)
	}
	return cp
}

// IDs returns the identifiers of the top-level items in order.
func IDs(tree []Item) []string {
	ids := make([]string, len(tree))
	for i := range tree {
		ids[i] = tree[i].ID
	}
	return ids
}
