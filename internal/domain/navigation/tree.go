package navigation

// Parent describes where an item lives. Item is nil when the match is a
// top-level entry, in which case Children is the root sequence itself.
type Parent struct {
	Item     *Item
	Children []Item
}

// IsRoot reports whether the match was found at the top level.
func (p Parent) IsRoot() bool { return p.Item == nil }

// FindByID searches the tree depth-first and returns a copy of the first item
// with the given id in document order.
func FindByID(id string, tree []Item) (Item, bool) {
	if it := findByID(id, tree); it != nil {
		return it.Clone(), true
	}
	return Item{}, false
}

func findByID(id string, items []Item) *Item {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
		if found := findByID(id, items[i].Children); found != nil {
			return found
		}
	}
	return nil
}

// FindParent searches the tree depth-first and returns the immediate parent
// of the first item with the given id.
func FindParent(id string, tree []Item) (Parent, bool) {
	for i := range tree {
		if tree[i].ID == id {
			return Parent{Children: tree}, true
		}
	}
	return findParent(id, tree)
}

func findParent(id string, items []Item) (Parent, bool) {
	for i := range items {
		parent := &items[i]
		for j := range parent.Children {
			if parent.Children[j].ID == id {
				return Parent{Item: parent, Children: parent.Children}, true
			}
		}
		if p, ok := findParent(id, parent.Children); ok {
			return p, true
		}
	}
	return Parent{}, false
}

// Flatten returns the basic (leaf) items of the tree in depth-first,
// left-to-right order. Group, collapsible and aside wrappers are skipped but
// their children are visited.
func Flatten(tree []Item) []Item {
	out := make([]Item, 0, len(tree))
	return flatten(tree, out)
}

func flatten(items []Item, out []Item) []Item {
	for i := range items {
		if items[i].Type == KindBasic {
			out = append(out, items[i].Clone())
			continue
		}
		out = flatten(items[i].Children, out)
	}
	return out
}
