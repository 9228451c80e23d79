package core

import "slices"

// AdvanceFocus moves keyboard focus to the next widget that accepts it and
// reports whether one was found.
//
// Going forward, a widget's next-focus link names its successor; going
// backward, the widget linking to the current one is its predecessor.
// Widgets without a link use tree pre-order, wrapping at either end. Each
// candidate is asked AcceptFocus; traversal stops after visiting every
// widget once.
//
// It must be called with no widget locks held.
func (c *EventContext) AdvanceFocus(forward bool) bool {
	tree := c.Tree()
	if tree == nil {
		return false
	}
	order := tree.preOrder()
	if len(order) == 0 {
		return false
	}

	visited := make(map[WidgetID]bool, len(order))
	current, hasCurrent := tree.Focused()
	if hasCurrent {
		visited[current] = true
	}

	for range len(order) {
		var (
			next WidgetID
			ok   bool
		)
		if hasCurrent {
			next, ok = focusStep(tree, order, current, forward)
		} else if forward {
			next, ok = order[0], true
		} else {
			next, ok = order[len(order)-1], true
		}
		if !ok || visited[next] {
			break
		}
		visited[next] = true
		current, hasCurrent = next, true

		candidate, ok := tree.Widget(next)
		if !ok {
			continue
		}
		if c.ForOther(candidate).AcceptFocus() {
			c.FocusOn(candidate)
			return true
		}
	}
	return false
}

func focusStep(tree *Tree, order []WidgetID, from WidgetID, forward bool) (WidgetID, bool) {
	m, ok := tree.Widget(from)
	if !ok {
		return 0, false
	}
	if forward {
		if next := m.instance.NextFocus(); next != nil {
			if linked, ok := tree.Lookup(next); ok {
				return linked.id, true
			}
		}
	} else {
		for _, id := range order {
			candidate, ok := tree.Widget(id)
			if !ok || id == from {
				continue
			}
			if candidate.instance.NextFocus() == m.instance {
				return id, true
			}
		}
	}

	index := slices.Index(order, from)
	if index < 0 {
		return 0, false
	}
	if forward {
		return order[(index+1)%len(order)], true
	}
	return order[(index-1+len(order))%len(order)], true
}
