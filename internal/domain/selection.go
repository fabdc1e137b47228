package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Selection is the set of line item ids chosen for a checkout attempt.
// It is always a subset of the ids present in the cart; Prune restores
// that invariant after the cart changes underneath it.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// Toggle flips one id in or out of the selection.
func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectAll replaces the selection with exactly the ids of the given items.
func (s *Selection) SelectAll(items []LineItem) {
	s.ids = make(map[string]struct{}, len(items))
	for _, item := range items {
		s.ids[item.ID] = struct{}{}
	}
}

// AllSelected reports whether every item is selected. It is derived from
// the selection and the items, never tracked independently, so a
// "select all" checkbox backed by it always reflects reality.
func (s *Selection) AllSelected(items []LineItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !s.Has(item.ID) {
			return false
		}
	}
	return true
}

func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Prune drops ids that no longer exist in items. Must run before total
// computation so phantom selections are never counted.
func (s *Selection) Prune(items []LineItem) {
	present := make(map[string]struct{}, len(items))
	for _, item := range items {
		present[item.ID] = struct{}{}
	}
	for id := range s.ids {
		if _, ok := present[id]; !ok {
			delete(s.ids, id)
		}
	}
}

// IDs returns the selected ids sorted for stable iteration.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Total sums unit price times quantity over the selected items.
// Recomputed from scratch on every call; never cached.
func (s *Selection) Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if s.Has(item.ID) {
			total = total.Add(item.Subtotal())
		}
	}
	return total
}
