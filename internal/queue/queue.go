// Package queue builds prioritized review queues from MemoryState
// snapshots. Everything here is pure selection and ordering over an
// in-memory snapshot taken once per request; slight staleness is fine.
package queue

import (
	"sort"
	"time"

	"github.com/dotcommander/recall/internal/models"
)

// Item pairs an item identifier with its MemoryState snapshot.
type Item struct {
	ItemID string             `json:"item_id"`
	State  models.MemoryState `json:"state"`
}

// Options controls queue construction. Zero values: no limits, default
// priority order, new items excluded.
type Options struct {
	Now        time.Time
	IncludeNew bool
	// Limit caps the total queue length; zero means unlimited.
	Limit int
	// NewLimit caps the number of New items separately; zero means
	// unlimited (when IncludeNew is set).
	NewLimit int
	// Order is the state priority order; nil uses DefaultQueueOrder.
	Order []models.State
	// Pinned is the set of item IDs dispatched but not yet answered. They
	// are kept at the front (deduped) so a reconnect neither skips nor
	// duplicates in-flight items.
	Pinned []string
}

// FilterDue returns the items due at now. New items (no due date) are
// included only when includeNew is set.
func FilterDue(items []Item, now time.Time, includeNew bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.State.IsDue(now) {
			out = append(out, it)
			continue
		}
		if includeNew && it.State.State == models.StateNew {
			out = append(out, it)
		}
	}
	return out
}

// SortByPriority stable-sorts items by state priority order, with earlier
// due dates first inside each state bucket. Unlisted states sort last.
func SortByPriority(items []Item, order []models.State) []Item {
	if order == nil {
		order = models.DefaultQueueOrder()
	}
	rank := make(map[models.State]int, len(order))
	for i, s := range order {
		rank[s] = i
	}
	unranked := len(order)

	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		ri, ok := rank[out[i].State.State]
		if !ok {
			ri = unranked
		}
		rj, ok := rank[out[j].State.State]
		if !ok {
			rj = unranked
		}
		if ri != rj {
			return ri < rj
		}
		return dueBefore(out[i].State.DueAt, out[j].State.DueAt)
	})
	return out
}

func dueBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

// Build filters, caps New items separately, sorts, truncates, and pins
// in-flight items at the front.
func Build(items []Item, opts Options) []Item {
	due := FilterDue(items, opts.Now, opts.IncludeNew)

	if opts.IncludeNew && opts.NewLimit > 0 {
		due = capNew(due, opts.NewLimit)
	}

	sorted := SortByPriority(due, opts.Order)
	sorted = pinFront(sorted, items, opts.Pinned)

	if opts.Limit > 0 && len(sorted) > opts.Limit {
		sorted = sorted[:opts.Limit]
	}
	return sorted
}

// capNew drops New items beyond the cap, preserving order.
func capNew(items []Item, newLimit int) []Item {
	out := make([]Item, 0, len(items))
	seen := 0
	for _, it := range items {
		if it.State.State == models.StateNew {
			if seen >= newLimit {
				continue
			}
			seen++
		}
		out = append(out, it)
	}
	return out
}

// pinFront moves pinned item IDs to the head of the queue in pin order,
// deduplicating against the sorted tail. Pinned items absent from the
// snapshot queue are looked up in the full snapshot so an in-flight item
// that just stopped being due is still re-dispatched exactly once.
func pinFront(sorted, snapshot []Item, pinned []string) []Item {
	if len(pinned) == 0 {
		return sorted
	}

	pinSet := make(map[string]bool, len(pinned))
	for _, id := range pinned {
		pinSet[id] = true
	}

	byID := make(map[string]Item, len(snapshot))
	for _, it := range snapshot {
		byID[it.ItemID] = it
	}

	head := make([]Item, 0, len(pinned))
	added := make(map[string]bool, len(pinned))
	for _, id := range pinned {
		if added[id] {
			continue
		}
		if it, ok := byID[id]; ok {
			head = append(head, it)
			added[id] = true
		}
	}

	for _, it := range sorted {
		if pinSet[it.ItemID] {
			continue
		}
		head = append(head, it)
	}
	return head
}
