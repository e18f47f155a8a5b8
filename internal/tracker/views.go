package tracker

import "sort"

// AgendaFor returns the items to show for date, newest first.
//
// Pending one-offs float onto every date until completed; a completed one-off
// stays pinned to the date it was completed. Recurring items appear when due.
func AgendaFor(items []Item, date Date) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if IsActionable(it, date) {
			out = append(out, it)
		}
	}
	sortNewestFirst(out)
	return out
}

// Registry returns every item, newest first.
func Registry(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
