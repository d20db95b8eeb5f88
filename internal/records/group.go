package records

import "sort"

// Group is one date bucket of GroupByDate.
type Group[T any] struct {
	Date  string
	Items []T
}

// GroupByDate buckets items by the date string returned from key and emits
// the buckets in ascending date order.  Item order inside a bucket follows
// the input.  Dates are compared as strings, which orders ISO dates
// chronologically.
func GroupByDate[T any](items []T, key func(T) string) []Group[T] {
	index := make(map[string]int)
	var groups []Group[T]

	for _, it := range items {
		k := key(it)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Date: k})
		}
		groups[i].Items = append(groups[i].Items, it)
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Date < groups[j].Date })
	return groups
}
