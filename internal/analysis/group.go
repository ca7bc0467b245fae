package analysis

import "sort"

// Group is the set of items sharing one key.
type Group[T any] struct {
	Key   string
	Items []T
}

// GroupBy partitions items by key. Groups are sorted by key; items keep
// their input order within a group.
func GroupBy[T any](items []T, key func(T) string) []Group[T] {
	idx := map[string]int{}
	var out []Group[T]
	for _, it := range items {
		k := key(it)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Group[T]{Key: k})
		}
		out[i].Items = append(out[i].Items, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// GroupSummary is a Summary for one group.
type GroupSummary struct {
	Key string
	Summary
}

// DescribeBy groups items and describes value over each group.
func DescribeBy[T any](items []T, key func(T) string, value func(T) float64, alpha float64) []GroupSummary {
	groups := GroupBy(items, key)
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		vals := make([]float64, len(g.Items))
		for i, it := range g.Items {
			vals[i] = value(it)
		}
		out = append(out, GroupSummary{Key: g.Key, Summary: Describe(vals, alpha)})
	}
	return out
}
