package maps

import "sort"

func FromKeys[L ~[]K, K comparable](l L) map[K]struct{} {
	res := make(map[K]struct{}, len(l))
	for _, key := range l {
		res[key] = struct{}{}
	}
	return res
}

func Keys[M ~map[K]V, K comparable, V any](m M) []K {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}

// SortedKeys returns the keys of a string-keyed map in increasing
// order, for deterministic iteration.
func SortedKeys[M ~map[string]V, V any](m M) []string {
	keys := Keys(m)
	sort.Strings(keys)
	return keys
}
