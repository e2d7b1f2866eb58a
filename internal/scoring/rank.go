package scoring

import "sort"

// RankDescending returns a copy of items sorted by score, highest first. Items with equal
// scores keep their input order.
func RankDescending[T any](items []T, score func(T) float64) []T {
	ranked := make([]T, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})

	return ranked
}

// Top returns at most n leading items. A non-positive n returns nothing.
func Top[T any](items []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
