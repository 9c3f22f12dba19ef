package search

import "sort"

// SortResults sorts results by score (descending), then by type and short
// path (ascending).
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Entry.Type != b.Entry.Type {
			return a.Entry.Type < b.Entry.Type
		}
		return a.Entry.Short < b.Entry.Short
	})
}
