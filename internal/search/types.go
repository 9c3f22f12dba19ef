// Package search looks up entries of a persisted asset map by exact short
// reference or by keyword.
package search

// Entry is one short-path entry of an asset map.
type Entry struct {
	Type  string
	Short string
	Path  string
}

// Result is one matched entry.
type Result struct {
	Entry Entry
	Score float64
	Why   string
}
