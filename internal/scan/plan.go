package scan

import (
	"sort"

	"github.com/kamusis/assetmap/internal/assetmap"
)

// Plan returns the events that bring previous in line with current.
//
// On a first run every current file yields an init event. Otherwise files
// not referenced by previous are added, referenced ones are changed and
// referenced files missing from current are unlinked. Unlinks come first so
// a file replacing a removed one can take over its short paths.
func Plan(current []string, previous assetmap.Index, first bool) []assetmap.Event {
	if first || previous == nil {
		out := make([]assetmap.Event, 0, len(current))
		for _, p := range current {
			out = append(out, assetmap.NewEvent(assetmap.EventInit, p))
		}
		return out
	}

	known := make(map[string]bool)
	for _, p := range previous.Paths() {
		known[p] = true
	}
	present := make(map[string]bool, len(current))
	for _, p := range current {
		present[assetmap.NormalizePath(p)] = true
	}

	var gone []string
	for p := range known {
		if !present[p] {
			gone = append(gone, p)
		}
	}
	sort.Strings(gone)

	out := make([]assetmap.Event, 0, len(gone)+len(current))
	for _, p := range gone {
		out = append(out, assetmap.NewEvent(assetmap.EventUnlink, p))
	}
	for _, p := range current {
		kind := assetmap.EventAdd
		if known[assetmap.NormalizePath(p)] {
			kind = assetmap.EventChange
		}
		out = append(out, assetmap.NewEvent(kind, p))
	}
	return out
}
