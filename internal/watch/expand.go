package watch

import (
	"sort"
	"strings"

	"github.com/kamusis/assetmap/internal/assetmap"
)

// ExpandUnlinks replaces an unlink of a directory with unlinks of every
// known file below it. The watcher only sees the directory itself when a
// whole subtree is moved or deleted at once. known holds the tracked paths.
func ExpandUnlinks(events []assetmap.Event, known []string) []assetmap.Event {
	tracked := make(map[string]bool, len(known))
	for _, p := range known {
		tracked[p] = true
	}

	out := make([]assetmap.Event, 0, len(events))
	for _, ev := range events {
		if ev.Kind != assetmap.EventUnlink || tracked[ev.Path] {
			out = append(out, ev)
			continue
		}
		prefix := ev.Path + "/"
		var below []string
		for _, p := range known {
			if strings.HasPrefix(p, prefix) {
				below = append(below, p)
			}
		}
		if len(below) == 0 {
			out = append(out, ev)
			continue
		}
		sort.Strings(below)
		for _, p := range below {
			out = append(out, assetmap.Event{Kind: assetmap.EventUnlink, Path: p})
		}
	}
	return out
}
