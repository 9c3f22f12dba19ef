package search

import (
	"sort"
	"strings"

	"github.com/kamusis/assetmap/internal/assetmap"
)

// Entries flattens idx, sorted by type then short path.
func Entries(idx assetmap.Index) []Entry {
	out := make([]Entry, 0, idx.Len())
	for typ, tm := range idx {
		for short, full := range tm {
			out = append(out, Entry{Type: typ, Short: short, Path: full})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type == out[j].Type {
			return out[i].Short < out[j].Short
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Resolve returns the entries whose short path equals ref. An empty typ
// searches every type. ref is normalized the way the index stores paths, and
// a trailing extension matching the full path is tolerated.
func Resolve(idx assetmap.Index, ref, typ string) []Entry {
	ref = strings.TrimSuffix(assetmap.NormalizePath(ref), "/")
	var out []Entry
	for _, e := range Entries(idx) {
		if typ != "" && e.Type != typ {
			continue
		}
		if e.Short == ref || e.Path == ref {
			out = append(out, e)
		}
	}
	return out
}
