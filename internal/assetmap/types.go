package assetmap

import "sort"

// Rule maps a logical type to the extension patterns that select it.
type Rule struct {
	Type     string
	Patterns []string
}

// TypeMap maps a short path to the full relative path backing it.
type TypeMap map[string]string

// Index maps a type name to its TypeMap.
type Index map[string]TypeMap

// Lookup returns the full path registered for short under typ.
func (idx Index) Lookup(typ, short string) (string, bool) {
	tm, ok := idx[typ]
	if !ok {
		return "", false
	}
	full, ok := tm[short]
	return full, ok
}

// Types returns the type names in sorted order.
func (idx Index) Types() []string {
	out := make([]string, 0, len(idx))
	for t := range idx {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of short-path entries across all types.
func (idx Index) Len() int {
	n := 0
	for _, tm := range idx {
		n += len(tm)
	}
	return n
}

// Paths returns the distinct full paths referenced by the index, sorted.
func (idx Index) Paths() []string {
	seen := make(map[string]struct{})
	for _, tm := range idx {
		for _, full := range tm {
			seen[full] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of idx.
func (idx Index) Clone() Index {
	out := make(Index, len(idx))
	for t, tm := range idx {
		cp := make(TypeMap, len(tm))
		for k, v := range tm {
			cp[k] = v
		}
		out[t] = cp
	}
	return out
}
