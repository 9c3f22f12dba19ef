package assetmap

import "sort"

// Collision is a short path that more than one file would claim.
type Collision struct {
	Type  string
	Short string
	Paths []string
}

// FindCollisions reports, for the given file set, every short path claimed by
// more than one file. Results are sorted by type then short path; Paths is
// sorted.
func FindCollisions(r *Resolver, paths []string) []Collision {
	claims := make(map[string]map[string][]string)
	for _, p := range paths {
		for _, typ := range r.Types(p) {
			byShort, ok := claims[typ]
			if !ok {
				byShort = make(map[string][]string)
				claims[typ] = byShort
			}
			for _, sp := range ShortPaths(p) {
				byShort[sp] = appendUnique(byShort[sp], p)
			}
		}
	}

	var out []Collision
	for typ, byShort := range claims {
		for sp, holders := range byShort {
			if len(holders) < 2 {
				continue
			}
			sort.Strings(holders)
			out = append(out, Collision{Type: typ, Short: sp, Paths: holders})
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

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
