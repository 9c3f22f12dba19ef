package search

import (
	"path"
	"strings"
)

// KeywordSearch searches entries by case-insensitive keyword matching over
// type, short path and full path. All query tokens must match (AND
// semantics). An exact short path or leaf name ranks above a substring hit.
func KeywordSearch(entries []Entry, query string, limit int) []Result {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []Result{}
	}

	var out []Result
	for _, e := range entries {
		short := strings.ToLower(e.Short)
		blob := strings.ToLower(strings.Join([]string{e.Type, e.Short, e.Path}, "\n"))
		ok := true
		for _, tok := range tokens {
			if !strings.Contains(blob, tok) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		q := strings.Join(tokens, " ")
		r := Result{Entry: e, Score: 1, Why: "keyword"}
		switch {
		case short == q:
			r.Score, r.Why = 3, "exact"
		case path.Base(short) == q:
			r.Score, r.Why = 2, "name"
		}
		out = append(out, r)
	}

	SortResults(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func tokenize(q string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	parts := strings.Fields(q)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
