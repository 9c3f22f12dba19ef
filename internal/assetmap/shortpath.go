package assetmap

import (
	"path"
	"strings"
)

// ShortPathFunc derives the short paths a file is reachable under.
type ShortPathFunc func(p string) []string

// ShortPaths returns the short paths for p: the path without its extension,
// followed by the parent directory when the file is named after it
// ("widgets/button/button.svg" also answers to "widgets/button").
func ShortPaths(p string) []string {
	ext := Ext(p)
	base := strings.TrimSuffix(path.Base(p), ext)
	short := path.Join(path.Dir(p), base)

	out := []string{short}
	parts := strings.Split(short, "/")
	if n := len(parts); n >= 2 && parts[n-1] == parts[n-2] {
		out = append(out, strings.Join(parts[:n-1], "/"))
	}
	return out
}
