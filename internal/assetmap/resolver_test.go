package assetmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kamusis/assetmap/internal/extmatch"
)

func TestExt(t *testing.T) {
	cases := map[string]string{
		"a/b.png":         ".png",
		"a/b.tar.gz":      ".gz",
		"a/b":             "",
		"a/.gitignore":    "",
		"a/b.":            ".",
		"a.d/b":           "",
		"widgets/btn.svg": ".svg",
	}
	for in, want := range cases {
		assert.Equal(t, want, Ext(in), "Ext(%q)", in)
	}
}

func TestResolver_Types(t *testing.T) {
	r := NewResolver(RulesFromMap(map[string][]string{
		"raster": {"png"},
		"image":  {"png", "jp*g"},
		"vector": {"svg"},
	}), extmatch.Glob{})

	assert.Equal(t, []string{"image", "raster"}, r.Types("a/b.png"))
	assert.Equal(t, []string{"image"}, r.Types("a/b.jpeg"))
	assert.Equal(t, []string{"vector"}, r.Types("icons/x.svg"))
	assert.Equal(t, []string{"woff2"}, r.Types("fonts/x.woff2"))
	assert.Equal(t, []string{""}, r.Types("Makefile"))
}

func TestResolver_NilMatcherDefaultsToGlob(t *testing.T) {
	r := NewResolver([]Rule{{Type: "image", Patterns: []string{"*"}}}, nil)
	assert.Equal(t, []string{"image"}, r.Types("a.bmp"))
}

func TestResolver_RulesAreCopied(t *testing.T) {
	rules := []Rule{{Type: "image", Patterns: []string{"png"}}}
	r := NewResolver(rules, extmatch.Exact{})
	rules[0].Patterns[0] = "gif"

	assert.Equal(t, []string{"image"}, r.Types("a.png"))
}

func TestShortPaths(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"widgets/button/button.svg", []string{"widgets/button/button", "widgets/button"}},
		{"widgets/badge.svg", []string{"widgets/badge"}},
		{"button/button.svg", []string{"button/button", "button"}},
		{"button.svg", []string{"button"}},
		{"a/b/c.d.png", []string{"a/b/c.d"}},
		{"a/c.d/c.d.png", []string{"a/c.d/c.d", "a/c.d"}},
		{"a/b/B.png", []string{"a/b/B"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ShortPaths(c.in), "ShortPaths(%q)", c.in)
	}
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "a/b.png", NormalizePath("./a//b.png"))
	assert.Equal(t, "a/b.png", NormalizePath("a/x/../b.png"))
	assert.Equal(t, "", NormalizePath(""))
	// "e" followed by a combining acute accent composes to U+00E9.
	assert.Equal(t, "caf\u00e9.png", NormalizePath("cafe\u0301.png"))
}

func TestParseEventKind(t *testing.T) {
	for _, k := range []EventKind{EventInit, EventAdd, EventChange, EventUnlink} {
		assert.Equal(t, k, ParseEventKind(k.String()))
	}
	assert.Equal(t, EventUnknown, ParseEventKind("addDir"))
}

func TestFindCollisions(t *testing.T) {
	r := NewResolver(RulesFromMap(map[string][]string{"image": {"png", "jpg"}}), nil)

	got := FindCollisions(r, []string{"a/b.png", "a/b.jpg", "a/c.png", "x/x.png", "x.jpg"})

	assert.Equal(t, []Collision{
		{Type: "image", Short: "a/b", Paths: []string{"a/b.jpg", "a/b.png"}},
		{Type: "image", Short: "x", Paths: []string{"x.jpg", "x/x.png"}},
	}, got)
}

func TestIndexHelpers(t *testing.T) {
	idx := Index{
		"image": {"a/b": "a/b.png", "a": "a/a.png"},
		"icon":  {"i": "i.svg", "a": "a/a.png"},
	}
	assert.Equal(t, []string{"icon", "image"}, idx.Types())
	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, []string{"a/a.png", "a/b.png", "i.svg"}, idx.Paths())

	full, ok := idx.Lookup("icon", "i")
	assert.True(t, ok)
	assert.Equal(t, "i.svg", full)
	_, ok = idx.Lookup("font", "i")
	assert.False(t, ok)
}
