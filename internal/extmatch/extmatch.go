// Package extmatch decides whether a file extension matches a set of
// configured extension patterns.
package extmatch

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Matcher reports whether ext matches any of patterns.
//
// Implementations must be pure: the same inputs always give the same answer.
type Matcher interface {
	Match(ext string, patterns []string) bool
}

// MatcherFunc adapts a plain function to Matcher.
type MatcherFunc func(ext string, patterns []string) bool

// Match calls f.
func (f MatcherFunc) Match(ext string, patterns []string) bool { return f(ext, patterns) }

// Mode names accepted by New.
const (
	ModeExact  = "exact"
	ModeGlob   = "glob"
	ModeRegexp = "regexp"
)

// New returns the matcher registered under mode. An empty mode selects glob.
func New(mode string, ignoreCase bool) (Matcher, error) {
	var m Matcher
	switch mode {
	case "", ModeGlob:
		m = Glob{}
	case ModeExact:
		m = Exact{}
	case ModeRegexp:
		m = NewRegexp()
	default:
		return nil, fmt.Errorf("unsupported match mode: %s", mode)
	}
	if ignoreCase {
		m = Fold(m)
	}
	return m, nil
}

// trimDots strips every leading dot so "png", ".png" and "..png" compare equal.
func trimDots(s string) string {
	return strings.TrimLeft(s, ".")
}

// Exact matches when the extension equals a pattern, ignoring leading dots.
type Exact struct{}

func (Exact) Match(ext string, patterns []string) bool {
	e := trimDots(ext)
	for _, p := range patterns {
		if trimDots(p) == e {
			return true
		}
	}
	return false
}

// Glob matches shell patterns (path.Match syntax) against the extension.
// A malformed pattern never matches.
type Glob struct{}

func (Glob) Match(ext string, patterns []string) bool {
	e := trimDots(ext)
	for _, p := range patterns {
		p = trimDots(p)
		if p == e {
			return true
		}
		if ok, err := path.Match(p, e); err == nil && ok {
			return true
		}
	}
	return false
}

// Regexp treats patterns written as /expr/ as regular expressions over the
// extension without its leading dot; any other pattern is compared exactly.
// Compiled expressions are cached.
type Regexp struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

// NewRegexp returns an empty regexp matcher.
func NewRegexp() *Regexp {
	return &Regexp{cache: make(map[string]*regexp.Regexp)}
}

func (r *Regexp) Match(ext string, patterns []string) bool {
	e := trimDots(ext)
	for _, p := range patterns {
		if len(p) >= 2 && strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/") {
			re := r.compile(p[1 : len(p)-1])
			if re != nil && re.MatchString(e) {
				return true
			}
			continue
		}
		if trimDots(p) == e {
			return true
		}
	}
	return false
}

func (r *Regexp) compile(expr string) *regexp.Regexp {
	r.mu.Lock()
	defer r.mu.Unlock()
	if re, ok := r.cache[expr]; ok {
		return re
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		re = nil
	}
	r.cache[expr] = re
	return re
}

// Fold wraps m so extension and patterns are compared after Unicode case folding.
func Fold(m Matcher) Matcher {
	return MatcherFunc(func(ext string, patterns []string) bool {
		c := cases.Fold()
		folded := make([]string, len(patterns))
		for i, p := range patterns {
			folded[i] = c.String(p)
		}
		return m.Match(c.String(ext), folded)
	})
}
