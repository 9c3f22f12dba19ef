package assetmap

import (
	"path"
	"sort"
	"strings"

	"github.com/kamusis/assetmap/internal/extmatch"
)

// Resolver maps a file path to the logical types it belongs to.
type Resolver struct {
	rules   []Rule
	matcher extmatch.Matcher
}

// NewResolver returns a resolver over rules. Rules are copied and ordered by
// type name; a nil matcher selects extmatch.Glob.
func NewResolver(rules []Rule, m extmatch.Matcher) *Resolver {
	if m == nil {
		m = extmatch.Glob{}
	}
	cp := make([]Rule, len(rules))
	for i, r := range rules {
		cp[i] = Rule{Type: r.Type, Patterns: append([]string(nil), r.Patterns...)}
	}
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Type < cp[j].Type })
	return &Resolver{rules: cp, matcher: m}
}

// RulesFromMap converts a type → patterns mapping into rules.
func RulesFromMap(m map[string][]string) []Rule {
	rules := make([]Rule, 0, len(m))
	for t, patterns := range m {
		rules = append(rules, Rule{Type: t, Patterns: patterns})
	}
	return rules
}

// Types returns the types p belongs to. The result is never empty: when no
// rule matches, the extension without its leading dots is the type.
func (r *Resolver) Types(p string) []string {
	ext := Ext(p)
	var types []string
	for _, rule := range r.rules {
		if r.matcher.Match(ext, rule.Patterns) {
			types = append(types, rule.Type)
		}
	}
	if len(types) == 0 {
		types = append(types, strings.TrimLeft(ext, "."))
	}
	return types
}

// Ext returns the extension of p including its dot. A base name whose only
// dot is the leading one (".gitignore") has no extension.
func Ext(p string) string {
	base := path.Base(p)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i:]
}
