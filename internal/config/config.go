package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kamusis/assetmap/internal/assetmap"
	"github.com/kamusis/assetmap/internal/extmatch"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "assetmap.yaml"

// Patterns is one extension pattern or a list of them. In YAML both
// `image: png` and `image: [png, jpg]` are accepted.
type Patterns []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (p *Patterns) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var s string
		if err := n.Decode(&s); err != nil {
			return err
		}
		*p = Patterns{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := n.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	default:
		return fmt.Errorf("line %d: extension patterns must be a string or a list of strings", n.Line)
	}
}

// Match selects the extension matcher.
type Match struct {
	Mode       string `yaml:"mode,omitempty"`
	IgnoreCase bool   `yaml:"ignore_case,omitempty"`
}

// Watch configures the watch command.
type Watch struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Config is the in-memory representation of assetmap.yaml.
type Config struct {
	SourceDir      string              `yaml:"source_dir"`
	MapPath        string              `yaml:"map_path"`
	TypeExtensions map[string]Patterns `yaml:"type_extensions,omitempty"`
	Match          Match               `yaml:"match,omitempty"`
	Collision      string              `yaml:"collision,omitempty"`
	Excludes       []string            `yaml:"excludes,omitempty"`
	Watch          Watch               `yaml:"watch,omitempty"`

	// path is the file the config was loaded from; relative paths in the
	// config are resolved against its directory.
	path string
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string { return c.path }

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// ResolvePath returns the config file to use: explicit wins, then
// $ASSETMAP_CONFIG, then ./assetmap.yaml.
func ResolvePath(explicit string) (string, error) {
	p := explicit
	if p == "" {
		p = os.Getenv("ASSETMAP_CONFIG")
	}
	if p == "" {
		p = DefaultFileName
	}
	p, err := ExpandPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Abs(p)
}

// Default returns the config written by `assetmap init`.
func Default() *Config {
	return &Config{
		SourceDir: "assets",
		MapPath:   "build/assetmap.json",
		TypeExtensions: map[string]Patterns{
			"image":  {"png", "jp*g", "gif", "webp"},
			"icon":   {"svg"},
			"font":   {"woff", "woff2", "ttf", "otf"},
			"style":  {"css", "scss", "less"},
			"script": {"js", "mjs", "ts"},
		},
		Match:     Match{Mode: extmatch.ModeGlob},
		Collision: "overwrite",
		Excludes: []string{
			".DS_Store",
			"Thumbs.db",
			"*.tmp",
			"*.bak",
			"*~",
			".git",
			"node_modules",
		},
		Watch: Watch{Debounce: 200 * time.Millisecond},
	}
}

// Load reads and parses the config file at path, applies environment
// overrides and resolves relative paths against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	cfg.path = path

	baseDir := filepath.Dir(path)
	if err := cfg.applyEnv(baseDir); err != nil {
		return nil, err
	}
	if cfg.SourceDir, err = resolveAgainst(baseDir, cfg.SourceDir); err != nil {
		return nil, err
	}
	if cfg.MapPath, err = resolveAgainst(baseDir, cfg.MapPath); err != nil {
		return nil, err
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = Default().Watch.Debounce
	}
	return &cfg, nil
}

// applyEnv overrides fields from ASSETMAP_* variables (process environment
// first, then the .env file next to the config).
func (c *Config) applyEnv(baseDir string) error {
	env, err := LoadEnv(baseDir)
	if err != nil {
		return err
	}
	for key, dst := range map[string]*string{
		"ASSETMAP_SOURCE_DIR": &c.SourceDir,
		"ASSETMAP_MAP_PATH":   &c.MapPath,
		"ASSETMAP_COLLISION":  &c.Collision,
	} {
		if v := env.Get(key); v != "" {
			*dst = v
		}
	}
	return nil
}

func resolveAgainst(baseDir, p string) (string, error) {
	if p == "" {
		return "", nil
	}
	p, err := ExpandPath(p)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Join(baseDir, p), nil
}

// Validate reports configuration the rest of the tool cannot work with.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir is required")
	}
	if c.MapPath == "" {
		return fmt.Errorf("map_path is required")
	}
	if _, err := assetmap.ParseCollisionPolicy(c.Collision); err != nil {
		return err
	}
	if _, err := extmatch.New(c.Match.Mode, c.Match.IgnoreCase); err != nil {
		return err
	}
	for typ, patterns := range c.TypeExtensions {
		if len(patterns) == 0 {
			return fmt.Errorf("type %q has no extension patterns", typ)
		}
	}
	return nil
}

// Rules returns the configured type rules sorted by type name.
func (c *Config) Rules() []assetmap.Rule {
	rules := make([]assetmap.Rule, 0, len(c.TypeExtensions))
	for typ, patterns := range c.TypeExtensions {
		rules = append(rules, assetmap.Rule{Type: typ, Patterns: []string(patterns)})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Type < rules[j].Type })
	return rules
}

// NewTracker builds a resolver and tracker from the config, seeded with idx.
func (c *Config) NewTracker(idx assetmap.Index, opts ...assetmap.Option) (*assetmap.Tracker, error) {
	m, err := extmatch.New(c.Match.Mode, c.Match.IgnoreCase)
	if err != nil {
		return nil, err
	}
	policy, err := assetmap.ParseCollisionPolicy(c.Collision)
	if err != nil {
		return nil, err
	}
	base := []assetmap.Option{assetmap.WithIndex(idx), assetmap.WithCollisionPolicy(policy)}
	return assetmap.NewTracker(assetmap.NewResolver(c.Rules(), m), append(base, opts...)...), nil
}

// Save marshals cfg and writes it to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
