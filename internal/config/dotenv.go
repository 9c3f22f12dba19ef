package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Env looks up ASSETMAP_* overrides: the process environment wins, then the
// .env file next to the config. The file is read once.
type Env struct {
	path string
	file map[string]string
}

// DotEnvPath returns the dotenv file that sits next to the config in dir.
func DotEnvPath(dir string) string {
	return filepath.Join(dir, ".env")
}

// LoadEnv reads dir/.env, if present. A missing file is not an error.
func LoadEnv(dir string) (*Env, error) {
	e := &Env{path: DotEnvPath(dir), file: map[string]string{}}
	f, err := os.Open(e.path)
	if os.IsNotExist(err) {
		return e, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open dotenv file %s: %w", e.path, err)
	}
	defer f.Close()

	if e.file, err = parseDotEnv(f); err != nil {
		return nil, fmt.Errorf("cannot read dotenv file %s: %w", e.path, err)
	}
	return e, nil
}

// Get returns the effective value of key, or "" when unset everywhere.
func (e *Env) Get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return e.file[key]
}

// File returns the values read from the .env file alone.
func (e *Env) File() map[string]string { return e.file }

// parseDotEnv reads KEY=VALUE lines. Blank lines, # comments and lines
// without a key are skipped; an "export " prefix is allowed and one pair of
// matching quotes around the value is removed.
func parseDotEnv(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		k, v, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		out[k] = unquote(strings.TrimSpace(v))
	}
	return out, sc.Err()
}

func unquote(v string) string {
	if n := len(v); n >= 2 && (v[0] == '"' || v[0] == '\'') && v[n-1] == v[0] {
		return v[1 : n-1]
	}
	return v
}
