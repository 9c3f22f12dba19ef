package mapfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kamusis/assetmap/internal/assetmap"
)

// Load reads a map written by Write. A missing file yields an empty index.
func Load(path string) (assetmap.Index, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return assetmap.Index{}, nil
		}
		return nil, fmt.Errorf("cannot read map %s: %w", path, err)
	}
	var idx assetmap.Index
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("invalid map JSON %s: %w", path, err)
	}
	if idx == nil {
		idx = assetmap.Index{}
	}
	for typ, tm := range idx {
		if tm == nil {
			idx[typ] = assetmap.TypeMap{}
		}
	}
	return idx, nil
}

// Exists reports whether a map file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
