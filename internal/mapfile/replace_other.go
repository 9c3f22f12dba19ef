//go:build !windows

package mapfile

import "os"

// replaceFile atomically moves src over dst.
func replaceFile(src, dst string) error {
	return os.Rename(src, dst)
}
