//go:build windows

package mapfile

import (
	"time"

	"golang.org/x/sys/windows"
)

// replaceFile moves src over dst.
//
// Indexers and editors watching the map can hold a handle briefly; the move
// is retried for a short period before giving up.
func replaceFile(src, dst string) error {
	from, err := windows.UTF16PtrFromString(src)
	if err != nil {
		return err
	}
	to, err := windows.UTF16PtrFromString(dst)
	if err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 10; i++ {
		lastErr = windows.MoveFileEx(from, to, windows.MOVEFILE_REPLACE_EXISTING|windows.MOVEFILE_WRITE_THROUGH)
		if lastErr == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return lastErr
}
