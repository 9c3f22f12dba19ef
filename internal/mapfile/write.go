// Package mapfile reads and writes asset maps as JSON files.
package mapfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/kamusis/assetmap/internal/assetmap"
)

// DefaultLockTimeout bounds how long Write waits for another writer.
const DefaultLockTimeout = 5 * time.Second

// Writer writes maps to disk. The zero value uses DefaultLockTimeout.
type Writer struct {
	LockTimeout time.Duration
}

// Write implements processor.Writer.
func (w Writer) Write(path string, idx assetmap.Index) error {
	timeout := w.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return Write(path, idx, timeout)
}

// Write serializes idx as indented JSON and atomically replaces path with it.
// Writers are serialized by an advisory lock on path + ".lock".
func Write(path string, idx assetmap.Index, lockTimeout time.Duration) error {
	if path == "" {
		return fmt.Errorf("map path is required")
	}
	if idx == nil {
		idx = assetmap.Index{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create map dir %s: %w", dir, err)
	}

	unlock, err := acquireLock(LockPath(path), lockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	b, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode map: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("cannot create temp map file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("cannot write temp map file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("cannot sync temp map file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := replaceFile(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("cannot replace map %s: %w", path, err)
	}
	return nil
}

// LockPath returns the lock file guarding writes to path.
func LockPath(path string) string {
	return path + ".lock"
}

// acquireLock obtains the write lock for the map, polling until timeout.
func acquireLock(lockPath string, timeout time.Duration) (func(), error) {
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire map lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another writer holds the map lock (lock: %s)", lockPath)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
