package assetmap

import (
	"errors"
	"fmt"
)

// ErrMalformedShortPaths indicates the short-path function returned an
// unusable candidate list for a type.
var ErrMalformedShortPaths = errors.New("malformed short-path result")

// ErrInvalidPath indicates a path that names no file: empty or the source
// root itself.
var ErrInvalidPath = errors.New("invalid file path")

// ErrShortPathCollision indicates a short path is already held by another file.
var ErrShortPathCollision = errors.New("short path already taken")

// CollisionError describes a rejected claim on a short path.
type CollisionError struct {
	Type    string
	Short   string
	Holder  string
	Claimer string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("short path %q of type %q is held by %q, cannot assign %q",
		e.Short, e.Type, e.Holder, e.Claimer)
}

// Unwrap lets errors.Is match ErrShortPathCollision.
func (e *CollisionError) Unwrap() error { return ErrShortPathCollision }
