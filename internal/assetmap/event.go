package assetmap

import (
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// EventKind is the lifecycle event a file source reports.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventInit
	EventAdd
	EventChange
	EventUnlink
)

// String returns the lower-case event name.
func (k EventKind) String() string {
	switch k {
	case EventInit:
		return "init"
	case EventAdd:
		return "add"
	case EventChange:
		return "change"
	case EventUnlink:
		return "unlink"
	default:
		return "unknown"
	}
}

// ParseEventKind maps an event name to its kind. Unrecognized names yield
// EventUnknown, which processors ignore.
func ParseEventKind(s string) EventKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "init":
		return EventInit
	case "add":
		return EventAdd
	case "change":
		return EventChange
	case "unlink":
		return EventUnlink
	default:
		return EventUnknown
	}
}

// Event is one file lifecycle event.
type Event struct {
	Kind EventKind
	Path string
}

// NewEvent builds an Event with p normalized by NormalizePath.
func NewEvent(kind EventKind, p string) Event {
	return Event{Kind: kind, Path: NormalizePath(p)}
}

// NormalizePath converts p to a clean, slash-separated, NFC-normalized
// relative path. Index keys and values are always in this form.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	p = filepath.ToSlash(p)
	p = norm.NFC.String(p)
	return path.Clean(p)
}
