package assetmap

import (
	"errors"
	"fmt"
	"log/slog"
)

// CollisionPolicy decides what happens when a short path is already held by
// a different file.
type CollisionPolicy int

const (
	// CollisionOverwrite reassigns the short path to the newest file.
	CollisionOverwrite CollisionPolicy = iota
	// CollisionKeepFirst leaves the existing assignment in place.
	CollisionKeepFirst
	// CollisionReject fails the type with a *CollisionError.
	CollisionReject
)

// String returns the configuration name of the policy.
func (p CollisionPolicy) String() string {
	switch p {
	case CollisionOverwrite:
		return "overwrite"
	case CollisionKeepFirst:
		return "keep-first"
	case CollisionReject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseCollisionPolicy maps a configuration name to a policy. An empty name
// selects CollisionOverwrite.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch s {
	case "", "overwrite":
		return CollisionOverwrite, nil
	case "keep-first":
		return CollisionKeepFirst, nil
	case "reject":
		return CollisionReject, nil
	default:
		return 0, fmt.Errorf("unknown collision policy %q (want overwrite, keep-first or reject)", s)
	}
}

// Tracker owns an Index and keeps it in step with file events.
//
// A Tracker is not safe for concurrent use; callers serialize Track and
// Untrack.
type Tracker struct {
	resolver *Resolver
	shortFn  ShortPathFunc
	policy   CollisionPolicy
	logger   *slog.Logger
	index    Index
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithIndex seeds the tracker with a previously persisted index. The index is
// copied.
func WithIndex(idx Index) Option {
	return func(t *Tracker) {
		if idx != nil {
			t.index = idx.Clone()
		}
	}
}

// WithCollisionPolicy sets how competing claims on a short path are settled.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(t *Tracker) { t.policy = p }
}

// WithShortPathFunc replaces ShortPaths as the short-path derivation.
func WithShortPathFunc(fn ShortPathFunc) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.shortFn = fn
		}
	}
}

// WithLogger sets the logger. If unset, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTracker returns a tracker with an empty index unless WithIndex is given.
func NewTracker(r *Resolver, opts ...Option) *Tracker {
	t := &Tracker{
		resolver: r,
		shortFn:  ShortPaths,
		policy:   CollisionOverwrite,
		logger:   slog.Default(),
		index:    Index{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Resolver returns the tracker's type resolver.
func (t *Tracker) Resolver() *Resolver { return t.resolver }

// ShortPaths returns the candidate short paths of p for each of its types.
func (t *Tracker) ShortPaths(p string) map[string][]string {
	out := make(map[string][]string)
	for _, typ := range t.resolver.Types(p) {
		out[typ] = t.shortFn(p)
	}
	return out
}

// Track registers every short path of p under each of p's types.
//
// Types are updated independently: when one type fails, types already
// written in the same call keep their new entries and the error is returned.
func (t *Tracker) Track(p string) error {
	if p == "" || p == "." {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	var errs []error
	for _, typ := range t.resolver.Types(p) {
		if err := t.trackType(typ, p, t.shortFn(p)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Tracker) trackType(typ, p string, shorts []string) error {
	if len(shorts) == 0 {
		return fmt.Errorf("%w: no short paths for %q under type %q", ErrMalformedShortPaths, p, typ)
	}
	for _, sp := range shorts {
		if sp == "" {
			return fmt.Errorf("%w: empty short path for %q under type %q", ErrMalformedShortPaths, p, typ)
		}
	}

	tm := t.index[typ]
	if t.policy == CollisionReject {
		for _, sp := range shorts {
			if holder, taken := tm[sp]; taken && holder != p {
				return &CollisionError{Type: typ, Short: sp, Holder: holder, Claimer: p}
			}
		}
	}
	if tm == nil {
		tm = TypeMap{}
		t.index[typ] = tm
	}

	for _, sp := range shorts {
		holder, taken := tm[sp]
		if taken && holder != p {
			if t.policy == CollisionKeepFirst {
				t.logger.Warn("short path already taken, keeping first",
					slog.String("type", typ), slog.String("short", sp),
					slog.String("holder", holder), slog.String("path", p))
				continue
			}
			t.logger.Debug("short path reassigned",
				slog.String("type", typ), slog.String("short", sp),
				slog.String("from", holder), slog.String("to", p))
		}
		tm[sp] = p
	}
	return nil
}

// Untrack removes every entry pointing at p, in every type. Type maps left
// empty are dropped. Untracking an unknown path is a no-op.
func (t *Tracker) Untrack(p string) {
	for typ, tm := range t.index {
		for sp, full := range tm {
			if full == p {
				delete(tm, sp)
			}
		}
		if len(tm) == 0 {
			delete(t.index, typ)
		}
	}
}

// Lookup returns the full path registered for short under typ.
func (t *Tracker) Lookup(typ, short string) (string, bool) {
	return t.index.Lookup(typ, short)
}

// Snapshot returns a copy of the current index.
func (t *Tracker) Snapshot() Index {
	return t.index.Clone()
}
