// Package processor applies file lifecycle events to an asset map and
// persists the result once every event of a run has settled.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kamusis/assetmap/internal/assetmap"
)

// Writer persists a completed index.
type Writer interface {
	Write(path string, idx assetmap.Index) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(path string, idx assetmap.Index) error

// Write calls f.
func (f WriterFunc) Write(path string, idx assetmap.Index) error { return f(path, idx) }

// Summary counts what a run did.
type Summary struct {
	Tracked   int
	Untracked int
	Ignored   int
	Failed    int
	Written   bool
}

// Processor dispatches events to a tracker and writes the map after each run.
type Processor struct {
	tracker *assetmap.Tracker
	writer  Writer
	mapPath string
	logger  *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. If unset, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a processor that writes tracker snapshots to mapPath through w.
// A nil writer disables persistence.
func New(t *assetmap.Tracker, w Writer, mapPath string, opts ...Option) *Processor {
	p := &Processor{
		tracker: t,
		writer:  w,
		mapPath: mapPath,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tracker returns the tracker events are applied to.
func (p *Processor) Tracker() *assetmap.Tracker { return p.tracker }

// OnInit handles a file found during the initial scan.
func (p *Processor) OnInit(path string) error { return p.tracker.Track(path) }

// OnAdd handles a newly created file.
func (p *Processor) OnAdd(path string) error { return p.tracker.Track(path) }

// OnChange handles a modified file.
func (p *Processor) OnChange(path string) error { return p.tracker.Track(path) }

// OnUnlink handles a removed file.
func (p *Processor) OnUnlink(path string) error {
	p.tracker.Untrack(path)
	return nil
}

// Handle dispatches ev to its hook. Unknown kinds are ignored and reported
// as not handled.
func (p *Processor) Handle(ev assetmap.Event) (handled bool, err error) {
	switch ev.Kind {
	case assetmap.EventInit:
		return true, p.OnInit(ev.Path)
	case assetmap.EventAdd:
		return true, p.OnAdd(ev.Path)
	case assetmap.EventChange:
		return true, p.OnChange(ev.Path)
	case assetmap.EventUnlink:
		return true, p.OnUnlink(ev.Path)
	default:
		return false, nil
	}
}

// Process applies events in order, then writes the map once.
//
// A failing event does not stop the run; its error is collected and the
// remaining events are still applied. The map is only written when every
// event succeeded, so a failed run leaves the previous map in place. ctx is
// checked between events.
func (p *Processor) Process(ctx context.Context, events []assetmap.Event) (Summary, error) {
	var (
		sum  Summary
		errs []error
	)
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		handled, err := p.Handle(ev)
		switch {
		case !handled:
			sum.Ignored++
			p.logger.Debug("event ignored", slog.String("kind", ev.Kind.String()), slog.String("path", ev.Path))
			continue
		case err != nil:
			sum.Failed++
			errs = append(errs, fmt.Errorf("%s %s: %w", ev.Kind, ev.Path, err))
			p.logger.Warn("event failed", slog.String("kind", ev.Kind.String()),
				slog.String("path", ev.Path), slog.Any("error", err))
			continue
		case ev.Kind == assetmap.EventUnlink:
			sum.Untracked++
		default:
			sum.Tracked++
		}
		p.logger.Debug("event applied", slog.String("kind", ev.Kind.String()), slog.String("path", ev.Path))
	}
	if len(errs) > 0 {
		return sum, errors.Join(errs...)
	}

	if err := p.Flush(); err != nil {
		return sum, err
	}
	sum.Written = p.writer != nil
	return sum, nil
}

// Flush writes the current snapshot to the map path.
func (p *Processor) Flush() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Write(p.mapPath, p.tracker.Snapshot()); err != nil {
		return fmt.Errorf("cannot write map %s: %w", p.mapPath, err)
	}
	return nil
}
