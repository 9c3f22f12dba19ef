// Package watch turns file system notifications under a source tree into
// debounced batches of asset map events.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kamusis/assetmap/internal/assetmap"
	"github.com/kamusis/assetmap/internal/scan"
)

// Handler receives a deduplicated batch of events, paths relative to the
// watched root. Handler and Options.Resync are called from a single worker
// goroutine, one at a time.
type Handler func(events []assetmap.Event)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long to wait for more changes before delivering a batch.
	// Default: 200ms
	Debounce time.Duration

	// Excludes are glob patterns for files and directories to ignore, matched
	// like scan.MatchesExclude.
	Excludes []string

	// BufferSize is the size of the pending change channel. A full buffer
	// blocks the event reader; no change is dropped.
	// Default: 1024
	BufferSize int

	// Resync is called after the kernel event queue overflowed, once the
	// batch in flight has been handled. Events were lost at that point, so it
	// should rescan the tree.
	Resync func()

	// Logger receives watcher errors. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Debounce:   200 * time.Millisecond,
		BufferSize: 1024,
	}
}

// batch is one unit of work for the handler goroutine.
type batch struct {
	events []assetmap.Event
	resync bool
}

// Watcher watches a source tree recursively.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	handler  Handler
	resync   func()
	debounce time.Duration
	excludes []string
	logger   *slog.Logger

	changes  chan assetmap.Event
	overflow chan struct{}
	batches  chan batch
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.Mutex
	watching bool
	ctx      context.Context
}

// New creates a watcher for root. Call Start to begin watching.
func New(root string, handler Handler, opts *Options) (*Watcher, error) {
	o := DefaultOptions()
	if opts != nil {
		if opts.Debounce > 0 {
			o.Debounce = opts.Debounce
		}
		if opts.BufferSize > 0 {
			o.BufferSize = opts.BufferSize
		}
		o.Excludes = opts.Excludes
		o.Resync = opts.Resync
		o.Logger = opts.Logger
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     root,
		watcher:  fw,
		handler:  handler,
		resync:   o.Resync,
		debounce: o.Debounce,
		excludes: o.Excludes,
		logger:   o.Logger,
		changes:  make(chan assetmap.Event, o.BufferSize),
		overflow: make(chan struct{}, 1),
		batches:  make(chan batch),
		done:     make(chan struct{}),
	}, nil
}

// Start registers the tree and begins delivering batches. Watching stops
// when ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.ctx = ctx
	w.mu.Unlock()

	if err := w.addRecursive(w.root, false); err != nil {
		return err
	}

	w.wg.Add(3)
	go func() {
		defer w.wg.Done()
		w.processEvents(ctx)
	}()
	go func() {
		defer w.wg.Done()
		w.debounceLoop(ctx)
	}()
	go func() {
		defer w.wg.Done()
		w.runHandler()
	}()
	return nil
}

// Stop stops the watcher and waits until changes already received have been
// handed to the handler and the handler has returned.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
		w.wg.Wait()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// addRecursive watches dir and its subdirectories. When emitAdds is set,
// regular files found along the way are reported as added; a directory
// moved into the tree produces no events for its contents otherwise.
func (w *Watcher) addRecursive(dir string, emitAdds bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, ok := w.rel(path)
		if !ok {
			return nil
		}
		if rel != "." && scan.MatchesExclude(rel, w.excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		if emitAdds && d.Type().IsRegular() {
			w.send(assetmap.NewEvent(assetmap.EventAdd, rel))
		}
		return nil
	})
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	return rel, true
}

// send queues ev, blocking while the buffer is full. It gives up only when
// the watcher is shutting down.
func (w *Watcher) send(ev assetmap.Event) {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()

	select {
	case w.changes <- ev:
	case <-w.done:
	case <-ctx.Done():
	}
}

// processEvents converts fsnotify events and feeds the debouncer.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.handleError(err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, ok := w.rel(event.Name)
	if !ok || rel == "." || scan.MatchesExclude(rel, w.excludes) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name, true); err != nil {
				w.logger.Warn("cannot watch new directory", slog.String("path", event.Name), slog.Any("error", err))
			}
			return
		}
	}

	kind, ok := convertOp(event.Op)
	if !ok {
		return
	}
	w.send(assetmap.NewEvent(kind, rel))
}

// handleError logs watcher errors and schedules a resync when the kernel
// queue overflowed.
func (w *Watcher) handleError(err error) {
	if !errors.Is(err, fsnotify.ErrEventOverflow) {
		w.logger.Warn("watch error", slog.Any("error", err))
		return
	}
	w.logger.Warn("watch event queue overflowed, rescanning", slog.Any("error", err))
	select {
	case w.overflow <- struct{}{}:
	default:
	}
}

// convertOp maps an fsnotify op to an event kind. Chmod-only events are
// dropped.
func convertOp(op fsnotify.Op) (assetmap.EventKind, bool) {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return assetmap.EventUnlink, true
	case op.Has(fsnotify.Create):
		return assetmap.EventAdd, true
	case op.Has(fsnotify.Write):
		return assetmap.EventChange, true
	default:
		return assetmap.EventUnknown, false
	}
}

// debounceLoop collects changes into a pending batch and, once the window
// passes without new changes, moves it to the ready batch. The ready batch
// is handed to the handler goroutine when it is idle; changes arriving while
// the handler runs keep accumulating instead of backing up.
func (w *Watcher) debounceLoop(ctx context.Context) {
	defer close(w.batches)

	var (
		pending []assetmap.Event
		ready   batch
		timer   *time.Timer
		timerC  <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}
	promote := func() {
		ready.events = append(ready.events, pending...)
		pending = nil
		stopTimer()
	}
	// finish hands everything received so far to the handler goroutine.
	finish := func() {
	drain:
		for {
			select {
			case ev := <-w.changes:
				pending = append(pending, ev)
			default:
				break drain
			}
		}
		promote()
		if len(ready.events) > 0 || ready.resync {
			w.batches <- ready
		}
	}

	for {
		var out chan batch
		if len(ready.events) > 0 || ready.resync {
			out = w.batches
		}

		select {
		case <-ctx.Done():
			finish()
			return
		case <-w.done:
			finish()
			return
		case ev := <-w.changes:
			pending = append(pending, ev)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerC:
			promote()
		case <-w.overflow:
			ready.resync = true
		case out <- ready:
			ready = batch{}
		}
	}
}

// runHandler delivers batches one at a time until the debouncer closes the
// channel.
func (w *Watcher) runHandler() {
	for b := range w.batches {
		if events := Deduplicate(b.events); len(events) > 0 && w.handler != nil {
			w.handler(events)
		}
		if b.resync && w.resync != nil {
			w.resync()
		}
	}
}

// Deduplicate keeps the last event per path, ordered by each path's last
// occurrence.
func Deduplicate(events []assetmap.Event) []assetmap.Event {
	last := make(map[string]int, len(events))
	for i, ev := range events {
		last[ev.Path] = i
	}
	out := make([]assetmap.Event, 0, len(last))
	for i, ev := range events {
		if last[ev.Path] == i {
			out = append(out, ev)
		}
	}
	return out
}
