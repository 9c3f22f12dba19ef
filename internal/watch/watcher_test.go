package watch

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kamusis/assetmap/internal/assetmap"
)

func TestConvertOp(t *testing.T) {
	cases := []struct {
		op   fsnotify.Op
		want assetmap.EventKind
		ok   bool
	}{
		{fsnotify.Create, assetmap.EventAdd, true},
		{fsnotify.Write, assetmap.EventChange, true},
		{fsnotify.Remove, assetmap.EventUnlink, true},
		{fsnotify.Rename, assetmap.EventUnlink, true},
		{fsnotify.Create | fsnotify.Write, assetmap.EventAdd, true},
		{fsnotify.Chmod, assetmap.EventUnknown, false},
	}
	for _, c := range cases {
		got, ok := convertOp(c.op)
		if got != c.want || ok != c.ok {
			t.Errorf("convertOp(%v) = %v, %v; want %v, %v", c.op, got, ok, c.want, c.ok)
		}
	}
}

func TestDeduplicate_LastEventWins(t *testing.T) {
	in := []assetmap.Event{
		{Kind: assetmap.EventAdd, Path: "a.png"},
		{Kind: assetmap.EventChange, Path: "b.png"},
		{Kind: assetmap.EventChange, Path: "a.png"},
		{Kind: assetmap.EventUnlink, Path: "b.png"},
	}
	want := []assetmap.Event{
		{Kind: assetmap.EventChange, Path: "a.png"},
		{Kind: assetmap.EventUnlink, Path: "b.png"},
	}
	if got := Deduplicate(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("Deduplicate = %v, want %v", got, want)
	}
}

func TestExpandUnlinks(t *testing.T) {
	known := []string{"icons/a.svg", "icons/sub/b.svg", "iconset.svg", "logo.png"}
	in := []assetmap.Event{
		{Kind: assetmap.EventUnlink, Path: "icons"},
		{Kind: assetmap.EventUnlink, Path: "logo.png"},
		{Kind: assetmap.EventUnlink, Path: "never.png"},
		{Kind: assetmap.EventAdd, Path: "new.png"},
	}
	want := []assetmap.Event{
		{Kind: assetmap.EventUnlink, Path: "icons/a.svg"},
		{Kind: assetmap.EventUnlink, Path: "icons/sub/b.svg"},
		{Kind: assetmap.EventUnlink, Path: "logo.png"},
		{Kind: assetmap.EventUnlink, Path: "never.png"},
		{Kind: assetmap.EventAdd, Path: "new.png"},
	}
	if got := ExpandUnlinks(in, known); !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpandUnlinks = %v, want %v", got, want)
	}
}

func TestWatcher_DeliversRelativeEvents(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	seen := map[string]assetmap.EventKind{}
	got := make(chan struct{}, 16)
	handler := func(events []assetmap.Event) {
		mu.Lock()
		for _, ev := range events {
			seen[ev.Path] = ev.Kind
		}
		mu.Unlock()
		got <- struct{}{}
	}

	w, err := New(root, handler, &Options{Debounce: 20 * time.Millisecond, Excludes: []string{"*.tmp"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "logo.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "scratch.tmp"), []byte("tmp"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		_, ok := seen["logo.png"]
		mu.Unlock()
		if ok {
			break
		}
		select {
		case <-got:
		case <-deadline:
			t.Fatal("timed out waiting for logo.png event")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if _, ok := seen["scratch.tmp"]; ok {
		t.Error("excluded file must not be reported")
	}
	if k := seen["logo.png"]; k != assetmap.EventAdd && k != assetmap.EventChange {
		t.Errorf("logo.png kind = %v", k)
	}
}

func TestWatcher_BusyHandlerLosesNothing(t *testing.T) {
	root := t.TempDir()

	var (
		mu    sync.Mutex
		seen  = map[string]bool{}
		calls int
	)
	handler := func(events []assetmap.Event) {
		mu.Lock()
		calls++
		first := calls == 1
		for _, ev := range events {
			seen[ev.Path] = true
		}
		mu.Unlock()
		if first {
			time.Sleep(300 * time.Millisecond)
		}
	}

	w, err := New(root, handler, &Options{Debounce: 10 * time.Millisecond, BufferSize: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "first.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)

	const n = 40
	for i := 0; i < n; i++ {
		name := filepath.Join(root, "f"+strconv.Itoa(i)+".png")
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		missing := 0
		for i := 0; i < n; i++ {
			if !seen["f"+strconv.Itoa(i)+".png"] {
				missing++
			}
		}
		mu.Unlock()
		if missing == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("%d of %d files never reached the handler", missing, n)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatcher_OverflowTriggersResync(t *testing.T) {
	resynced := make(chan struct{}, 1)
	w, err := New(t.TempDir(), nil, &Options{
		Debounce: 10 * time.Millisecond,
		Resync:   func() { resynced <- struct{}{} },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	w.handleError(fsnotify.ErrEventOverflow)

	select {
	case <-resynced:
	case <-time.After(5 * time.Second):
		t.Fatal("resync not called after queue overflow")
	}
}

func TestWatcher_StopFlushesPendingChanges(t *testing.T) {
	root := t.TempDir()

	var (
		mu   sync.Mutex
		seen []assetmap.Event
	)
	handler := func(events []assetmap.Event) {
		mu.Lock()
		seen = append(seen, events...)
		mu.Unlock()
	}

	w, err := New(root, handler, &Options{Debounce: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "late.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	for _, ev := range seen {
		if ev.Path == "late.png" {
			return
		}
	}
	t.Fatalf("pending change not delivered on Stop: %v", seen)
}
