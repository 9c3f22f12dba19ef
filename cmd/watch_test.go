package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kamusis/assetmap/internal/assetmap"
	"github.com/kamusis/assetmap/internal/mapfile"
)

func TestWatchSession_ResyncPicksUpLostChanges(t *testing.T) {
	cfg := setupBuildTest(t)
	proc, _, err := buildMap(context.Background(), cfg, false)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(cfg.SourceDir, "img", "logo.png")); err != nil {
		t.Fatal(err)
	}
	writeAsset(t, cfg, "img/banner.png")

	sess := &watchSession{ctx: context.Background(), cfg: cfg, proc: proc}
	sess.resync()

	idx, err := mapfile.Load(cfg.MapPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := idx.Lookup("image", "img/logo"); ok {
		t.Error("removed file still mapped after rescan")
	}
	if _, ok := idx.Lookup("image", "img/banner"); !ok {
		t.Error("new file not mapped after rescan")
	}
	if _, ok := idx.Lookup("icon", "widgets/button"); !ok {
		t.Error("unchanged file dropped by rescan")
	}
}

func TestWatchSession_LastBatchWrittenAfterCancel(t *testing.T) {
	cfg := setupBuildTest(t)
	proc, _, err := buildMap(context.Background(), cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	writeAsset(t, cfg, "img/late.png")
	sess := &watchSession{ctx: ctx, cfg: cfg, proc: proc}
	sess.handle([]assetmap.Event{assetmap.NewEvent(assetmap.EventAdd, "img/late.png")})

	idx, err := mapfile.Load(cfg.MapPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := idx.Lookup("image", "img/late"); !ok {
		t.Fatal("batch flushed on shutdown was not written")
	}
}

func TestBatchContext(t *testing.T) {
	live, cancelLive := batchContext(context.Background())
	defer cancelLive()
	if live.Err() != nil {
		t.Fatalf("live context already done: %v", live.Err())
	}

	parent, cancel := context.WithCancel(context.Background())
	cancel()
	ctx, cancelFlush := batchContext(parent)
	defer cancelFlush()
	if ctx.Err() != nil {
		t.Fatalf("flush context inherited cancellation: %v", ctx.Err())
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("flush context has no deadline")
	}
}
