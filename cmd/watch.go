package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/assetmap/internal/assetmap"
	"github.com/kamusis/assetmap/internal/config"
	"github.com/kamusis/assetmap/internal/processor"
	"github.com/kamusis/assetmap/internal/scan"
	"github.com/kamusis/assetmap/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the asset map up to date while files change",
	Long: `Build the map once, then watch source_dir and apply file changes as
they happen. Changes are batched for watch.debounce before the map is
rewritten. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, sum, err := buildMap(ctx, cfg, false)
	if err != nil {
		return err
	}
	printBuildSummary(cfg, sum)

	sess := &watchSession{ctx: ctx, cfg: cfg, proc: proc}
	w, err := watch.New(cfg.SourceDir, sess.handle, &watch.Options{
		Debounce: cfg.Watch.Debounce,
		Excludes: effectiveExcludes(cfg),
		Resync:   sess.resync,
	})
	if err != nil {
		return fmt.Errorf("cannot start watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return fmt.Errorf("cannot watch %s: %w", cfg.SourceDir, err)
	}

	printInfo("", fmt.Sprintf("watching %s (Ctrl-C to stop)", cfg.SourceDir))
	<-ctx.Done()
	fmt.Println()
	w.Stop()
	printOK("", "watch stopped")
	return nil
}

// shutdownFlushTimeout bounds the last batch processed after Ctrl-C.
const shutdownFlushTimeout = 10 * time.Second

// watchSession applies watcher batches to one processor. Its methods are
// called from the watcher's handler goroutine only.
type watchSession struct {
	ctx  context.Context
	cfg  *config.Config
	proc *processor.Processor
}

func (s *watchSession) handle(events []assetmap.Event) {
	events = watch.ExpandUnlinks(events, s.proc.Tracker().Snapshot().Paths())
	s.apply(events)
}

// resync rescans the source tree and plans it against the in-memory index,
// recovering from events the watcher lost.
func (s *watchSession) resync() {
	files, err := scan.Walk(s.cfg.SourceDir, effectiveExcludes(s.cfg))
	if err != nil {
		printErr("", fmt.Sprintf("rescan failed: %v", err))
		return
	}
	printInfo("", "events were lost, rescanned source tree")
	s.apply(scan.Plan(files, s.proc.Tracker().Snapshot(), false))
}

// apply processes one batch. A failed batch is reported and the map is left
// as it was; watching continues.
func (s *watchSession) apply(events []assetmap.Event) {
	ctx, cancel := batchContext(s.ctx)
	defer cancel()

	sum, err := s.proc.Process(ctx, events)
	if err != nil {
		printErr("", fmt.Sprintf("%d of %d change(s) failed, map not written: %v", sum.Failed, len(events), err))
		return
	}
	if sum.Tracked+sum.Untracked == 0 {
		return
	}
	printInfo("", fmt.Sprintf("%d tracked / %d removed, map written", sum.Tracked, sum.Untracked))
}

// batchContext returns the context for one batch. Once the session is
// canceled the watcher still flushes what it received, so that last batch
// gets a fresh context with a short deadline.
func batchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx.Err() == nil {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(context.WithoutCancel(ctx), shutdownFlushTimeout)
}
