package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamusis/assetmap/internal/assetmap"
	"github.com/kamusis/assetmap/internal/config"
	"github.com/kamusis/assetmap/internal/mapfile"
	"github.com/kamusis/assetmap/internal/processor"
	"github.com/kamusis/assetmap/internal/scan"
)

var flagBuildFull bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Scan the source tree and write the asset map",
	Long: `Scan source_dir and bring the map at map_path up to date.

  assetmap build          Incremental: start from the existing map, add new
                          files, refresh known ones, drop removed ones
  assetmap build --full   Rebuild the map from an empty index`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&flagBuildFull, "full", false, "Ignore the existing map and rebuild from scratch")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, sum, err := buildMap(ctx, cfg, flagBuildFull)
	if err != nil {
		return err
	}
	printBuildSummary(cfg, sum)
	return nil
}

// buildMap runs one full processing pass over the source tree and returns
// the processor so callers can keep applying events to the same index.
func buildMap(ctx context.Context, cfg *config.Config, full bool) (*processor.Processor, processor.Summary, error) {
	var previous assetmap.Index
	first := full || !mapfile.Exists(cfg.MapPath)
	if !first {
		var err error
		previous, err = mapfile.Load(cfg.MapPath)
		if err != nil {
			return nil, processor.Summary{}, err
		}
	}

	tracker, err := cfg.NewTracker(previous)
	if err != nil {
		return nil, processor.Summary{}, err
	}
	proc := processor.New(tracker, mapfile.Writer{}, cfg.MapPath)

	files, err := scan.Walk(cfg.SourceDir, effectiveExcludes(cfg))
	if err != nil {
		return nil, processor.Summary{}, err
	}
	events := scan.Plan(files, previous, first)

	sum, err := proc.Process(ctx, events)
	if err != nil {
		return proc, sum, fmt.Errorf("build failed (%d of %d event(s) failed, map not written): %w",
			sum.Failed, len(events), err)
	}
	return proc, sum, nil
}

// effectiveExcludes adds the map file, its lock and its temp files to the
// configured excludes when the map lives inside the source tree. They are
// anchored so source files that share the map's name are still scanned.
func effectiveExcludes(cfg *config.Config) []string {
	excludes := append([]string(nil), cfg.Excludes...)
	rel, err := filepath.Rel(cfg.SourceDir, cfg.MapPath)
	if err != nil {
		return excludes
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return excludes
	}
	dir, base := path.Split(rel)
	return append(excludes,
		scan.ExactExclude(rel),
		scan.ExactExclude(mapfile.LockPath(rel)),
		"/"+scan.EscapeGlob(dir+"."+base)+".*",
	)
}

func printBuildSummary(cfg *config.Config, sum processor.Summary) {
	printOK("", fmt.Sprintf("%d tracked / %d removed / %d ignored", sum.Tracked, sum.Untracked, sum.Ignored))
	if sum.Written {
		printOK("", fmt.Sprintf("map written: %s", cfg.MapPath))
	}
}
