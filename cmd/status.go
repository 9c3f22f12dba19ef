package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kamusis/assetmap/internal/mapfile"
	"github.com/kamusis/assetmap/internal/scan"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the asset map contains and whether it is stale",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printSection("Asset Map")
	fmt.Printf("  config: %s\n  source: %s\n  map:    %s\n", cfg.Path(), cfg.SourceDir, cfg.MapPath)

	if !mapfile.Exists(cfg.MapPath) {
		fmt.Println()
		printMiss("", "map not written yet (run: assetmap build)")
		return nil
	}
	idx, err := mapfile.Load(cfg.MapPath)
	if err != nil {
		return err
	}

	printBullet("Types:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, typ := range idx.Types() {
		name := typ
		if name == "" {
			name = "(no type)"
		}
		fmt.Fprintf(w, "  %s\t%d short path(s)\n", name, len(idx[typ]))
	}
	_ = w.Flush()

	tracked := idx.Paths()
	fmt.Printf("\n  %d file(s) / %d type(s) / %d short path(s)\n", len(tracked), len(idx), idx.Len())

	files, err := scan.Walk(cfg.SourceDir, effectiveExcludes(cfg))
	if err != nil {
		printWarn("", err.Error())
		return nil
	}
	added, removed := diffPaths(files, tracked)
	printBullet("Source tree:")
	if added == 0 && removed == 0 {
		printOK("", "map is up to date")
		return nil
	}
	printInfo("", fmt.Sprintf("%d new / %d removed file(s) since the last build (run: assetmap build)", added, removed))
	return nil
}

// diffPaths counts entries present only in current and only in tracked.
func diffPaths(current, tracked []string) (added, removed int) {
	inTracked := make(map[string]bool, len(tracked))
	for _, p := range tracked {
		inTracked[p] = true
	}
	inCurrent := make(map[string]bool, len(current))
	for _, p := range current {
		inCurrent[p] = true
		if !inTracked[p] {
			added++
		}
	}
	for _, p := range tracked {
		if !inCurrent[p] {
			removed++
		}
	}
	return added, removed
}
