package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kamusis/assetmap/internal/assetmap"
	"github.com/kamusis/assetmap/internal/config"
	"github.com/kamusis/assetmap/internal/mapfile"
	"github.com/kamusis/assetmap/internal/scan"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight checks on config, source tree and map",
	Long: `Check that the config is valid, the source tree can be scanned, the map
parses, and report short paths that more than one file would claim.
Run this command when a reference resolves to the wrong file.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Automatically fix detected issues",
	Long: `Fix detected issues.

Currently fixes:
  - Leftover temporary map files from interrupted writes

Run 'assetmap doctor' first to see what will be fixed.`,
	Args: cobra.NoArgs,
	RunE: runDoctorFix,
}

func init() {
	doctorCmd.AddCommand(doctorFixCmd)
	rootCmd.AddCommand(doctorCmd)
}

func runDoctorFix(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printSection("assetmap doctor fix")

	fmt.Println("\n[ Temporary files ]")
	leftovers := findTempFiles(cfg.MapPath)
	if len(leftovers) == 0 {
		printOK("", "no temporary files found, nothing to fix")
		return nil
	}

	var failed int
	for _, p := range leftovers {
		if err := os.Remove(p); err != nil {
			printErr("", fmt.Sprintf("cannot delete %s: %v", p, err))
			failed++
		} else {
			printOK("", fmt.Sprintf("deleted %s", p))
		}
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be deleted", failed)
	}
	printOK("", fmt.Sprintf("%d temporary file(s) removed", len(leftovers)))
	return nil
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("assetmap doctor")
	fmt.Println()

	// ── Check 1: config ──────────────────────────────────────────────────────
	fmt.Println("[ config ]")
	var cfg *config.Config
	cfgPath, err := config.ResolvePath(flagConfig)
	switch {
	case err != nil:
		failD("cannot resolve config path: %v", err)
	default:
		cfg, err = config.Load(cfgPath)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			failD("%v", err)
			cfg = nil
		} else {
			printOK("", fmt.Sprintf("valid: %s (%d type(s), collision %s)", cfgPath, len(cfg.TypeExtensions), collisionName(cfg)))
		}
	}
	fmt.Println()
	if cfg == nil {
		fmt.Println("===================")
		fmt.Fprintln(os.Stderr, "✗  Config not usable. Run 'assetmap init' or fix the file above.")
		return errors.New("doctor found issues")
	}

	// ── Check 2: source tree ────────────────────────────────────────────────
	fmt.Println("[ source tree ]")
	files, walkErr := scan.Walk(cfg.SourceDir, effectiveExcludes(cfg))
	if walkErr != nil {
		failD("%v", walkErr)
	} else {
		printOK("", fmt.Sprintf("%d file(s) under %s", len(files), cfg.SourceDir))
	}
	fmt.Println()

	// ── Check 3: map file ───────────────────────────────────────────────────
	fmt.Println("[ map ]")
	switch {
	case !mapfile.Exists(cfg.MapPath):
		printWarn("", fmt.Sprintf("%s not written yet (run 'assetmap build')", cfg.MapPath))
	default:
		idx, err := mapfile.Load(cfg.MapPath)
		if err != nil {
			failD("%v", err)
		} else {
			printOK("", fmt.Sprintf("parses: %d short path(s) for %d file(s)", idx.Len(), len(idx.Paths())))
		}
	}
	if leftovers := findTempFiles(cfg.MapPath); len(leftovers) > 0 {
		printWarn("", fmt.Sprintf("%d temporary file(s) from interrupted writes (run 'assetmap doctor fix')", len(leftovers)))
	}
	fmt.Println()

	// ── Check 4: short path collisions ──────────────────────────────────────
	fmt.Println("[ short path collisions ]")
	if walkErr == nil {
		tr, err := cfg.NewTracker(nil)
		if err != nil {
			failD("%v", err)
		} else {
			collisions := assetmap.FindCollisions(tr.Resolver(), files)
			reportCollisions(cfg, collisions, &allOK)
		}
	} else {
		printWarn("", "skipped (source tree not scanned)")
	}
	fmt.Println()

	// ── Summary ─────────────────────────────────────────────────────────────
	fmt.Println("===================")
	if allOK {
		fmt.Println("✓  All checks passed.")
		return nil
	}
	fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
	return errors.New("doctor found issues")
}

func collisionName(cfg *config.Config) string {
	p, err := assetmap.ParseCollisionPolicy(cfg.Collision)
	if err != nil {
		return cfg.Collision
	}
	return p.String()
}

// reportCollisions lists colliding short paths. They only fail the check
// under the reject policy, where a build would fail on them.
func reportCollisions(cfg *config.Config, collisions []assetmap.Collision, allOK *bool) {
	if len(collisions) == 0 {
		printOK("", "no short path is claimed by more than one file")
		return
	}
	policy, _ := assetmap.ParseCollisionPolicy(cfg.Collision)
	for _, c := range collisions {
		msg := fmt.Sprintf("%s claimed by %d files: %v", c.Short, len(c.Paths), c.Paths)
		if policy == assetmap.CollisionReject {
			printErr(c.Type, msg)
		} else {
			printWarn(c.Type, msg)
		}
	}
	switch policy {
	case assetmap.CollisionReject:
		*allOK = false
		fmt.Printf("\n  ✗  %d collision(s); 'assetmap build' fails under collision: reject.\n", len(collisions))
	case assetmap.CollisionKeepFirst:
		fmt.Printf("\n  ~  %d collision(s); the first file tracked keeps each short path.\n", len(collisions))
	default:
		fmt.Printf("\n  ~  %d collision(s); the last file tracked wins each short path.\n", len(collisions))
	}
}

// findTempFiles returns temporary files left next to the map by writes that
// never reached the rename.
func findTempFiles(mapPath string) []string {
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(mapPath), "."+filepath.Base(mapPath)+".*"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}
