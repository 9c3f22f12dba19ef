package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamusis/assetmap/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default assetmap.yaml",
	Long: `Write a default config to ./assetmap.yaml (or the path given by --config
or $ASSETMAP_CONFIG) and create the source directory if it is missing.

An existing config is left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var flagInitForce bool

func init() {
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing config")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	cfgPath, err := config.ResolvePath(flagConfig)
	if err != nil {
		return err
	}

	// ── 1. Write the config ─────────────────────────────────────────────────
	_, statErr := os.Stat(cfgPath)
	switch {
	case os.IsNotExist(statErr) || flagInitForce:
		if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", filepath.Dir(cfgPath), err)
		}
		if err := config.Save(cfgPath, config.Default()); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	case statErr != nil:
		return fmt.Errorf("cannot stat %s: %w", cfgPath, statErr)
	default:
		printSkip("", fmt.Sprintf("Config already exists: %s (use --force to overwrite)", cfgPath))
	}

	// ── 2. Load it back the way every other command will ───────────────────
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── 3. Make sure the source directory exists ───────────────────────────
	if _, err := os.Stat(cfg.SourceDir); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.SourceDir, 0o755); err != nil {
			return fmt.Errorf("cannot create source directory: %w", err)
		}
		printOK("", fmt.Sprintf("Source directory created: %s", cfg.SourceDir))
	} else {
		printSkip("", fmt.Sprintf("Source directory already exists: %s", cfg.SourceDir))
	}

	fmt.Println("\n✓  assetmap init complete. Run 'assetmap build' to write the map.")
	return nil
}
