package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// All commands use these functions to ensure consistent icon usage and
// indentation throughout assetmap's CLI output.
//
// Icon semantics:
//   ✓  success / healthy
//   ✗  error / failure          (written to stderr)
//   ⚠  warning
//   ○  skipped / not applicable
//   -  not found / missing
//   ~  neutral info / state change

// Icon colors. fatih/color turns itself off when stdout is not a terminal
// or NO_COLOR is set.
var (
	iconOK   = color.New(color.FgGreen).SprintFunc()
	iconErr  = color.New(color.FgRed).SprintFunc()
	iconWarn = color.New(color.FgYellow).SprintFunc()
	iconDim  = color.New(color.Faint).SprintFunc()
	iconInfo = color.New(color.FgCyan).SprintFunc()
)

// printSection prints a top-level section header, e.g. "=== Asset Map ===".
func printSection(title string) {
	fmt.Printf("\n=== %s ===\n", title)
}

// printBullet prints a grouped-section bullet, e.g. "● Types:".
func printBullet(title string) {
	fmt.Printf("\n● %s\n", title)
}

// printOK prints a success line.
//   name = "" → "  ✓  msg"
//   name set  → "  ✓  [name] msg"
func printOK(name, msg string) {
	if name == "" {
		fmt.Printf("  %s  %s\n", iconOK("✓"), msg)
	} else {
		fmt.Printf("  %s  [%s] %s\n", iconOK("✓"), name, msg)
	}
}

// printErr prints an error line to stderr.
func printErr(name, msg string) {
	if name == "" {
		fmt.Fprintf(os.Stderr, "  %s  %s\n", iconErr("✗"), msg)
	} else {
		fmt.Fprintf(os.Stderr, "  %s  [%s] %s\n", iconErr("✗"), name, msg)
	}
}

// printWarn prints a warning line.
func printWarn(name, msg string) {
	if name == "" {
		fmt.Printf("  %s  %s\n", iconWarn("⚠"), msg)
	} else {
		fmt.Printf("  %s  [%s] %s\n", iconWarn("⚠"), name, msg)
	}
}

// printSkip prints a skipped / not-applicable line.
func printSkip(name, msg string) {
	if name == "" {
		fmt.Printf("  %s  %s\n", iconDim("○"), msg)
	} else {
		fmt.Printf("  %s  [%s] %s\n", iconDim("○"), name, msg)
	}
}

// printMiss prints a not-found / missing line.
func printMiss(name, msg string) {
	if name == "" {
		fmt.Printf("  %s  %s\n", iconDim("-"), msg)
	} else {
		fmt.Printf("  %s  [%s] %s\n", iconDim("-"), name, msg)
	}
}

// printInfo prints a neutral informational / state-change line.
func printInfo(name, msg string) {
	if name == "" {
		fmt.Printf("  %s  %s\n", iconInfo("~"), msg)
	} else {
		fmt.Printf("  %s  [%s] %s\n", iconInfo("~"), name, msg)
	}
}
