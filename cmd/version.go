package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/kamusis/assetmap/cmd.version=...".
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var flagVersionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show assetmap version and build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionShort, "short", false, "Print the version number only")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	v, rev, date := buildInfo()
	if flagVersionShort {
		fmt.Println(v)
		return nil
	}
	fmt.Printf("assetmap %s\n", v)
	fmt.Printf("  commit:  %s\n", orNA(rev))
	fmt.Printf("  built:   %s\n", orNA(date))
	fmt.Printf("  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}

// buildInfo prefers the ldflags values and falls back to what the Go
// toolchain stamped into the binary (module version, vcs.revision, vcs.time).
func buildInfo() (v, rev, date string) {
	v, rev, date = version, commit, buildDate
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, rev, date
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && rev == "":
			rev = s.Value
		case s.Key == "vcs.time" && date == "":
			date = s.Value
		}
	}
	return v, rev, date
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
