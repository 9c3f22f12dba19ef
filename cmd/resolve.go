package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kamusis/assetmap/internal/mapfile"
	"github.com/kamusis/assetmap/internal/search"
)

var flagResolveType string

var resolveCmd = &cobra.Command{
	Use:   "resolve <ref>",
	Short: "Look up the file a short reference points to",
	Long: `Look up a short reference in the written map.

  assetmap resolve widgets/button
  assetmap resolve widgets/button --type icon`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&flagResolveType, "type", "t", "", "Only look in this type")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	idx, err := mapfile.Load(cfg.MapPath)
	if err != nil {
		return err
	}

	entries := search.Resolve(idx, args[0], flagResolveType)
	if len(entries) == 0 {
		printMiss("", fmt.Sprintf("%s not found in %s", args[0], cfg.MapPath))
		return fmt.Errorf("no match for %q", args[0])
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Type, e.Short, e.Path)
	}
	return w.Flush()
}
