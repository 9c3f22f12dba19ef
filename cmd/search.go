package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kamusis/assetmap/internal/mapfile"
	"github.com/kamusis/assetmap/internal/search"
)

var flagSearchK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the asset map by keyword",
	Args:  cobra.MinimumNArgs(0),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchK, "k", 10, "Number of results to show")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	idx, err := mapfile.Load(cfg.MapPath)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	results := search.KeywordSearch(search.Entries(idx), query, flagSearchK)
	printSearchResults(query, results)
	return nil
}

// printSearchResults groups results by type, keeping rank order inside each
// group and ordering groups by their best hit.
func printSearchResults(query string, results []search.Result) {
	fmt.Printf("\nassetmap search %q\n\n", query)
	fmt.Printf("Results (%d found):\n", len(results))
	if len(results) == 0 {
		return
	}

	grouped := make(map[string][]search.Result)
	var groupOrder []string
	for _, r := range results {
		typ := r.Entry.Type
		if typ == "" {
			typ = "(no type)"
		}
		if _, ok := grouped[typ]; !ok {
			groupOrder = append(groupOrder, typ)
		}
		grouped[typ] = append(grouped[typ], r)
	}

	for _, g := range groupOrder {
		items := grouped[g]
		fmt.Printf("\n%s (%d):\n", g, len(items))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for i, r := range items {
			fmt.Fprintf(w, "  %d.\t[%s]\t%s\t%s\n", i+1, r.Why, r.Entry.Short, r.Entry.Path)
		}
		_ = w.Flush()
	}
}
