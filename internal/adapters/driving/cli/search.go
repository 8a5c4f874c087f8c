package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
)

var (
	searchLimit   int
	searchAuthors []string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the writings by meaning",
	Long: `Embeds the query and returns the closest passages by cosine similarity.
Keywords are not required: a question or a feeling finds related passages.

Filter by author with --author, using a code (bahaullah, abdul-baha,
the-bab, shoghi-effendi, uhj, compilations, other) or a name.`,
	Example: `  insight search "the station of the true seeker"
  insight search -n 5 --author bahaullah --author abdul-baha detachment`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit,
		fmt.Sprintf("maximum number of results (%d-%d)", domain.MinSearchLimit, domain.MaxSearchLimit))
	searchCmd.Flags().StringSliceVarP(&searchAuthors, "author", "a", nil, "restrict results to an author (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	opts, err := searchOptions(searchLimit, searchAuthors)
	if err != nil {
		return err
	}

	svc, err := prepared(cmd.Context())
	if err != nil {
		return err
	}

	results, err := svc.Search.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return writeJSON(cmd, results)
	}

	if !opts.Authors.IsEmpty() {
		cmd.Printf("Passages for %q (%s):\n\n", query, opts.Authors)
	} else {
		cmd.Printf("Passages for %q:\n\n", query)
	}
	printResults(cmd, results)
	return nil
}
