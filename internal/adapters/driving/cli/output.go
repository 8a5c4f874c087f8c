package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// previewLength is the number of characters of passage text shown per result.
const previewLength = 320

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printResults(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No passages found.")
		return
	}

	for i := range results {
		r := &results[i]
		label := r.AuthorLabel
		if label == "" {
			label = r.Author.Label()
		}
		cmd.Printf("  [%d] %s · %s (%.3f)\n", i+1, label, r.SourceFile, r.Score)
		cmd.Printf("      %s\n", preview(r.Text, previewLength))
		if r.LibraryURL != "" {
			cmd.Printf("      %s\n", r.LibraryURL)
		}
		cmd.Println()
	}
}

// preview collapses whitespace and shortens s to n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// searchOptions builds options from the --limit and --author flags.
func searchOptions(limit int, authors []string) (domain.SearchOptions, error) {
	filter, err := domain.ParseAuthorFilter(authors)
	if err != nil {
		return domain.SearchOptions{}, err
	}
	opts := domain.SearchOptions{Limit: limit, Authors: filter}
	if err := opts.Validate(); err != nil {
		return domain.SearchOptions{}, err
	}
	return opts, nil
}
