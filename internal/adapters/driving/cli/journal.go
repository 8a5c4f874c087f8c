package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/insight/internal/core/domain"
)

var (
	journalLimit   int
	journalAuthors []string
	journalJSON    bool
)

var journalCmd = &cobra.Command{
	Use:   "journal [entry]",
	Short: "Reflect on a journal entry",
	Long: `Restates a free-form journal entry as its underlying themes, then searches
the writings with the restatement.

The entry is taken from the arguments, or read from standard input when no
arguments are given. The rephraser is configured with llm.provider
(extractive, ollama or openai).`,
	Example: `  insight journal "I lost my job today and I feel adrift"
  cat entry.txt | insight journal --author uhj`,
	RunE: runJournal,
}

func init() {
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	journalCmd.Flags().StringSliceVarP(&journalAuthors, "author", "a", nil, "restrict results to an author (repeatable)")
	journalCmd.Flags().BoolVar(&journalJSON, "json", false, "output the reflection as JSON")
	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, args []string) error {
	entry, err := journalEntry(cmd, args)
	if err != nil {
		return err
	}

	opts, err := searchOptions(journalLimit, journalAuthors)
	if err != nil {
		return err
	}

	svc, err := prepared(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Journal == nil || !svc.Journal.Available() {
		return fmt.Errorf("journal mode: %w", domain.ErrLLMUnavailable)
	}

	result, err := svc.Journal.Reflect(cmd.Context(), entry, opts)
	if err != nil {
		return fmt.Errorf("journal failed: %w", err)
	}

	if journalJSON {
		return writeJSON(cmd, result)
	}

	cmd.Println("Reflecting on:")
	cmd.Printf("  %s\n\n", preview(result.Rephrased, previewLength))
	printResults(cmd, result.Results)
	return nil
}

// journalEntry returns the entry from args, or from stdin when it is not a
// terminal.
func journalEntry(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("journal entry required: pass it as an argument or pipe it on stdin")
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading entry: %w", err)
	}
	entry := strings.TrimSpace(string(data))
	if entry == "" {
		return "", fmt.Errorf("%w: journal entry is empty", domain.ErrInvalidInput)
	}
	return entry, nil
}
