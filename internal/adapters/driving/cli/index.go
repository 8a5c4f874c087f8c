package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
)

var importCmd = &cobra.Command{
	Use:   "import <bundle.json>",
	Short: "Seed an empty index from a bundle",
	Long: `Imports precomputed paragraphs and embeddings from a JSON bundle.

An index that already holds records is left untouched. A missing bundle
file is reported and skipped rather than treated as an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the index as a bundle",
	Long: `Writes every record with its embedding in the bundle format accepted
by import. Output goes to standard output unless --output is given.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what the index holds",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var (
	deleteSource string
	deleteAll    bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove records from the index",
	Long: `Removes every record of one source file (--source) or clears the index
(--all).`,
	Example: `  insight delete --source hidden-words.txt
  insight delete --all`,
	Args: cobra.NoArgs,
	RunE: runDelete,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write the bundle to a file")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	deleteCmd.Flags().StringVar(&deleteSource, "source", "", "source file name to remove")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "remove every record")
	deleteCmd.MarkFlagsMutuallyExclusive("source", "all")
	deleteCmd.MarkFlagsOneRequired("source", "all")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	report, err := svc.Index.ImportFile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if report.Skipped {
		cmd.Printf("Import skipped: %s\n", report.Reason)
		return nil
	}
	cmd.Printf("Imported %d records", report.Imported)
	if report.Duplicates > 0 {
		cmd.Printf(" (%d duplicates ignored)", report.Duplicates)
	}
	cmd.Println()
	return nil
}

func runExport(cmd *cobra.Command, _ []string) (err error) {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if exportOutput != "" {
		if err := os.MkdirAll(filepath.Dir(exportOutput), 0o755); err != nil {
			return err
		}
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOutput, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		out = f
	}

	w := bufio.NewWriter(out)
	n, err := svc.Index.Export(cmd.Context(), w)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if exportOutput != "" {
		cmd.Printf("Exported %d records to %s\n", n, exportOutput)
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	stats, err := svc.Index.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		return writeJSON(cmd, stats)
	}

	cmd.Printf("Passages:  %d\n", stats.Total)
	cmd.Printf("Model:     %s (%d dimensions)\n", stats.Model, stats.Dimension)
	cmd.Printf("Strategy:  %s\n", stats.Strategy)
	if len(stats.PerAuthor) == 0 {
		return nil
	}
	cmd.Println()
	for _, tag := range domain.AllAuthorTags() {
		if n, ok := stats.PerAuthor[tag]; ok {
			cmd.Printf("  %-28s %6d\n", tag.Label(), n)
		}
	}
	return nil
}

func runDelete(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	if deleteAll {
		n, err := svc.Index.DeleteAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		cmd.Printf("Removed %d records\n", n)
		return nil
	}

	n, err := svc.Index.DeleteSource(cmd.Context(), deleteSource)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: no records for %s", domain.ErrNotFound, deleteSource)
	}
	cmd.Printf("Removed %d records of %s\n", n, deleteSource)
	return nil
}
