package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/logger"
)

var (
	ingestAuthor  string
	ingestReplace bool
	ingestWatch   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Add corpus files to the index",
	Long: `Reads text, markdown, HTML and DOCX files, merges short paragraphs,
embeds them and stores them in the index. Directories are walked
recursively; hidden files are skipped.

Paragraphs already in the index are skipped, so ingesting the same file
twice is harmless. Use --replace to re-embed a file whose content changed,
and --watch to keep the index in step with a directory.

The author is derived from each file name unless --author is given.`,
	Example: `  insight ingest ./corpus
  insight ingest --author uhj --replace messages/ridvan-2024.txt
  insight ingest --watch ./corpus`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestAuthor, "author", "a", "", "author for every file (code or name)")
	ingestCmd.Flags().BoolVar(&ingestReplace, "replace", false, "replace existing records of each file")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for changes")
	rootCmd.AddCommand(ingestCmd)
}

// ingestTotals accumulates the reports of several files.
type ingestTotals struct {
	files, inserted, skipped, failed, replaced int
}

func (t *ingestTotals) add(r *domain.IngestReport) {
	t.files++
	t.inserted += r.Inserted
	t.skipped += r.Skipped
	t.failed += r.Failed
	t.replaced += r.Replaced
}

func runIngest(cmd *cobra.Command, args []string) error {
	var author *domain.AuthorTag
	if ingestAuthor != "" {
		tag, ok := domain.ParseAuthorTag(ingestAuthor)
		if !ok {
			return fmt.Errorf("%w: unknown author %q", domain.ErrInvalidInput, ingestAuthor)
		}
		author = &tag
	}
	if ingestWatch {
		if len(args) != 1 {
			return fmt.Errorf("%w: --watch takes exactly one directory", domain.ErrInvalidInput)
		}
		if author != nil {
			return fmt.Errorf("%w: --watch derives authors from file names", domain.ErrInvalidInput)
		}
	}

	svc, err := prepared(cmd.Context())
	if err != nil {
		return err
	}

	opts := domain.IngestOptions{Replace: ingestReplace}
	if isTerminal(cmd.ErrOrStderr()) {
		opts.Progress = progressPrinter(cmd.ErrOrStderr())
	}

	var totals ingestTotals
	for _, root := range args {
		files, err := svc.Corpus.List(cmd.Context(), root)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			logger.Warn("No supported files in %s", root)
		}

		for _, path := range files {
			report, err := svc.Ingest.IngestFile(cmd.Context(), path, author, opts)
			if err != nil {
				if errors.Is(err, domain.ErrIngestInProgress) || cmd.Context().Err() != nil {
					return err
				}
				logger.Error(err, "Ingest %s", path)
				totals.failed++
				continue
			}
			totals.add(report)
			cmd.Printf("%s (%s): %d inserted, %d skipped, %d failed\n",
				report.SourceFile, report.Author.Label(), report.Inserted, report.Skipped, report.Failed)
		}
	}

	cmd.Printf("\nIngested %d files: %d inserted, %d skipped, %d failed", totals.files, totals.inserted, totals.skipped, totals.failed)
	if totals.replaced > 0 {
		cmd.Printf(", %d replaced", totals.replaced)
	}
	cmd.Println()

	if !ingestWatch {
		return nil
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return svc.Watch.Watch(cmd.Context(), args[0], domain.IngestOptions{})
}

// progressPrinter renders a single updating progress line.
func progressPrinter(w io.Writer) func(domain.IngestProgress) {
	return func(p domain.IngestProgress) {
		if p.Event == domain.IngestEventDone {
			fmt.Fprint(w, "\r\033[K")
			return
		}
		fmt.Fprintf(w, "\r\033[K  %s %d/%d", p.SourceFile, p.Processed, p.Total)
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
