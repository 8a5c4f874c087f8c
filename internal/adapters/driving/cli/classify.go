package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file>...",
	Short: "Show the author derived from file names",
	Long: `Prints the author each file would be tagged with on ingest, with the
reference library link for the source. Nothing is read or indexed.`,
	Example: `  insight classify corpus/*.txt`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			name := filepath.Base(path)
			tag := domain.ClassifyAuthor(name)
			cmd.Printf("%-40s %-16s %s\n", name, tag, domain.LibraryURL(name))
		}
		return nil
	},
}

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List author codes accepted by --author",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, tag := range domain.AllAuthorTags() {
			cmd.Printf("%-16s %s\n", tag, tag.Label())
		}
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(authorsCmd)
}
