package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui"
	"github.com/custodia-labs/insight/internal/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the writings in an interactive terminal UI",
	Long: `Open the interactive terminal UI.

Search by meaning, reflect on a journal entry and read passages in full.
The model loads in the background, so the first search may wait for it.

Keys: enter searches or opens a passage, tab cycles the author filter,
ctrl+s reflects on a journal entry, esc goes back and ? lists every key.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// A panic in a view is returned as an error.
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("TUI panic stack:\n%s", debug.Stack())
			err = fmt.Errorf("tui panic: %v", r)
		}
	}()

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	prepareInBackground(cmd.Context(), svc)

	app, err := tui.NewApp(tui.NewPorts(svc.Search, svc.Journal, svc.Index))
	if err != nil {
		return fmt.Errorf("create tui: %w", err)
	}
	return app.WithContext(cmd.Context()).Run()
}
