package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
)

var errNoSettings = errors.New("settings service not configured")

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	Long: `View and configure the embedding model, the vector index, ingestion and
the journal rephraser.

Settings live in ~/.insight/config.toml. Any key can be overridden with an
INSIGHT_* environment variable, for example INSIGHT_LLM_API_KEY.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting and save it.

Run 'insight config keys' to list the keys.`,
	Example: `  insight config set index.strategy hnsw
  insight config set llm.provider ollama`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	cmd.Printf("Data directory: %s\n", settings.DataDir)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Backend: %s\n", settings.Embedding.Backend.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.ModelName)
	cmd.Printf("  Dimension: %d\n", settings.Embedding.Dimension)
	cmd.Printf("  Max sequence length: %d\n", settings.Embedding.MaxSeqLength)
	cmd.Printf("  Vocabulary: %s\n", orUnset(settings.Embedding.VocabPath))
	cmd.Printf("  Model file: %s\n", orUnset(settings.Embedding.ModelPath))
	if settings.Embedding.Backend == domain.ModelBackendONNX {
		cmd.Printf("  Runtime library: %s\n", orUnset(settings.Embedding.SharedLibraryPath))
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Strategy: %s\n", settings.Index.Strategy.Description())
	if settings.Index.Strategy == domain.IndexStrategyHNSW {
		cmd.Printf("  M: %d\n", settings.Index.M)
		cmd.Printf("  efConstruction: %d\n", settings.Index.EfConstruction)
		cmd.Printf("  efSearch: %d\n", settings.Index.EfSearch)
	}
	cmd.Printf("  Filter overfetch: %dx\n", settings.Index.OverfetchFactor)
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Merge threshold: %d words\n", settings.Ingest.MergeThreshold)
	cmd.Printf("  Minimum paragraph: %d characters\n", settings.Ingest.MinParagraphChars)
	cmd.Printf("  Progress every: %d records\n", settings.Ingest.ProgressInterval)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	if settings.LLM.Model != "" {
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'insight config set <key> <value>' to fix it.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

// maskAPIKey masks an API key for display, showing only first and last 4 chars.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
