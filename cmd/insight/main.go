// Command insight is semantic search over the Bahá'í writings.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/insight/internal/adapters/driven/ai"
	"github.com/custodia-labs/insight/internal/adapters/driven/config/file"
	"github.com/custodia-labs/insight/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/insight/internal/adapters/driving/cli"
	"github.com/custodia-labs/insight/internal/connectors/filesystem"
	"github.com/custodia-labs/insight/internal/core/services"
	"github.com/custodia-labs/insight/internal/logger"
	"github.com/custodia-labs/insight/internal/metrics"
	"github.com/custodia-labs/insight/internal/normalisers"
	"github.com/custodia-labs/insight/internal/postprocessors"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env file in the working directory may carry INSIGHT_* overrides.
	_ = godotenv.Load()

	if err := setup(); err != nil {
		logger.Error(err, "Startup failed")
		os.Exit(1)
	}
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("locating home directory: %w", err)
	}
	configDir := filepath.Join(home, ".insight")

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, filepath.Join(configDir, "data"))

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetBootstrap(func(ctx context.Context) (*cli.Services, error) {
		return bootstrap(ctx, settingsService, configDir)
	})
	return nil
}

// bootstrap opens the index and wires the services around it.
func bootstrap(ctx context.Context, settingsService *services.SettingsService, configDir string) (*cli.Services, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	m := metrics.New()
	result, err := ai.Init(ctx, settings, ai.Deps{
		Store:    store.ParagraphStore(),
		Prompts:  prompts,
		Recorder: m,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	pipeline, err := postprocessors.DefaultPipeline(settings.Ingest)
	if err != nil {
		result.Close()
		_ = store.Close()
		return nil, err
	}
	logger.Debug("Ingest pipeline: %s", pipeline)

	fs := filesystem.New(normalisers.Defaults(), settings.Ingest.MinParagraphChars)

	// Ingestion, imports and deletes share one writer.
	var writer sync.Mutex

	search := services.NewSearchService(result.Embedder, result.Index, m)
	ingest := services.NewIngestService(result.Embedder, result.Index, pipeline,
		services.WithCorpusReader(fs),
		services.WithRunStore(store.RunStore()),
		services.WithIngestRecorder(m),
		services.WithProgressInterval(settings.Ingest.ProgressInterval),
		services.WithBatchSize(settings.Embedding.BatchSize),
		services.WithWriterLock(&writer),
	)
	index := services.NewIndexService(result.Index, &writer, m)

	return &cli.Services{
		Search:         search,
		Journal:        services.NewJournalService(result.Rephraser, search),
		Ingest:         ingest,
		Watch:          services.NewWatchService(fs, ingest, index, 0),
		Index:          index,
		Corpus:         fs,
		Embedder:       result.Embedder,
		PrepareTimeout: settings.Embedding.PrepareTimeout,
		Metrics:        m,
		Close: func() {
			_ = fs.Close()
			result.Close()
			if err := store.Close(); err != nil {
				logger.Warn("Closing store: %v", err)
			}
		},
	}, nil
}
