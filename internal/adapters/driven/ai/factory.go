// Package ai provides factory functions that build the embedding, index and
// rephrasing adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/insight/cgo/onnx"
	"github.com/custodia-labs/insight/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/insight/internal/adapters/driven/embedding/static"
	"github.com/custodia-labs/insight/internal/adapters/driven/llm/extractive"
	ollamallm "github.com/custodia-labs/insight/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/insight/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/insight/internal/adapters/driven/vector"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the services built by Init.
type InitResult struct {
	Embedder  driven.EmbeddingService
	Index     driven.VectorIndex
	Rephraser driven.Rephraser
	Warnings  []string // Non-fatal issues that caused fallback.
	FellBack  bool     // True if the configured rephraser was replaced by the extractive one.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.Rephraser != nil {
		_ = r.Rephraser.Close()
	}
	if r.Index != nil {
		_ = r.Index.Close()
	}
	if r.Embedder != nil {
		_ = r.Embedder.Close()
	}
}

// Deps are the collaborators Init wires into the services.
type Deps struct {
	Store    driven.ParagraphStore
	Prompts  driven.PromptStore
	Recorder driven.Recorder
}

// Init builds the embedder, opens the index and creates the rephraser.
// The embedder is returned unprepared. A rephraser that cannot be reached
// falls back to the extractive one with a warning.
func Init(ctx context.Context, settings *domain.Settings, deps Deps) (*InitResult, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	embedder, err := CreateEmbedder(&settings.Embedding, deps.Recorder)
	if err != nil {
		return nil, err
	}

	index, err := OpenIndex(ctx, deps.Store, settings)
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}

	result := &InitResult{Embedder: embedder, Index: index}

	rephraser, err := CreateAndValidateRephraser(ctx, &settings.LLM, deps.Prompts)
	if err != nil {
		logger.Warn("%v; using extractive rephraser", err)
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
		rephraser = extractive.New(extractive.DefaultMaxSentences)
	}
	result.Rephraser = rephraser

	return result, nil
}

// CreateEncoder creates the token encoder for the configured backend.
func CreateEncoder(settings *domain.EmbeddingSettings) (driven.TokenEncoder, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings are missing", domain.ErrInvalidInput)
	}

	switch settings.Backend {
	case domain.ModelBackendStatic:
		if settings.ModelPath == "" {
			return nil, fmt.Errorf("%w: static backend needs a token vector table", domain.ErrModelUnavailable)
		}
		return static.New(settings.ModelPath, settings.Dimension), nil

	case domain.ModelBackendONNX:
		if settings.ModelPath == "" {
			return nil, fmt.Errorf("%w: onnx backend needs a model file", domain.ErrModelUnavailable)
		}
		return onnx.New(settings.ModelPath, settings.SharedLibraryPath, settings.Dimension), nil

	default:
		return nil, fmt.Errorf("%w: unsupported model backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}

// CreateEmbedder creates an unprepared embedder over the configured encoder.
func CreateEmbedder(settings *domain.EmbeddingSettings, rec driven.Recorder) (driven.EmbeddingService, error) {
	encoder, err := CreateEncoder(settings)
	if err != nil {
		return nil, err
	}

	return local.New(local.Config{
		ModelName: settings.ModelName,
		VocabPath: settings.VocabPath,
		MaxLength: settings.MaxSeqLength,
		Dimension: settings.Dimension,
		BatchSize: settings.BatchSize,
		Timeout:   settings.Timeout,
	}, encoder, local.WithRecorder(rec)), nil
}

// OpenIndex opens the vector index over store with the configured strategy.
func OpenIndex(ctx context.Context, store driven.ParagraphStore, settings *domain.Settings) (*vector.Index, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: paragraph store is missing", domain.ErrInvalidInput)
	}

	ix := settings.Index
	return vector.Open(ctx, store, vector.Config{
		Dimension: settings.Embedding.Dimension,
		Strategy:  ix.Strategy,
		ModelName: settings.Embedding.ModelName,
		HNSW: vector.HNSWParams{
			M:              ix.M,
			EfConstruction: ix.EfConstruction,
			EfSearch:       ix.EfSearch,
			Overfetch:      ix.OverfetchFactor,
		},
	})
}

// CreateRephraser creates the rephraser for the configured provider.
func CreateRephraser(settings *domain.LLMSettings, prompts driven.PromptStore) (driven.Rephraser, error) {
	if settings == nil || settings.Provider == "" {
		return extractive.New(extractive.DefaultMaxSentences), nil
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s is not configured", domain.ErrLLMUnavailable, settings.Provider)
	}

	var r driven.Rephraser
	switch settings.Provider {
	case domain.LLMProviderExtractive:
		return extractive.New(extractive.DefaultMaxSentences), nil

	case domain.LLMProviderOllama:
		r = ollamallm.New(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.LLMProviderOpenAI:
		svc, err := openaillm.New(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
		if err != nil {
			return nil, err
		}
		r = svc

	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", domain.ErrLLMUnavailable, settings.Provider)
	}

	if aware, ok := r.(driven.PromptStoreAware); ok && prompts != nil {
		aware.SetPromptStore(prompts)
	}
	return r, nil
}

// CreateAndValidateRephraser creates a rephraser and validates connectivity.
func CreateAndValidateRephraser(
	ctx context.Context,
	settings *domain.LLMSettings,
	prompts driven.PromptStore,
) (driven.Rephraser, error) {
	r, err := CreateRephraser(settings, prompts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := r.Ping(pingCtx); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w)", domain.ErrLLMUnavailable, r.ModelName(), err)
	}
	return r, nil
}
