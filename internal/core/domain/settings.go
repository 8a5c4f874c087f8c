package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// ModelBackend identifies the inference backend behind the embedder.
type ModelBackend string

// Available model backends.
const (
	// ModelBackendStatic reads per-token vectors from a precomputed table.
	ModelBackendStatic ModelBackend = "static"

	// ModelBackendONNX runs a sentence-transformer export through ONNX Runtime.
	ModelBackendONNX ModelBackend = "onnx"
)

// IsValid returns true if the backend is recognised.
func (b ModelBackend) IsValid() bool {
	switch b {
	case ModelBackendStatic, ModelBackendONNX:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b ModelBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b ModelBackend) Description() string {
	switch b {
	case ModelBackendStatic:
		return "Static token vectors (pure Go)"
	case ModelBackendONNX:
		return "ONNX Runtime (contextual model)"
	default:
		return unknownDescription
	}
}

// IndexStrategy selects the nearest-neighbour search structure.
type IndexStrategy string

// Available index strategies.
const (
	// IndexStrategyExact compares the query against every stored vector.
	IndexStrategyExact IndexStrategy = "exact"

	// IndexStrategyHNSW walks a hierarchical navigable small-world graph.
	IndexStrategyHNSW IndexStrategy = "hnsw"
)

// IsValid returns true if the strategy is recognised.
func (s IndexStrategy) IsValid() bool {
	switch s {
	case IndexStrategyExact, IndexStrategyHNSW:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s IndexStrategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s IndexStrategy) Description() string {
	switch s {
	case IndexStrategyExact:
		return "Exact (brute-force cosine scan)"
	case IndexStrategyHNSW:
		return "HNSW (approximate graph search)"
	default:
		return unknownDescription
	}
}

// LLMProvider identifies the service used to rephrase journal entries.
type LLMProvider string

// Available rephrase providers.
const (
	// LLMProviderExtractive picks key sentences locally without a model.
	LLMProviderExtractive LLMProvider = "extractive"

	// LLMProviderOllama is a local Ollama instance.
	LLMProviderOllama LLMProvider = "ollama"

	// LLMProviderOpenAI is the OpenAI chat completions API.
	LLMProviderOpenAI LLMProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p LLMProvider) IsValid() bool {
	switch p {
	case LLMProviderExtractive, LLMProviderOllama, LLMProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p LLMProvider) RequiresAPIKey() bool {
	return p == LLMProviderOpenAI
}

// IsLocal returns true if this provider runs on the local machine.
func (p LLMProvider) IsLocal() bool {
	return p == LLMProviderExtractive || p == LLMProviderOllama
}

// String returns the string representation.
func (p LLMProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p LLMProvider) Description() string {
	switch p {
	case LLMProviderExtractive:
		return "Extractive (local, no model)"
	case LLMProviderOllama:
		return "Ollama (local)"
	case LLMProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// DefaultLLMModels returns default models for each model-backed provider.
func DefaultLLMModels() map[LLMProvider]string {
	return map[LLMProvider]string{
		LLMProviderOllama: "llama3.2",
		LLMProviderOpenAI: "gpt-4o-mini",
	}
}

// Supported embedding dimensions.
const (
	DimensionMiniLM = 384
	DimensionUSE    = 512
)

// Embedding defaults.
const (
	DefaultMaxSeqLength = 128
	DefaultBatchSize    = 32
	DefaultEmbedTimeout = 30 * time.Second

	// DefaultPrepareTimeout bounds loading the vocabulary and model.
	DefaultPrepareTimeout = 2 * time.Minute
)

// Index defaults.
const (
	DefaultHNSWM              = 16
	DefaultHNSWEfConstruction = 200
	DefaultHNSWEfSearch       = 64
	DefaultOverfetchFactor    = 3
	MinOverfetchFactor        = 2
)

// Ingest defaults.
const (
	DefaultMergeThreshold    = 100
	DefaultMinParagraphChars = 20
	DefaultProgressInterval  = 10
)

// EmbeddingSettings configures the tokenizer, encoder and pooling.
type EmbeddingSettings struct {
	// Backend selects the token encoder.
	Backend ModelBackend

	// ModelName is recorded in index metadata and shown in stats.
	ModelName string

	// VocabPath is the WordPiece vocabulary file (one token per line).
	VocabPath string

	// ModelPath is the token-vector table (static) or .onnx file (onnx).
	ModelPath string

	// SharedLibraryPath locates the onnxruntime shared library.
	SharedLibraryPath string

	// Dimension is the output vector size, shared by the whole index.
	Dimension int

	// MaxSeqLength is the fixed tokenized length L.
	MaxSeqLength int

	// BatchSize caps how many texts go through one inference call.
	BatchSize int

	// Timeout bounds a single Embed or EmbedBatch call.
	Timeout time.Duration

	// PrepareTimeout bounds loading model assets before the first embed.
	PrepareTimeout time.Duration
}

// IndexSettings configures the vector index.
type IndexSettings struct {
	Strategy        IndexStrategy
	M               int
	EfConstruction  int
	EfSearch        int
	OverfetchFactor int
}

// IngestSettings configures paragraph merging and progress reporting.
type IngestSettings struct {
	// MergeThreshold is the minimum word count of a merged unit.
	MergeThreshold int

	// MinParagraphChars drops shorter paragraphs when reading corpus files.
	MinParagraphChars int

	// ProgressInterval is the number of records between progress reports.
	ProgressInterval int
}

// LLMSettings holds rephrase provider configuration.
type LLMSettings struct {
	// Provider is the rephrase service provider.
	Provider LLMProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Timeout bounds one rephrase request.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Settings holds all application settings.
type Settings struct {
	// DataDir holds the index database and default model assets.
	DataDir string

	Embedding EmbeddingSettings
	Index     IndexSettings
	Ingest    IngestSettings
	LLM       LLMSettings
}

// DefaultSettings returns settings with sensible defaults. Paths are left
// empty; the settings service resolves them against DataDir.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Backend:        ModelBackendStatic,
			ModelName:      "all-MiniLM-L6-v2",
			Dimension:      DimensionMiniLM,
			MaxSeqLength:   DefaultMaxSeqLength,
			BatchSize:      DefaultBatchSize,
			Timeout:        DefaultEmbedTimeout,
			PrepareTimeout: DefaultPrepareTimeout,
		},
		Index: IndexSettings{
			Strategy:        IndexStrategyExact,
			M:               DefaultHNSWM,
			EfConstruction:  DefaultHNSWEfConstruction,
			EfSearch:        DefaultHNSWEfSearch,
			OverfetchFactor: DefaultOverfetchFactor,
		},
		Ingest: IngestSettings{
			MergeThreshold:    DefaultMergeThreshold,
			MinParagraphChars: DefaultMinParagraphChars,
			ProgressInterval:  DefaultProgressInterval,
		},
		LLM: LLMSettings{
			Provider: LLMProviderExtractive,
			Timeout:  60 * time.Second,
		},
	}
}

// Validate rejects settings the pipeline cannot run with.
func (s Settings) Validate() error {
	e := s.Embedding
	if !e.Backend.IsValid() {
		return fmt.Errorf("%w: unknown model backend %q", ErrInvalidInput, e.Backend)
	}
	if e.Dimension != DimensionMiniLM && e.Dimension != DimensionUSE {
		return fmt.Errorf("%w: dimension must be %d or %d, got %d",
			ErrInvalidInput, DimensionMiniLM, DimensionUSE, e.Dimension)
	}
	if e.MaxSeqLength < 3 {
		return fmt.Errorf("%w: max sequence length must be at least 3, got %d", ErrInvalidInput, e.MaxSeqLength)
	}
	if e.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidInput, e.BatchSize)
	}
	if e.Timeout < 0 {
		return fmt.Errorf("%w: embed timeout must not be negative", ErrInvalidInput)
	}
	if e.PrepareTimeout <= 0 {
		return fmt.Errorf("%w: prepare timeout must be positive, got %s", ErrInvalidInput, e.PrepareTimeout)
	}

	ix := s.Index
	if !ix.Strategy.IsValid() {
		return fmt.Errorf("%w: unknown index strategy %q", ErrInvalidInput, ix.Strategy)
	}
	if ix.OverfetchFactor < MinOverfetchFactor {
		return fmt.Errorf("%w: overfetch factor must be at least %d, got %d",
			ErrInvalidInput, MinOverfetchFactor, ix.OverfetchFactor)
	}
	if ix.Strategy == IndexStrategyHNSW {
		if ix.M < 2 {
			return fmt.Errorf("%w: hnsw M must be at least 2, got %d", ErrInvalidInput, ix.M)
		}
		if ix.EfConstruction < ix.M || ix.EfSearch < 1 {
			return fmt.Errorf("%w: hnsw ef parameters out of range", ErrInvalidInput)
		}
	}

	in := s.Ingest
	if in.MergeThreshold < 1 {
		return fmt.Errorf("%w: merge threshold must be positive, got %d", ErrInvalidInput, in.MergeThreshold)
	}
	if in.MinParagraphChars < 0 || in.ProgressInterval < 1 {
		return fmt.Errorf("%w: ingest settings out of range", ErrInvalidInput)
	}

	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidInput, s.LLM.Provider)
	}
	return nil
}
