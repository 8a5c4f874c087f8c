package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir             = "data_dir"
	keyEmbedBackend        = "embedding.backend"
	keyEmbedModel          = "embedding.model"
	keyEmbedVocabPath      = "embedding.vocab_path"
	keyEmbedModelPath      = "embedding.model_path"
	keyEmbedSharedLibrary  = "embedding.shared_library"
	keyEmbedDimension      = "embedding.dimension"
	keyEmbedMaxSeqLength   = "embedding.max_seq_length"
	keyEmbedBatchSize      = "embedding.batch_size"
	keyEmbedTimeout        = "embedding.timeout"
	keyEmbedPrepareTimeout = "embedding.prepare_timeout"
	keyIndexStrategy       = "index.strategy"
	keyIndexM              = "index.hnsw_m"
	keyIndexEfConstruction = "index.ef_construction"
	keyIndexEfSearch       = "index.ef_search"
	keyIndexOverfetch      = "index.overfetch"
	keyIngestMerge         = "ingest.merge_threshold"
	keyIngestMinChars      = "ingest.min_paragraph_chars"
	keyIngestProgress      = "ingest.progress_interval"
	keyLLMProvider         = "llm.provider"
	keyLLMModel            = "llm.model"
	keyLLMBaseURL          = "llm.base_url"
	keyLLMAPIKey           = "llm.api_key"
	keyLLMTimeout          = "llm.timeout"
)

// settingKeys lists every key in display order.
var settingKeys = []string{
	keyDataDir,
	keyEmbedBackend, keyEmbedModel, keyEmbedVocabPath, keyEmbedModelPath, keyEmbedSharedLibrary,
	keyEmbedDimension, keyEmbedMaxSeqLength, keyEmbedBatchSize, keyEmbedTimeout, keyEmbedPrepareTimeout,
	keyIndexStrategy, keyIndexM, keyIndexEfConstruction, keyIndexEfSearch, keyIndexOverfetch,
	keyIngestMerge, keyIngestMinChars, keyIngestProgress,
	keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMTimeout,
}

// EnvPrefix prefixes environment overrides: llm.api_key is read from
// INSIGHT_LLM_API_KEY.
const EnvPrefix = "INSIGHT_"

// openAIKeyEnv is consulted when no API key is configured.
//
//nolint:gosec // G101: environment variable name, not a credential.
const openAIKeyEnv = "OPENAI_API_KEY"

// Model asset file names below DataDir/models/<model>/.
const (
	VocabFileName       = "vocab.txt"
	TokenTableFileName  = "token_vectors.bin"
	ONNXModelFileName   = "model.onnx"
	modelsDirectoryName = "models"
)

// EnvName returns the environment variable that overrides a setting key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SettingsService manages application settings. Values come from the
// config store, then INSIGHT_* environment variables override them.
type SettingsService struct {
	configStore driven.ConfigStore
	dataDir     string
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service. dataDir is the default
// data directory, used when data_dir is not configured.
func NewSettingsService(configStore driven.ConfigStore, dataDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		dataDir:     dataDir,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings. Stored values that no longer
// parse are ignored with a warning; invalid environment overrides are errors.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := s.GetDefaults()

	for _, key := range settingKeys {
		val, ok := s.configStore.Get(key)
		if !ok {
			continue
		}
		if err := applySetting(&settings, key, fmt.Sprint(val)); err != nil {
			logger.Warn("Ignoring %s in %s: %v", key, s.configStore.Path(), err)
		}
	}

	for _, key := range settingKeys {
		val, ok := s.lookupEnv(EnvName(key))
		if !ok || val == "" {
			continue
		}
		if err := applySetting(&settings, key, val); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvName(key), err)
		}
	}
	if settings.LLM.APIKey == "" {
		if key, ok := s.lookupEnv(openAIKeyEnv); ok {
			settings.LLM.APIKey = key
		}
	}

	resolvePaths(&settings)
	return &settings, nil
}

// resolvePaths fills empty model asset paths from DataDir/models/<model>/.
func resolvePaths(settings *domain.Settings) {
	if settings.DataDir == "" {
		return
	}
	e := &settings.Embedding
	modelDir := filepath.Join(settings.DataDir, modelsDirectoryName, e.ModelName)
	if e.VocabPath == "" {
		e.VocabPath = filepath.Join(modelDir, VocabFileName)
	}
	if e.ModelPath == "" {
		name := TokenTableFileName
		if e.Backend == domain.ModelBackendONNX {
			name = ONNXModelFileName
		}
		e.ModelPath = filepath.Join(modelDir, name)
	}
}

// Save persists application settings. Empty strings and model paths equal
// to their derived defaults are not written.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are nil", domain.ErrInvalidInput)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	derived := *settings
	derived.Embedding.VocabPath = ""
	derived.Embedding.ModelPath = ""
	resolvePaths(&derived)

	for _, key := range settingKeys {
		val := settingValue(settings, key)
		if str, ok := val.(string); ok && (str == "" || str == settingValue(&derived, key) && isDerivedPath(key)) {
			continue
		}
		if err := s.configStore.Set(key, val); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Set updates one setting from its string form. An empty value removes the
// key so the default applies again.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !isSettingKey(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if strings.TrimSpace(value) == "" {
		return s.configStore.Unset(key)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := applySetting(settings, key, value); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.configStore.Set(key, settingValue(settings, key))
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	settings := domain.DefaultSettings()
	settings.DataDir = s.dataDir
	return settings
}

func isDerivedPath(key string) bool {
	return key == keyEmbedVocabPath || key == keyEmbedModelPath
}

func isSettingKey(key string) bool {
	for _, k := range settingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// applySetting parses value into the field named by key.
//
//nolint:gocyclo // One case per setting key.
func applySetting(st *domain.Settings, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case keyDataDir:
		st.DataDir = value
	case keyEmbedBackend:
		b := domain.ModelBackend(strings.ToLower(value))
		if !b.IsValid() {
			return fmt.Errorf("%w: unknown model backend %q", domain.ErrInvalidInput, value)
		}
		st.Embedding.Backend = b
	case keyEmbedModel:
		st.Embedding.ModelName = value
	case keyEmbedVocabPath:
		st.Embedding.VocabPath = value
	case keyEmbedModelPath:
		st.Embedding.ModelPath = value
	case keyEmbedSharedLibrary:
		st.Embedding.SharedLibraryPath = value
	case keyEmbedDimension:
		return parseInt(&st.Embedding.Dimension, value)
	case keyEmbedMaxSeqLength:
		return parseInt(&st.Embedding.MaxSeqLength, value)
	case keyEmbedBatchSize:
		return parseInt(&st.Embedding.BatchSize, value)
	case keyEmbedTimeout:
		return parseDuration(&st.Embedding.Timeout, value)
	case keyEmbedPrepareTimeout:
		return parseDuration(&st.Embedding.PrepareTimeout, value)
	case keyIndexStrategy:
		strategy := domain.IndexStrategy(strings.ToLower(value))
		if !strategy.IsValid() {
			return fmt.Errorf("%w: unknown index strategy %q", domain.ErrInvalidInput, value)
		}
		st.Index.Strategy = strategy
	case keyIndexM:
		return parseInt(&st.Index.M, value)
	case keyIndexEfConstruction:
		return parseInt(&st.Index.EfConstruction, value)
	case keyIndexEfSearch:
		return parseInt(&st.Index.EfSearch, value)
	case keyIndexOverfetch:
		return parseInt(&st.Index.OverfetchFactor, value)
	case keyIngestMerge:
		return parseInt(&st.Ingest.MergeThreshold, value)
	case keyIngestMinChars:
		return parseInt(&st.Ingest.MinParagraphChars, value)
	case keyIngestProgress:
		return parseInt(&st.Ingest.ProgressInterval, value)
	case keyLLMProvider:
		provider := domain.LLMProvider(strings.ToLower(value))
		if !provider.IsValid() {
			return fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidInput, value)
		}
		st.LLM.Provider = provider
	case keyLLMModel:
		st.LLM.Model = value
	case keyLLMBaseURL:
		st.LLM.BaseURL = value
	case keyLLMAPIKey:
		st.LLM.APIKey = value
	case keyLLMTimeout:
		return parseDuration(&st.LLM.Timeout, value)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return nil
}

// settingValue returns the typed value stored for key.
//
//nolint:gocyclo // One case per setting key.
func settingValue(st *domain.Settings, key string) any {
	switch key {
	case keyDataDir:
		return st.DataDir
	case keyEmbedBackend:
		return st.Embedding.Backend.String()
	case keyEmbedModel:
		return st.Embedding.ModelName
	case keyEmbedVocabPath:
		return st.Embedding.VocabPath
	case keyEmbedModelPath:
		return st.Embedding.ModelPath
	case keyEmbedSharedLibrary:
		return st.Embedding.SharedLibraryPath
	case keyEmbedDimension:
		return st.Embedding.Dimension
	case keyEmbedMaxSeqLength:
		return st.Embedding.MaxSeqLength
	case keyEmbedBatchSize:
		return st.Embedding.BatchSize
	case keyEmbedTimeout:
		return st.Embedding.Timeout.String()
	case keyEmbedPrepareTimeout:
		return st.Embedding.PrepareTimeout.String()
	case keyIndexStrategy:
		return st.Index.Strategy.String()
	case keyIndexM:
		return st.Index.M
	case keyIndexEfConstruction:
		return st.Index.EfConstruction
	case keyIndexEfSearch:
		return st.Index.EfSearch
	case keyIndexOverfetch:
		return st.Index.OverfetchFactor
	case keyIngestMerge:
		return st.Ingest.MergeThreshold
	case keyIngestMinChars:
		return st.Ingest.MinParagraphChars
	case keyIngestProgress:
		return st.Ingest.ProgressInterval
	case keyLLMProvider:
		return st.LLM.Provider.String()
	case keyLLMModel:
		return st.LLM.Model
	case keyLLMBaseURL:
		return st.LLM.BaseURL
	case keyLLMAPIKey:
		return st.LLM.APIKey
	case keyLLMTimeout:
		return st.LLM.Timeout.String()
	default:
		return nil
	}
}

func parseInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, value)
	}
	*dst = n
	return nil
}

// parseDuration accepts Go duration strings ("30s") or integer seconds.
func parseDuration(dst *time.Duration, value string) error {
	if secs, err := strconv.Atoi(value); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %q is not a duration", domain.ErrInvalidInput, value)
	}
	*dst = d
	return nil
}
