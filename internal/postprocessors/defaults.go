package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/postprocessors/merger"
	"github.com/custodia-labs/insight/internal/postprocessors/whitespace"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("whitespace", buildWhitespace)
	r.Register("merger", buildMerger)
}

// DefaultSteps is the ingestion pipeline: whitespace normalisation, then
// merging of short paragraphs up to the configured word threshold.
func DefaultSteps(settings domain.IngestSettings) []Step {
	return []Step{
		{Name: "whitespace"},
		{Name: "merger", Config: map[string]any{"threshold": settings.MergeThreshold}},
	}
}

// DefaultPipeline builds DefaultSteps with the built-in processors.
func DefaultPipeline(settings domain.IngestSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline(DefaultSteps(settings))
}

func buildWhitespace(_ map[string]any) (driven.PostProcessor, error) {
	return whitespace.New(), nil
}

// buildMerger creates a merger processor from generic config.
// Supported config keys:
//   - threshold (int): Minimum words per merged unit (default: 100)
func buildMerger(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []merger.Option

	if cfg != nil {
		if _, ok := cfg["threshold"]; ok {
			threshold := getIntFromConfig(cfg, "threshold")
			if threshold <= 0 {
				return nil, fmt.Errorf("%w: merge threshold must be positive", domain.ErrInvalidInput)
			}
			opts = append(opts, merger.WithThreshold(threshold))
		}
	}

	return merger.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
