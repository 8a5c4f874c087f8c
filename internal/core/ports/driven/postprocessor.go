package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// PostProcessor transforms the paragraph units of a document before embedding.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process receives the units produced so far and returns the new units.
	Process(ctx context.Context, units []domain.ParagraphUnit) ([]domain.ParagraphUnit, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs every processor in order. Unit indices are kept as given.
	Process(ctx context.Context, units []domain.ParagraphUnit) ([]domain.ParagraphUnit, error)
}
