// Package postprocessors shapes normalised paragraphs into the units that
// are embedded. Processors are looked up by name so the ingest pipeline can
// be described in settings.
package postprocessors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs processors in order, each receiving the previous output.
type Pipeline struct {
	steps []driven.PostProcessor
}

// NewPipeline creates a pipeline over steps.
func NewPipeline(steps ...driven.PostProcessor) *Pipeline {
	return &Pipeline{steps: steps}
}

// Process runs every step over units. A step that leaves no units ends the
// run early.
func (p *Pipeline) Process(ctx context.Context, units []domain.ParagraphUnit) ([]domain.ParagraphUnit, error) {
	for _, step := range p.steps {
		if len(units) == 0 {
			return nil, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		before := len(units)
		out, err := step.Process(ctx, units)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", step.Name(), err)
		}
		logger.Debug("Post-process %s: %d -> %d units", step.Name(), before, len(out))
		units = out
	}

	if len(units) == 0 {
		return nil, nil
	}
	return units, nil
}

// Names returns the step names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}

// String describes the pipeline as "a -> b".
func (p *Pipeline) String() string {
	if len(p.steps) == 0 {
		return "(empty)"
	}
	return strings.Join(p.Names(), " -> ")
}
