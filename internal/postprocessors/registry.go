package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// BuilderFunc constructs a processor from its step config.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Step names one pipeline stage and its config.
type Step struct {
	Name   string
	Config map[string]any
}

// Registry maps processor names to builders so pipelines can be described
// as data.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds a builder. A later registration under the same name wins.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the processor registered under name.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q", domain.ErrInvalidInput, name)
	}
	return builder(cfg)
}

// BuildPipeline constructs every step in order.
func (r *Registry) BuildPipeline(steps []Step) (*Pipeline, error) {
	procs := make([]driven.PostProcessor, 0, len(steps))
	for _, step := range steps {
		proc, err := r.Build(step.Name, step.Config)
		if err != nil {
			return nil, fmt.Errorf("pipeline step %s: %w", step.Name, err)
		}
		procs = append(procs, proc)
	}
	return NewPipeline(procs...), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
