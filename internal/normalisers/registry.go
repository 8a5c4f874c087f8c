package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/normalisers/docx"
	"github.com/custodia-labs/insight/internal/normalisers/html"
	"github.com/custodia-labs/insight/internal/normalisers/markdown"
	"github.com/custodia-labs/insight/internal/normalisers/pdf"
	"github.com/custodia-labs/insight/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches files to normalisers by extension. When several
// normalisers claim an extension the highest priority wins; among equals
// the first registered wins.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string][]driven.Normaliser)}
}

// Defaults returns a registry with every built-in normaliser registered.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(docx.New())
	r.Register(html.New())
	r.Register(pdf.New())
	return r
}

// Register adds a normaliser for each of its extensions.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range n.Extensions() {
		ext = strings.ToLower(ext)
		list := append(r.byExt[ext], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byExt[ext] = list
	}
}

// lookup returns the preferred normaliser for name.
func (r *Registry) lookup(name string) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byExt[strings.ToLower(filepath.Ext(name))]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// Supports reports whether a normaliser handles name.
func (r *Registry) Supports(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Paragraphs extracts paragraphs with the preferred normaliser for name.
func (r *Registry) Paragraphs(ctx context.Context, name string, content []byte) ([]string, error) {
	n, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Base(name))
	}

	paragraphs, err := n.Paragraphs(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", filepath.Base(name), err)
	}
	return paragraphs, nil
}

// SupportedExtensions returns every registered extension in sorted order.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
