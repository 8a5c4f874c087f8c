package driven

import "context"

// Normaliser extracts ordered paragraphs from one document format.
type Normaliser interface {
	// Extensions returns the lowercase file extensions handled, with the dot.
	Extensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers return 50; fallbacks return 1-9.
	Priority() int

	// Paragraphs returns the document's paragraphs in source order.
	// Blank paragraphs may be omitted.
	Paragraphs(ctx context.Context, content []byte) ([]string, error)
}

// NormaliserRegistry selects the normaliser for a file name.
type NormaliserRegistry interface {
	// Paragraphs extracts paragraphs with the best normaliser for name.
	// Returns domain.ErrUnsupportedFormat when no normaliser matches.
	Paragraphs(ctx context.Context, name string, content []byte) ([]string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// Supports reports whether a normaliser handles name.
	Supports(name string) bool

	// SupportedExtensions returns every extension that can be normalised.
	SupportedExtensions() []string
}
