package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// CorpusReader turns corpus files into ordered paragraphs.
type CorpusReader interface {
	// ReadParagraphs returns the paragraphs of a file in source order, each
	// tagged with its position among the paragraphs the normaliser produced.
	ReadParagraphs(ctx context.Context, path string) ([]domain.ParagraphUnit, error)

	// List returns the corpus files below root (or root itself if it is a file).
	List(ctx context.Context, root string) ([]string, error)
}

// CorpusOp is the kind of change observed in a corpus directory.
type CorpusOp string

// Corpus change kinds.
const (
	CorpusCreated CorpusOp = "created"
	CorpusUpdated CorpusOp = "updated"
	CorpusDeleted CorpusOp = "deleted"
)

// CorpusEvent is a single observed change.
type CorpusEvent struct {
	Op   CorpusOp
	Path string
}

// CorpusWatcher streams changes below a corpus directory.
type CorpusWatcher interface {
	// Watch starts watching root. The channel is closed when ctx is done
	// or the watcher is closed.
	Watch(ctx context.Context, root string) (<-chan CorpusEvent, error)

	// Close stops watching.
	Close() error
}
