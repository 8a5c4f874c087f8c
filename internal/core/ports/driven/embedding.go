package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// Encoding is a tokenized text of fixed length L.
// Mask holds 1 for real tokens and 0 for padding; padding is always a
// contiguous suffix.
type Encoding struct {
	IDs  []int64
	Mask []int64
}

// Tokens returns the number of non-padding tokens.
func (e Encoding) Tokens() int {
	n := 0
	for _, m := range e.Mask {
		if m == 0 {
			break
		}
		n++
	}
	return n
}

// Tokenizer converts raw text into fixed-length token sequences.
// Implementations are immutable after construction and safe for concurrent use.
type Tokenizer interface {
	// Encode tokenizes text into exactly MaxLength ids and mask entries.
	Encode(text string) Encoding

	// MaxLength returns the fixed sequence length L.
	MaxLength() int

	// VocabSize returns the number of vocabulary entries.
	VocabSize() int
}

// EncoderOutput holds the result of one inference call. Exactly one of the
// fields is set, depending on whether the model pools internally.
type EncoderOutput struct {
	// Tokens holds one vector per input token: [batch][L][D].
	Tokens [][][]float32

	// Pooled holds one vector per input text: [batch][D].
	Pooled [][]float32
}

// TokenEncoder runs model inference over tokenized input.
type TokenEncoder interface {
	// Load reads model assets. It is slow and may block on disk or native setup.
	Load(ctx context.Context) error

	// Encode runs inference on a batch of id and mask rows of equal length.
	Encode(ctx context.Context, ids, mask [][]int64) (EncoderOutput, error)

	// Dimensions returns the output vector size. Valid after Load.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// EmbeddingService generates normalised vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them. Query and
// document texts go through the same Embed path.
type EmbeddingService interface {
	// Prepare loads model assets. It is idempotent once Ready; a Failed
	// service may be prepared again.
	Prepare(ctx context.Context) error

	// State returns the current lifecycle state.
	State() domain.EmbedderState

	// Ready reports whether Prepare has completed successfully.
	Ready() bool

	// Embed generates a vector embedding for the given text.
	// Returns domain.ErrNotReady before Prepare completes.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (384 or 512).
	// This must match VectorIndex configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
