// Package local provides an in-process embedding service: WordPiece
// tokenization, a pluggable token encoder, masked mean pooling and L2
// normalisation.
package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/insight/internal/adapters/driven/embedding/wordpiece"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure Embedder implements the interface.
var _ driven.EmbeddingService = (*Embedder)(nil)

// Config holds embedder settings.
type Config struct {
	// ModelName is reported by ModelName.
	ModelName string

	// VocabPath is loaded during Prepare unless a tokenizer was injected.
	VocabPath string

	// MaxLength is the tokenized sequence length.
	MaxLength int

	// Dimension is the expected output size. The encoder must agree.
	Dimension int

	// BatchSize caps texts per inference call.
	BatchSize int

	// Timeout bounds each Embed or EmbedBatch call. Zero means none.
	Timeout time.Duration
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithTokenizer injects a ready tokenizer instead of loading VocabPath.
func WithTokenizer(t driven.Tokenizer) Option {
	return func(e *Embedder) {
		e.tokenizer = t
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r driven.Recorder) Option {
	return func(e *Embedder) {
		if r != nil {
			e.recorder = r
		}
	}
}

// Embedder implements driven.EmbeddingService over a driven.TokenEncoder.
// It is safe for concurrent use once Ready.
type Embedder struct {
	cfg      Config
	encoder  driven.TokenEncoder
	recorder driven.Recorder

	// prepareMu serialises Prepare calls; mu guards state.
	prepareMu sync.Mutex
	mu        sync.RWMutex
	state     domain.EmbedderState
	lastErr   error
	tokenizer driven.Tokenizer
}

// New creates an embedder in the Uninitialized state. Nothing is loaded
// until Prepare is called.
func New(cfg Config, encoder driven.TokenEncoder, opts ...Option) *Embedder {
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = wordpiece.DefaultMaxLength
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	e := &Embedder{
		cfg:      cfg,
		encoder:  encoder,
		recorder: driven.NopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Prepare loads the vocabulary and model assets.
func (e *Embedder) Prepare(ctx context.Context) error {
	e.prepareMu.Lock()
	defer e.prepareMu.Unlock()

	if e.State() == domain.EmbedderReady {
		return nil
	}
	e.setState(domain.EmbedderLoading, nil)

	logger.Section("Prepare Embedder")
	start := time.Now()

	err := e.load(ctx)
	if err != nil {
		e.setState(domain.EmbedderFailed, err)
		logger.Warn("embedder prepare failed: %v", err)
		return err
	}

	e.setState(domain.EmbedderReady, nil)
	logger.Debug("Embedder ready: model=%s dim=%d in %v", e.cfg.ModelName, e.cfg.Dimension, time.Since(start))
	return nil
}

func (e *Embedder) load(ctx context.Context) error {
	if e.encoder == nil {
		return fmt.Errorf("%w: no token encoder configured", domain.ErrModelUnavailable)
	}

	e.mu.RLock()
	tok := e.tokenizer
	e.mu.RUnlock()
	if tok == nil {
		loaded, err := wordpiece.Load(e.cfg.VocabPath, e.cfg.MaxLength)
		if err != nil {
			return err
		}
		logger.Debug("Loaded vocabulary: %d tokens from %s", loaded.VocabSize(), e.cfg.VocabPath)
		tok = loaded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.encoder.Load(ctx); err != nil {
		return err
	}
	if got := e.encoder.Dimensions(); e.cfg.Dimension > 0 && got != e.cfg.Dimension {
		return &domain.DimensionError{Expected: e.cfg.Dimension, Actual: got, Context: "model output"}
	}

	e.mu.Lock()
	if e.cfg.Dimension == 0 {
		e.cfg.Dimension = e.encoder.Dimensions()
	}
	e.tokenizer = tok
	e.mu.Unlock()
	return nil
}

func (e *Embedder) setState(s domain.EmbedderState, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
	e.lastErr = err
}

// State returns the lifecycle state.
func (e *Embedder) State() domain.EmbedderState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Ready reports whether Prepare has succeeded.
func (e *Embedder) Ready() bool {
	return e.State() == domain.EmbedderReady
}

// Err returns the error of the last failed Prepare.
func (e *Embedder) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

// Embed generates a normalised embedding for one text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates normalised embeddings, splitting texts into batches
// of at most Config.BatchSize.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !e.Ready() {
		return nil, fmt.Errorf("%w: state is %s", domain.ErrNotReady, e.State())
	}
	if len(texts) == 0 {
		return nil, nil
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	out := make([][]float32, 0, len(texts))
	var err error
	for i := 0; i < len(texts) && err == nil; i += e.cfg.BatchSize {
		end := min(i+e.cfg.BatchSize, len(texts))
		var vecs [][]float32
		vecs, err = e.embedChunk(ctx, texts[i:end])
		out = append(out, vecs...)
	}
	e.recorder.ObserveEmbed(time.Since(start), len(texts), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Embedder) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	tok := e.tokenizer
	dim := e.cfg.Dimension
	e.mu.RUnlock()

	ids := make([][]int64, len(texts))
	mask := make([][]int64, len(texts))
	for i, text := range texts {
		enc := tok.Encode(text)
		ids[i] = enc.IDs
		mask[i] = enc.Mask
	}

	output, err := e.encoder.Encode(ctx, ids, mask)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}

	var vecs [][]float32
	switch {
	case output.Pooled != nil:
		vecs = output.Pooled
	case output.Tokens != nil:
		vecs = make([][]float32, len(output.Tokens))
		for i, tokens := range output.Tokens {
			vecs[i] = MeanPool(tokens, mask[i])
		}
	default:
		return nil, fmt.Errorf("%w: encoder returned no output", domain.ErrEmbeddingFailed)
	}

	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: encoder returned %d vectors for %d texts",
			domain.ErrEmbeddingFailed, len(vecs), len(texts))
	}
	for i, v := range vecs {
		if err := domain.CheckDimension(v, dim, "embedding"); err != nil {
			return nil, err
		}
		vecs[i] = domain.Normalize(v)
	}
	return vecs, nil
}

// MeanPool averages the token vectors whose mask entry is 1.
// Returns nil for an empty sequence.
func MeanPool(tokens [][]float32, mask []int64) []float32 {
	if len(tokens) == 0 {
		return nil
	}
	dim := len(tokens[0])
	sum := make([]float64, dim)
	count := 0
	for i, vec := range tokens {
		if i < len(mask) && mask[i] == 0 {
			continue
		}
		for j := 0; j < dim && j < len(vec); j++ {
			sum[j] += float64(vec[j])
		}
		count++
	}
	out := make([]float32, dim)
	if count == 0 {
		return out
	}
	for j := range sum {
		out[j] = float32(sum[j] / float64(count))
	}
	return out
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.Dimension
}

// ModelName returns the configured model name.
func (e *Embedder) ModelName() string {
	return e.cfg.ModelName
}

// Close releases the encoder and returns to Uninitialized.
func (e *Embedder) Close() error {
	e.prepareMu.Lock()
	defer e.prepareMu.Unlock()
	e.setState(domain.EmbedderUninitialized, nil)
	if e.encoder == nil {
		return nil
	}
	return e.encoder.Close()
}
