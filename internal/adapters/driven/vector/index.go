// Package vector provides the durable vector index. It composes a
// driven.ParagraphStore for persistence with an in-memory searcher
// (exact brute force or an HNSW graph) for queries.
package vector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

var errClosed = errors.New("vector index is closed")

// Config holds index settings.
type Config struct {
	// Dimension is the vector size shared by every record.
	Dimension int

	// Strategy selects the searcher.
	Strategy domain.IndexStrategy

	// HNSW tunes the graph when Strategy is hnsw.
	HNSW HNSWParams

	// ModelName is recorded in index metadata on first use.
	ModelName string
}

// Index is a durable nearest-neighbour index. Searches take a read lock and
// may run in parallel; writes are serialised.
type Index struct {
	mu       sync.RWMutex
	store    driven.ParagraphStore
	cfg      Config
	searcher searcher
	entries  map[string]*entry
	nextSeq  uint64
	closed   bool
}

// Open loads every stored record into memory. It fails fast with a
// domain.DimensionError if the recorded dimension or any stored vector
// disagrees with cfg.Dimension.
func Open(ctx context.Context, store driven.ParagraphStore, cfg Config) (*Index, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}
	if cfg.Strategy == "" {
		cfg.Strategy = domain.IndexStrategyExact
	}
	if !cfg.Strategy.IsValid() {
		return nil, fmt.Errorf("%w: unknown index strategy %q", domain.ErrInvalidInput, cfg.Strategy)
	}

	logger.Section("Open Vector Index")

	if err := checkMeta(ctx, store, cfg); err != nil {
		return nil, err
	}

	idx := &Index{
		store:   store,
		cfg:     cfg,
		entries: make(map[string]*entry),
	}
	idx.searcher = idx.newSearcher()

	err := store.Each(ctx, func(rec domain.ParagraphRecord) error {
		if err := domain.CheckDimension(rec.Embedding, cfg.Dimension, rec.DocumentID); err != nil {
			return err
		}
		idx.addEntry(rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading index: %w", err)
	}

	logger.Debug("Loaded %d records (dim=%d, strategy=%s)", len(idx.entries), cfg.Dimension, cfg.Strategy)
	return idx, nil
}

// checkMeta compares the recorded dimension and model with the configuration
// and records them on first use.
func checkMeta(ctx context.Context, store driven.ParagraphStore, cfg Config) error {
	raw, ok, err := store.GetMeta(ctx, driven.MetaDimension)
	if err != nil {
		return err
	}
	if ok {
		stored, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return fmt.Errorf("%w: dimension metadata %q", domain.ErrCorruptIndex, raw)
		}
		if stored != cfg.Dimension {
			return &domain.DimensionError{Expected: cfg.Dimension, Actual: stored, Context: "index metadata"}
		}
	} else if err := store.SetMeta(ctx, driven.MetaDimension, strconv.Itoa(cfg.Dimension)); err != nil {
		return err
	}

	if cfg.ModelName == "" {
		return nil
	}
	model, ok, err := store.GetMeta(ctx, driven.MetaModel)
	if err != nil {
		return err
	}
	if !ok {
		return store.SetMeta(ctx, driven.MetaModel, cfg.ModelName)
	}
	if model != cfg.ModelName {
		logger.Warn("index was built with model %q but %q is configured; scores may not be comparable",
			model, cfg.ModelName)
	}
	return nil
}

func (idx *Index) newSearcher() searcher {
	if idx.cfg.Strategy == domain.IndexStrategyHNSW {
		return newHNSWSearcher(idx.cfg.HNSW)
	}
	return newExactSearcher()
}

func (idx *Index) addEntry(rec domain.ParagraphRecord) {
	e := &entry{rec: rec, seq: idx.nextSeq}
	idx.nextSeq++
	idx.entries[rec.DocumentID] = e
	idx.searcher.add(e)
}

// Insert adds a record, reporting inserted=false when its ID already exists.
func (idx *Index) Insert(ctx context.Context, rec domain.ParagraphRecord) (bool, error) {
	if err := domain.CheckDimension(rec.Embedding, idx.cfg.Dimension, rec.DocumentID); err != nil {
		return false, err
	}
	if rec.DocumentID == "" {
		return false, fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return false, errClosed
	}

	inserted, err := idx.store.Insert(ctx, rec)
	if err != nil || !inserted {
		return false, err
	}
	rec.Embedding = append([]float32(nil), rec.Embedding...)
	idx.addEntry(rec)
	return true, nil
}

// InsertBatch adds records in order and returns the newly written IDs.
// On error the IDs written so far are returned with it.
func (idx *Index) InsertBatch(ctx context.Context, recs []domain.ParagraphRecord) ([]string, error) {
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		inserted, err := idx.Insert(ctx, rec)
		if err != nil {
			return ids, err
		}
		if inserted {
			ids = append(ids, rec.DocumentID)
		}
	}
	return ids, nil
}

// Exists reports whether a document ID is indexed.
func (idx *Index) Exists(_ context.Context, documentID string) (bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.entries[documentID]
	return ok, nil
}

// Each calls fn for every record in insertion order, on a snapshot taken
// when the call starts.
func (idx *Index) Each(ctx context.Context, fn func(domain.ParagraphRecord) error) error {
	idx.mu.RLock()
	if idx.closed {
		idx.mu.RUnlock()
		return errClosed
	}
	snapshot := make([]*entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		snapshot = append(snapshot, e)
	}
	idx.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].seq < snapshot[j].seq })
	for _, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e.rec); err != nil {
			return err
		}
	}
	return nil
}

// Search returns at most limit records by descending similarity.
func (idx *Index) Search(
	ctx context.Context,
	query []float32,
	limit int,
	filter domain.AuthorFilter,
) ([]domain.ScoredParagraph, error) {
	if err := domain.CheckDimension(query, idx.cfg.Dimension, "query"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return nil, errClosed
	}

	hits := idx.searcher.search(query, limit, filter)
	out := make([]domain.ScoredParagraph, len(hits))
	for i, h := range hits {
		out[i] = domain.ScoredParagraph{Record: h.e.rec, Score: h.score}
	}
	return out, nil
}

// DeleteBySource removes all records of a source file.
func (idx *Index) DeleteBySource(ctx context.Context, sourceFile string) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return 0, errClosed
	}

	ids, err := idx.store.DeleteBySource(ctx, sourceFile)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		idx.searcher.remove(id)
		delete(idx.entries, id)
	}
	return len(ids), nil
}

// DeleteAll removes every record. The recorded dimension is kept.
func (idx *Index) DeleteAll(ctx context.Context) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return 0, errClosed
	}

	n, err := idx.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	idx.searcher.reset()
	idx.entries = make(map[string]*entry)
	return n, nil
}

// Count returns the number of indexed records.
func (idx *Index) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries), nil
}

// Stats returns totals per author, counted by the store.
func (idx *Index) Stats(ctx context.Context) (domain.IndexStats, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	per, err := idx.store.CountByAuthor(ctx)
	if err != nil {
		return domain.IndexStats{}, err
	}
	total := 0
	for _, n := range per {
		total += n
	}
	model, _, err := idx.store.GetMeta(ctx, driven.MetaModel)
	if err != nil {
		return domain.IndexStats{}, err
	}
	return domain.IndexStats{
		Total:     total,
		PerAuthor: per,
		Dimension: idx.cfg.Dimension,
		Strategy:  idx.cfg.Strategy.String(),
		Model:     model,
	}, nil
}

// Dimensions returns the configured vector size.
func (idx *Index) Dimensions() int {
	return idx.cfg.Dimension
}

// Close releases the in-memory structures and closes the store.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return nil
	}
	idx.closed = true
	idx.searcher.reset()
	idx.entries = nil
	return idx.store.Close()
}
