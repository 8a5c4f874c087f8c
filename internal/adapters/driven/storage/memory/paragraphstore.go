// Package memory provides in-memory implementations of the storage ports.
// Data does not survive the process; used for tests and ephemeral indexes.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure ParagraphStore implements the interface.
var _ driven.ParagraphStore = (*ParagraphStore)(nil)

// ParagraphStore is an in-memory implementation of driven.ParagraphStore.
type ParagraphStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.ParagraphRecord
	meta    map[string]string
}

// NewParagraphStore creates a new in-memory paragraph store.
func NewParagraphStore() *ParagraphStore {
	return &ParagraphStore{
		records: make(map[string]domain.ParagraphRecord),
		meta:    make(map[string]string),
	}
}

// Insert stores a record unless its document ID exists.
func (s *ParagraphStore) Insert(_ context.Context, rec domain.ParagraphRecord) (bool, error) {
	if !rec.Author.IsValid() {
		return false, fmt.Errorf("%w: author %q", domain.ErrInvalidInput, rec.Author)
	}
	if len(rec.Embedding) == 0 {
		return false, fmt.Errorf("%w: record %s has no embedding", domain.ErrInvalidInput, rec.DocumentID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.DocumentID]; ok {
		return false, nil
	}
	rec.Embedding = append([]float32(nil), rec.Embedding...)
	s.records[rec.DocumentID] = rec
	s.order = append(s.order, rec.DocumentID)
	return true, nil
}

// Exists reports whether a document ID is stored.
func (s *ParagraphStore) Exists(_ context.Context, documentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[documentID]
	return ok, nil
}

// Each calls fn for every record in insertion order.
func (s *ParagraphStore) Each(_ context.Context, fn func(domain.ParagraphRecord) error) error {
	s.mu.RLock()
	snapshot := make([]domain.ParagraphRecord, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, s.records[id])
	}
	s.mu.RUnlock()

	for _, rec := range snapshot {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBySource removes all records of a source file and returns their IDs.
func (s *ParagraphStore) DeleteBySource(_ context.Context, sourceFile string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	kept := s.order[:0]
	for _, id := range s.order {
		if s.records[id].SourceFile == sourceFile {
			removed = append(removed, id)
			delete(s.records, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed, nil
}

// DeleteAll removes every record.
func (s *ParagraphStore) DeleteAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.order)
	s.order = nil
	s.records = make(map[string]domain.ParagraphRecord)
	return n, nil
}

// Count returns the number of stored records.
func (s *ParagraphStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// CountByAuthor returns the number of records per author tag.
func (s *ParagraphStore) CountByAuthor(_ context.Context) (map[domain.AuthorTag]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.AuthorTag]int)
	for _, rec := range s.records {
		counts[rec.Author]++
	}
	return counts, nil
}

// GetMeta reads an index metadata value.
func (s *ParagraphStore) GetMeta(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.meta[key]
	return v, ok, nil
}

// SetMeta writes an index metadata value.
func (s *ParagraphStore) SetMeta(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[key] = value
	return nil
}

// Close is a no-op for the memory store.
func (s *ParagraphStore) Close() error {
	return nil
}
