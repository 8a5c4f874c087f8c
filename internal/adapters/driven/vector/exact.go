package vector

import (
	"github.com/custodia-labs/insight/internal/core/domain"
)

// exactSearcher compares the query against every stored vector.
type exactSearcher struct {
	entries []*entry
	pos     map[string]int
}

func newExactSearcher() *exactSearcher {
	return &exactSearcher{pos: make(map[string]int)}
}

func (s *exactSearcher) add(e *entry) {
	s.pos[e.rec.DocumentID] = len(s.entries)
	s.entries = append(s.entries, e)
}

func (s *exactSearcher) remove(id string) {
	i, ok := s.pos[id]
	if !ok {
		return
	}
	copy(s.entries[i:], s.entries[i+1:])
	s.entries[len(s.entries)-1] = nil
	s.entries = s.entries[:len(s.entries)-1]
	delete(s.pos, id)
	for j := i; j < len(s.entries); j++ {
		s.pos[s.entries[j].rec.DocumentID] = j
	}
}

func (s *exactSearcher) search(query []float32, k int, filter domain.AuthorFilter) []hit {
	return scan(s.entries, query, k, filter)
}

func (s *exactSearcher) reset() {
	s.entries = nil
	s.pos = make(map[string]int)
}

// scan scores every entry matching the filter and keeps the best k.
func scan(entries []*entry, query []float32, k int, filter domain.AuthorFilter) []hit {
	hits := make([]hit, 0, len(entries))
	for _, e := range entries {
		if !filter.Matches(e.rec.Author) {
			continue
		}
		hits = append(hits, hit{e: e, score: domain.CosineSimilarity(query, e.rec.Embedding)})
	}
	return topK(hits, k)
}
