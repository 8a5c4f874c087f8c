package vector

import (
	"sort"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// entry is one indexed record with its insertion sequence.
type entry struct {
	rec domain.ParagraphRecord
	seq uint64
}

type hit struct {
	e     *entry
	score float64
}

// searcher is an in-memory nearest-neighbour structure. Callers serialise
// writes; concurrent searches are safe between writes.
type searcher interface {
	add(e *entry)
	remove(id string)
	search(query []float32, k int, filter domain.AuthorFilter) []hit
	reset()
}

// sortHits orders by descending score, then ascending insertion sequence.
func sortHits(hits []hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].e.seq < hits[j].e.seq
	})
}

func topK(hits []hit, k int) []hit {
	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
