package vector

import (
	"container/heap"
	"math"
	"math/rand"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// HNSWParams tunes the graph.
type HNSWParams struct {
	// M is the number of neighbours kept per node above layer 0 (2*M on layer 0).
	M int

	// EfConstruction is the candidate list size while inserting.
	EfConstruction int

	// EfSearch is the minimum candidate list size while searching.
	EfSearch int

	// Overfetch multiplies k when a filter is present.
	Overfetch int

	// Seed fixes level assignment so rebuilt graphs are identical.
	Seed int64
}

type hnswNode struct {
	e       *entry
	level   int
	friends [][]int
	deleted bool
}

// hnswSearcher is a hierarchical navigable small-world graph over cosine
// distance. Removal tombstones nodes; the graph is rebuilt once tombstones
// outnumber live nodes.
type hnswSearcher struct {
	params    HNSWParams
	levelMult float64
	rng       *rand.Rand

	nodes    []*hnswNode
	byID     map[string]int
	entry    int
	maxLevel int

	live      int
	perAuthor map[domain.AuthorTag]int
}

func newHNSWSearcher(p HNSWParams) *hnswSearcher {
	if p.M < 2 {
		p.M = domain.DefaultHNSWM
	}
	if p.EfConstruction < p.M {
		p.EfConstruction = domain.DefaultHNSWEfConstruction
	}
	if p.EfSearch < 1 {
		p.EfSearch = domain.DefaultHNSWEfSearch
	}
	if p.Overfetch < domain.MinOverfetchFactor {
		p.Overfetch = domain.MinOverfetchFactor
	}
	s := &hnswSearcher{
		params:    p,
		levelMult: 1 / math.Log(float64(p.M)),
	}
	s.reset()
	return s
}

func (s *hnswSearcher) reset() {
	s.rng = rand.New(rand.NewSource(s.params.Seed))
	s.nodes = nil
	s.byID = make(map[string]int)
	s.entry = -1
	s.maxLevel = 0
	s.live = 0
	s.perAuthor = make(map[domain.AuthorTag]int)
}

func distance(a, b []float32) float64 {
	return 1 - domain.CosineSimilarity(a, b)
}

func (s *hnswSearcher) maxFriends(level int) int {
	if level == 0 {
		return 2 * s.params.M
	}
	return s.params.M
}

func (s *hnswSearcher) randomLevel() int {
	return int(math.Floor(-math.Log(1-s.rng.Float64()) * s.levelMult))
}

func (s *hnswSearcher) add(e *entry) {
	if _, ok := s.byID[e.rec.DocumentID]; ok {
		return
	}

	level := s.randomLevel()
	idx := len(s.nodes)
	node := &hnswNode{e: e, level: level, friends: make([][]int, level+1)}
	s.nodes = append(s.nodes, node)
	s.byID[e.rec.DocumentID] = idx
	s.live++
	s.perAuthor[e.rec.Author]++

	if s.entry < 0 {
		s.entry = idx
		s.maxLevel = level
		return
	}

	q := e.rec.Embedding
	ep := s.entry
	for l := s.maxLevel; l > level; l-- {
		ep = s.greedy(q, ep, l)
	}

	for l := min(level, s.maxLevel); l >= 0; l-- {
		cands := s.searchLayer(q, ep, s.params.EfConstruction, l)
		neighbours := selectClosest(cands, s.params.M)
		node.friends[l] = neighbours
		for _, n := range neighbours {
			s.link(n, idx, l)
		}
		if len(cands) > 0 {
			ep = cands[0].idx
		}
	}

	if level > s.maxLevel {
		s.maxLevel = level
		s.entry = idx
	}
}

// link adds idx to n's friend list on level l, pruning to the closest
// maxFriends when the list overflows.
func (s *hnswSearcher) link(n, idx, l int) {
	nn := s.nodes[n]
	nn.friends[l] = append(nn.friends[l], idx)
	limit := s.maxFriends(l)
	if len(nn.friends[l]) <= limit {
		return
	}
	cands := make([]candidate, 0, len(nn.friends[l]))
	for _, f := range nn.friends[l] {
		cands = append(cands, candidate{idx: f, dist: distance(nn.e.rec.Embedding, s.nodes[f].e.rec.Embedding)})
	}
	sortCandidates(cands)
	nn.friends[l] = selectClosest(cands, limit)
}

func (s *hnswSearcher) greedy(q []float32, ep, level int) int {
	cur := ep
	curDist := distance(q, s.nodes[cur].e.rec.Embedding)
	for changed := true; changed; {
		changed = false
		for _, f := range s.nodes[cur].friends[level] {
			if d := distance(q, s.nodes[f].e.rec.Embedding); d < curDist {
				cur, curDist, changed = f, d, true
			}
		}
	}
	return cur
}

// searchLayer returns up to ef nodes on one level closest to q, sorted by
// ascending distance. Tombstoned nodes are traversed and returned; callers
// drop them.
func (s *hnswSearcher) searchLayer(q []float32, ep, ef, level int) []candidate {
	visited := map[int]struct{}{ep: {}}
	d := distance(q, s.nodes[ep].e.rec.Embedding)
	frontier := &minHeap{{idx: ep, dist: d}}
	best := &maxHeap{{idx: ep, dist: d}}

	for frontier.Len() > 0 {
		c := heap.Pop(frontier).(candidate)
		if c.dist > (*best)[0].dist && best.Len() >= ef {
			break
		}
		node := s.nodes[c.idx]
		if level >= len(node.friends) {
			continue
		}
		for _, f := range node.friends[level] {
			if _, seen := visited[f]; seen {
				continue
			}
			visited[f] = struct{}{}
			fd := distance(q, s.nodes[f].e.rec.Embedding)
			if best.Len() < ef || fd < (*best)[0].dist {
				heap.Push(frontier, candidate{idx: f, dist: fd})
				heap.Push(best, candidate{idx: f, dist: fd})
				if best.Len() > ef {
					heap.Pop(best)
				}
			}
		}
	}

	out := make([]candidate, best.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(best).(candidate)
	}
	return out
}

// search over-fetches k*Overfetch candidates when filtered and falls back to
// a linear scan if the graph walk finds fewer matches than exist.
func (s *hnswSearcher) search(query []float32, k int, filter domain.AuthorFilter) []hit {
	if s.live == 0 || k <= 0 {
		return nil
	}

	want := k
	if !filter.IsEmpty() {
		want = k * s.params.Overfetch
	}
	ef := max(s.params.EfSearch, want)

	ep := s.entry
	for l := s.maxLevel; l > 0; l-- {
		ep = s.greedy(query, ep, l)
	}
	cands := s.searchLayer(query, ep, ef, 0)

	hits := make([]hit, 0, len(cands))
	for _, c := range cands {
		n := s.nodes[c.idx]
		if n.deleted || !filter.Matches(n.e.rec.Author) {
			continue
		}
		hits = append(hits, hit{e: n.e, score: domain.CosineSimilarity(query, n.e.rec.Embedding)})
	}

	if len(hits) < min(k, s.matching(filter)) {
		return scan(s.liveEntries(), query, k, filter)
	}
	return topK(hits, k)
}

func (s *hnswSearcher) matching(filter domain.AuthorFilter) int {
	if filter.IsEmpty() {
		return s.live
	}
	n := 0
	for _, tag := range filter.Tags() {
		n += s.perAuthor[tag]
	}
	return n
}

func (s *hnswSearcher) liveEntries() []*entry {
	out := make([]*entry, 0, s.live)
	for _, n := range s.nodes {
		if !n.deleted {
			out = append(out, n.e)
		}
	}
	return out
}

func (s *hnswSearcher) remove(id string) {
	idx, ok := s.byID[id]
	if !ok {
		return
	}
	n := s.nodes[idx]
	n.deleted = true
	delete(s.byID, id)
	s.live--
	s.perAuthor[n.e.rec.Author]--

	if tombstones := len(s.nodes) - s.live; tombstones > s.live {
		s.rebuild()
	}
}

func (s *hnswSearcher) rebuild() {
	live := s.liveEntries()
	s.reset()
	for _, e := range live {
		s.add(e)
	}
}

// size returns the number of live nodes.
func (s *hnswSearcher) size() int {
	return s.live
}

type candidate struct {
	idx  int
	dist float64
}

func sortCandidates(c []candidate) {
	h := minHeap(c)
	heap.Init(&h)
	out := make([]candidate, 0, len(c))
	for h.Len() > 0 {
		out = append(out, heap.Pop(&h).(candidate))
	}
	copy(c, out)
}

func selectClosest(sorted []candidate, m int) []int {
	n := min(m, len(sorted))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = sorted[i].idx
	}
	return out
}

type minHeap []candidate

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i].dist < h[j].dist }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type maxHeap []candidate

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[i].dist > h[j].dist }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
