package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/insight/internal/adapters/driven/vector"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/postprocessors"
)

const testDim = 16

// bagOfWords embeds text by hashing its words into testDim buckets, so
// texts sharing words score close to each other.
func bagOfWords(text string) []float32 {
	v := make([]float32, testDim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,;:!?'\"")))
		v[h.Sum32()%testDim]++
	}
	return domain.Normalize(v)
}

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	mu         sync.Mutex
	notReady   bool
	failOn     string // texts containing this fail to embed
	batchErr   error
	embedCalls int
	batchCalls int
	lastText   string
}

var _ driven.EmbeddingService = (*mockEmbedder)(nil)

func (m *mockEmbedder) Prepare(context.Context) error { return nil }

func (m *mockEmbedder) State() domain.EmbedderState {
	if m.notReady {
		return domain.EmbedderUninitialized
	}
	return domain.EmbedderReady
}

func (m *mockEmbedder) Ready() bool { return !m.notReady }

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.lastText = text
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.notReady {
		return nil, domain.ErrNotReady
	}
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, domain.ErrEmbeddingFailed
	}
	return bagOfWords(text), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if m.failOn != "" && strings.Contains(text, m.failOn) {
			return nil, domain.ErrEmbeddingFailed
		}
		out[i] = bagOfWords(text)
	}
	return out, ctx.Err()
}

func (m *mockEmbedder) Dimensions() int   { return testDim }
func (m *mockEmbedder) ModelName() string { return "bag-of-words" }
func (m *mockEmbedder) Close() error      { return nil }

// mockRecorder implements driven.Recorder and keeps what it saw.
type mockRecorder struct {
	mu        sync.Mutex
	searches  int
	filtered  int
	errors    int
	outcomes  map[string]int
	indexSize int
}

var _ driven.Recorder = (*mockRecorder)(nil)

func newMockRecorder() *mockRecorder {
	return &mockRecorder{outcomes: make(map[string]int)}
}

func (m *mockRecorder) ObserveSearch(_ time.Duration, _ int, filtered bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
	if filtered {
		m.filtered++
	}
	if err != nil {
		m.errors++
	}
}

func (m *mockRecorder) ObserveEmbed(time.Duration, int, error) {}

func (m *mockRecorder) IngestRecord(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *mockRecorder) SetIndexSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexSize = n
}

// mockRephraser implements driven.Rephraser for testing.
type mockRephraser struct {
	out   string
	err   error
	calls int
	got   string
}

var _ driven.Rephraser = (*mockRephraser)(nil)

func (m *mockRephraser) Rephrase(_ context.Context, entry string) (string, error) {
	m.calls++
	m.got = entry
	return m.out, m.err
}

func (m *mockRephraser) ModelName() string          { return "mock" }
func (m *mockRephraser) Ping(context.Context) error { return nil }
func (m *mockRephraser) Close() error               { return nil }

// mockReader implements driven.CorpusReader over an in-memory file map.
type mockReader struct {
	files map[string][]domain.ParagraphUnit
}

var _ driven.CorpusReader = (*mockReader)(nil)

func (m *mockReader) ReadParagraphs(ctx context.Context, path string) ([]domain.ParagraphUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	paragraphs, ok := m.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return paragraphs, nil
}

func (m *mockReader) List(context.Context, string) ([]string, error) {
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	return paths, nil
}

// mockWatcher implements driven.CorpusWatcher with a test-fed channel.
type mockWatcher struct {
	events chan driven.CorpusEvent
	err    error
}

var _ driven.CorpusWatcher = (*mockWatcher)(nil)

func (m *mockWatcher) Watch(context.Context, string) (<-chan driven.CorpusEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

func (m *mockWatcher) Close() error { return nil }

// newTestIndex opens an exact index over an in-memory store.
func newTestIndex(t *testing.T) *vector.Index {
	t.Helper()
	idx, err := vector.Open(context.Background(), memory.NewParagraphStore(), vector.Config{
		Dimension: testDim,
		Strategy:  domain.IndexStrategyExact,
		ModelName: "bag-of-words",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

// newTestPipeline builds the default pipeline with the given merge threshold.
func newTestPipeline(t *testing.T, threshold int) driven.PostProcessorPipeline {
	t.Helper()
	p, err := postprocessors.DefaultPipeline(domain.IngestSettings{MergeThreshold: threshold})
	require.NoError(t, err)
	return p
}

var errBoom = errors.New("boom")
