package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func newJournal(t *testing.T, rephraser *mockRephraser, embedder *mockEmbedder) *JournalService {
	t.Helper()
	idx := newTestIndex(t)
	seed(t, idx,
		para("a", "prayers.txt", "grief sorrow mercy of God", domain.AuthorCompilations),
		para("b", "gleanings.txt", "the purpose of life is to know God", domain.AuthorBahaullah),
	)
	search := NewSearchService(embedder, idx, nil)
	if rephraser == nil {
		return NewJournalService(nil, search)
	}
	return NewJournalService(rephraser, search)
}

func TestJournalService_Available(t *testing.T) {
	assert.False(t, newJournal(t, nil, &mockEmbedder{}).Available())
	assert.True(t, newJournal(t, &mockRephraser{}, &mockEmbedder{}).Available())
}

func TestJournalService_Reflect(t *testing.T) {
	rephraser := &mockRephraser{out: "  grief and the mercy of God \n"}
	embedder := &mockEmbedder{}
	service := newJournal(t, rephraser, embedder)

	result, err := service.Reflect(context.Background(), "My grandmother passed away last week.", domain.SearchOptions{Limit: 1})

	require.NoError(t, err)
	assert.Equal(t, "grief and the mercy of God", result.Rephrased)
	assert.Equal(t, "My grandmother passed away last week.", rephraser.got)
	assert.Equal(t, "grief and the mercy of God", embedder.lastText)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "a", result.Results[0].DocumentID)
}

func TestJournalService_Reflect_Errors(t *testing.T) {
	t.Run("no rephraser", func(t *testing.T) {
		_, err := newJournal(t, nil, &mockEmbedder{}).Reflect(context.Background(), "entry", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("empty entry", func(t *testing.T) {
		rephraser := &mockRephraser{out: "x"}
		_, err := newJournal(t, rephraser, &mockEmbedder{}).Reflect(context.Background(), "   ", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, rephraser.calls)
	})

	t.Run("bad limit", func(t *testing.T) {
		rephraser := &mockRephraser{out: "x"}
		_, err := newJournal(t, rephraser, &mockEmbedder{}).Reflect(context.Background(), "entry", domain.SearchOptions{Limit: 99})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, rephraser.calls)
	})

	t.Run("embedder not ready", func(t *testing.T) {
		rephraser := &mockRephraser{out: "x"}
		_, err := newJournal(t, rephraser, &mockEmbedder{notReady: true}).Reflect(context.Background(), "entry", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrNotReady)
		assert.Zero(t, rephraser.calls)
	})

	t.Run("rephrase fails", func(t *testing.T) {
		rephraser := &mockRephraser{err: errBoom}
		_, err := newJournal(t, rephraser, &mockEmbedder{}).Reflect(context.Background(), "entry", domain.SearchOptions{})
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "rephrase entry")
	})

	t.Run("empty rephrase", func(t *testing.T) {
		rephraser := &mockRephraser{out: " \n "}
		_, err := newJournal(t, rephraser, &mockEmbedder{}).Reflect(context.Background(), "entry", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
