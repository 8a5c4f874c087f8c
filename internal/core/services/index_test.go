package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

func bundleJSON(t *testing.T, recs ...bundleRecord) string {
	t.Helper()
	data, err := json.Marshal(recs)
	require.NoError(t, err)
	return string(data)
}

func TestEmbeddingEncoding(t *testing.T) {
	vec := []float32{0.25, -1, 3.4028235e38, 0}
	encoded := encodeEmbedding(vec)

	decoded, err := decodeEmbedding(encoded)
	require.NoError(t, err)
	assert.Equal(t, vec, decoded)

	// 1.0 little-endian is 00 00 80 3f.
	assert.Equal(t, "AACAPw==", encodeEmbedding([]float32{1}))

	_, err = decodeEmbedding("not base64!")
	assert.ErrorIs(t, err, domain.ErrBundleFormat)
	_, err = decodeEmbedding("AAA=")
	assert.ErrorIs(t, err, domain.ErrBundleFormat)
}

func TestIndexService_Import(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	rec := newMockRecorder()
	service := NewIndexService(idx, nil, rec)

	bundle := bundleJSON(t,
		bundleRecord{
			DocumentID:  "hidden-words_para_0",
			Text:        "O Son of Spirit! My first counsel is this",
			SourceFile:  "hidden-words.docx",
			ParagraphID: 0,
			Author:      "Bahá'u'lláh",
			Embedding:   encodeEmbedding(bagOfWords("first counsel")),
		},
		bundleRecord{
			Text:        "The gift of God to this enlightened age",
			SourceFile:  "paris-talks.txt",
			ParagraphID: 4,
			Embedding:   encodeEmbedding(bagOfWords("gift of God")),
		},
		bundleRecord{
			DocumentID: "hidden-words_para_0",
			Text:       "duplicate",
			SourceFile: "hidden-words.docx",
			Author:     "bahaullah",
			Embedding:  encodeEmbedding(bagOfWords("duplicate")),
		},
	)

	report, err := service.Import(ctx, strings.NewReader(bundle))
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 2, rec.indexSize)

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PerAuthor[domain.AuthorBahaullah])
	assert.Equal(t, 1, stats.PerAuthor[domain.AuthorAbdulBaha], "author derived from the filename")

	ok, err := idx.Exists(ctx, "paris-talks_para_4")
	require.NoError(t, err)
	assert.True(t, ok, "missing document_id derived from source and paragraph")
}

func TestIndexService_Import_SkipsPopulatedIndex(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	seed(t, idx, para("a", "a.txt", "existing", domain.AuthorOther))
	service := NewIndexService(idx, nil, nil)

	report, err := service.Import(ctx, strings.NewReader("this is not even parsed"))

	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, domain.ErrIndexPopulated.Error(), report.Reason)
	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexService_Import_Errors(t *testing.T) {
	good := bundleRecord{Text: "text", SourceFile: "a.txt", Embedding: encodeEmbedding(bagOfWords("text"))}

	tests := []struct {
		name    string
		bundle  string
		wantErr error
	}{
		{name: "not json", bundle: "hello", wantErr: domain.ErrBundleFormat},
		{name: "object instead of array", bundle: `{"document_id":"a"}`, wantErr: domain.ErrBundleFormat},
		{name: "bad record", bundle: `[{"paragraph_id":"x"}]`, wantErr: domain.ErrBundleFormat},
		{name: "truncated", bundle: strings.TrimSuffix(bundleJSON(t, good), "]"), wantErr: domain.ErrBundleFormat},
		{
			name:    "missing source",
			bundle:  bundleJSON(t, bundleRecord{Text: "t", Embedding: good.Embedding}),
			wantErr: domain.ErrBundleFormat,
		},
		{
			name:    "bad embedding",
			bundle:  bundleJSON(t, bundleRecord{Text: "t", SourceFile: "a.txt", Embedding: "%%%"}),
			wantErr: domain.ErrBundleFormat,
		},
		{
			name:    "wrong dimension",
			bundle:  bundleJSON(t, bundleRecord{Text: "t", SourceFile: "a.txt", Embedding: encodeEmbedding([]float32{1, 0})}),
			wantErr: domain.ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewIndexService(newTestIndex(t), nil, nil)

			_, err := service.Import(context.Background(), strings.NewReader(tt.bundle))

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// tabletRecords returns n valid records, more than one import batch when
// n exceeds importBatchSize.
func tabletRecords(n int) []bundleRecord {
	recs := make([]bundleRecord, n)
	for i := range recs {
		recs[i] = bundleRecord{
			DocumentID:  fmt.Sprintf("tablets_para_%d", i),
			Text:        fmt.Sprintf("Paragraph %d of the Tablets revealed after the Kitáb-i-Aqdas", i),
			SourceFile:  "tablets.txt",
			ParagraphID: i,
			Embedding:   encodeEmbedding(bagOfWords(fmt.Sprintf("tablet %d", i))),
		}
	}
	return recs
}

func TestIndexService_Import_BadRecordLeavesIndexEmpty(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	service := NewIndexService(idx, nil, nil)

	valid := tabletRecords(importBatchSize + 44)
	broken := append(valid, bundleRecord{Text: "short", SourceFile: "tablets.txt", ParagraphID: 999, Embedding: "AAA="})

	_, err := service.Import(ctx, strings.NewReader(bundleJSON(t, broken...)))
	require.ErrorIs(t, err, domain.ErrBundleFormat)
	assert.Contains(t, err.Error(), fmt.Sprintf("record %d", len(valid)))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "nothing written before the bad record")

	report, err := service.Import(ctx, strings.NewReader(bundleJSON(t, valid...)))
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, len(valid), report.Imported)
}

// failingIndex fails InsertBatch on the given call, after earlier batches
// were written.
type failingIndex struct {
	driven.VectorIndex
	calls  int
	failOn int
}

func (f *failingIndex) InsertBatch(ctx context.Context, recs []domain.ParagraphRecord) ([]string, error) {
	f.calls++
	if f.calls == f.failOn {
		return nil, errBoom
	}
	return f.VectorIndex.InsertBatch(ctx, recs)
}

func TestIndexService_Import_RollsBackFailedBatch(t *testing.T) {
	ctx := context.Background()
	idx := &failingIndex{VectorIndex: newTestIndex(t), failOn: 2}
	rec := newMockRecorder()
	service := NewIndexService(idx, nil, rec)
	bundle := bundleJSON(t, tabletRecords(importBatchSize*2)...)

	report, err := service.Import(ctx, strings.NewReader(bundle))
	require.ErrorIs(t, err, errBoom)
	assert.Nil(t, report)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "first batch rolled back")
	assert.Equal(t, 0, rec.indexSize)

	report, err = service.Import(ctx, strings.NewReader(bundle))
	require.NoError(t, err)
	assert.Equal(t, importBatchSize*2, report.Imported)
}

func TestIndexService_ImportFile(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file is a skip", func(t *testing.T) {
		service := NewIndexService(newTestIndex(t), nil, nil)

		report, err := service.ImportFile(ctx, filepath.Join(t.TempDir(), "embeddings.json"))

		require.NoError(t, err)
		assert.True(t, report.Skipped)
		assert.Equal(t, "bundle file not found", report.Reason)
	})

	t.Run("reads bundle", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "embeddings.json")
		bundle := bundleJSON(t, bundleRecord{Text: "text", SourceFile: "a.txt", Embedding: encodeEmbedding(bagOfWords("text"))})
		require.NoError(t, os.WriteFile(path, []byte(bundle), 0600))
		service := NewIndexService(newTestIndex(t), nil, nil)

		report, err := service.ImportFile(ctx, path)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Imported)
	})
}

func TestIndexService_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestIndex(t)
	seed(t, src,
		domain.ParagraphRecord{DocumentID: "hidden-words_para_0", Text: "O Son of Spirit!", SourceFile: "hidden-words.docx", Author: domain.AuthorBahaullah},
		domain.ParagraphRecord{DocumentID: "some-answered-questions_para_7", Text: "Know that nature", SourceFile: "some-answered-questions.docx", ParagraphIndex: 7, Author: domain.AuthorAbdulBaha},
		domain.ParagraphRecord{DocumentID: "notes_para_0", Text: "Notes", SourceFile: "notes.txt", Author: domain.AuthorOther},
	)

	var buf bytes.Buffer
	n, err := NewIndexService(src, nil, nil).Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Contains(t, buf.String(), `"author":"'Abdu'l-Bahá"`)

	dst := newTestIndex(t)
	report, err := NewIndexService(dst, nil, nil).Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Imported)

	var want, got []domain.ParagraphRecord
	require.NoError(t, src.Each(ctx, func(r domain.ParagraphRecord) error { want = append(want, r); return nil }))
	require.NoError(t, dst.Each(ctx, func(r domain.ParagraphRecord) error { got = append(got, r); return nil }))
	assert.Equal(t, want, got, "embedding bytes and order survive the round trip")
}

func TestIndexService_Export_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewIndexService(newTestIndex(t), nil, nil).Export(context.Background(), &buf)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.JSONEq(t, "[]", buf.String())
}

func TestIndexService_Deletes(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	seed(t, idx,
		para("a", "a.txt", "one", domain.AuthorOther),
		para("b", "a.txt", "two", domain.AuthorOther),
		para("c", "b.txt", "three", domain.AuthorOther),
	)
	rec := newMockRecorder()
	service := NewIndexService(idx, nil, rec)

	_, err := service.DeleteSource(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := service.DeleteSource(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, rec.indexSize)

	n, err = service.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, rec.indexSize)

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Equal(t, testDim, stats.Dimension)
}

func TestIndexService_WriterBusy(t *testing.T) {
	var mu sync.Mutex
	service := NewIndexService(newTestIndex(t), &mu, nil)
	mu.Lock()
	defer mu.Unlock()

	_, err := service.Import(context.Background(), strings.NewReader("[]"))
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)
	_, err = service.DeleteSource(context.Background(), "a.txt")
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)
	_, err = service.DeleteAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)
}
