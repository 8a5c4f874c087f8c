package services

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// importBatchSize is the number of bundle records inserted per batch.
const importBatchSize = 256

// bundleRecord is one entry of a bulk import bundle. The embedding is a
// base64 encoded little-endian float32 array.
type bundleRecord struct {
	DocumentID  string `json:"document_id"`
	Text        string `json:"text"`
	SourceFile  string `json:"source_file"`
	ParagraphID int    `json:"paragraph_id"`
	Author      string `json:"author"`
	Embedding   string `json:"embedding"`
}

// IndexService manages the index as a whole: bundle import and export,
// totals and deletion.
type IndexService struct {
	index    driven.VectorIndex
	writer   *sync.Mutex
	recorder driven.Recorder
}

// NewIndexService creates an index service. Pass the writer lock shared
// with the IngestService so imports never interleave with ingestion.
// Both writer and recorder are optional.
func NewIndexService(index driven.VectorIndex, writer *sync.Mutex, recorder driven.Recorder) *IndexService {
	if writer == nil {
		writer = &sync.Mutex{}
	}
	if recorder == nil {
		recorder = driven.NopRecorder{}
	}
	return &IndexService{
		index:    index,
		writer:   writer,
		recorder: recorder,
	}
}

// ImportFile imports a bundle file. A missing file is reported as a skip.
func (s *IndexService) ImportFile(ctx context.Context, path string) (*domain.ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No bundle at %s", path)
			return &domain.ImportReport{Skipped: true, Reason: "bundle file not found"}, nil
		}
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()

	return s.Import(ctx, bufio.NewReader(f))
}

// Import seeds an empty index from a bundle. An index that already holds
// records is left untouched.
func (s *IndexService) Import(ctx context.Context, r io.Reader) (*domain.ImportReport, error) {
	if !s.writer.TryLock() {
		return nil, domain.ErrIngestInProgress
	}
	defer s.writer.Unlock()

	logger.Section("Bundle Import")

	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		logger.Info("Index already holds %d records, skipping import", count)
		return &domain.ImportReport{Skipped: true, Reason: domain.ErrIndexPopulated.Error()}, nil
	}

	recs, err := decodeBundle(ctx, r, s.index.Dimensions())
	if err != nil {
		return nil, err
	}

	report, err := s.insertAll(ctx, recs)
	if err != nil {
		return nil, err
	}

	s.reportSize(ctx)
	logger.Info("Imported %d records (%d duplicates)", report.Imported, report.Duplicates)
	return report, nil
}

// decodeBundle reads and validates every record before anything is written,
// so a bad record anywhere leaves the index untouched.
func decodeBundle(ctx context.Context, r io.Reader, dimension int) ([]domain.ParagraphRecord, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBundleFormat, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", domain.ErrBundleFormat)
	}

	var recs []domain.ParagraphRecord
	for n := 0; dec.More(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var br bundleRecord
		if err := dec.Decode(&br); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", domain.ErrBundleFormat, n, err)
		}
		rec, err := br.toRecord(dimension)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		recs = append(recs, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBundleFormat, err)
	}
	return recs, nil
}

// insertAll writes recs in batches. The index is empty on entry, so a
// failure part way is undone by clearing it.
func (s *IndexService) insertAll(ctx context.Context, recs []domain.ParagraphRecord) (*domain.ImportReport, error) {
	report := &domain.ImportReport{}
	for batch := range slices.Chunk(recs, importBatchSize) {
		err := ctx.Err()
		if err == nil {
			var ids []string
			ids, err = s.index.InsertBatch(ctx, batch)
			report.Imported += len(ids)
			report.Duplicates += len(batch) - len(ids)
		}
		if err != nil {
			s.rollback(ctx)
			return nil, fmt.Errorf("import: %w", err)
		}
	}
	return report, nil
}

// rollback clears records written by a failed import. It runs even when
// ctx is cancelled.
func (s *IndexService) rollback(ctx context.Context) {
	n, err := s.index.DeleteAll(context.WithoutCancel(ctx))
	if err != nil {
		logger.Error(err, "Rolling back partial import")
		return
	}
	if n > 0 {
		logger.Warn("Import failed, removed %d partially imported records", n)
	}
	s.recorder.SetIndexSize(0)
}

func (br bundleRecord) toRecord(dimension int) (domain.ParagraphRecord, error) {
	source := strings.TrimSpace(br.SourceFile)
	if source == "" {
		return domain.ParagraphRecord{}, fmt.Errorf("%w: source_file is empty", domain.ErrBundleFormat)
	}
	if strings.TrimSpace(br.Text) == "" {
		return domain.ParagraphRecord{}, fmt.Errorf("%w: text is empty", domain.ErrBundleFormat)
	}

	id := br.DocumentID
	if id == "" {
		id = domain.DocumentID(source, br.ParagraphID)
	}

	author, ok := domain.ParseAuthorTag(br.Author)
	if !ok {
		author = domain.ClassifyAuthor(source)
	}

	vec, err := decodeEmbedding(br.Embedding)
	if err != nil {
		return domain.ParagraphRecord{}, err
	}
	if err := domain.CheckDimension(vec, dimension, id); err != nil {
		return domain.ParagraphRecord{}, err
	}

	return domain.ParagraphRecord{
		DocumentID:     id,
		Text:           br.Text,
		SourceFile:     source,
		ParagraphIndex: br.ParagraphID,
		Author:         author,
		Embedding:      vec,
	}, nil
}

// decodeEmbedding reads a base64 little-endian float32 array.
func decodeEmbedding(s string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %w", domain.ErrBundleFormat, err)
	}
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: embedding has %d bytes", domain.ErrBundleFormat, len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}

// encodeEmbedding is the inverse of decodeEmbedding.
func encodeEmbedding(vec []float32) string {
	raw := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(f))
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// Export writes every record as a bundle, in insertion order.
func (s *IndexService) Export(ctx context.Context, w io.Writer) (int, error) {
	logger.Section("Bundle Export")

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("["); err != nil {
		return 0, err
	}

	n := 0
	err := s.index.Each(ctx, func(rec domain.ParagraphRecord) error {
		data, err := json.Marshal(bundleRecord{
			DocumentID:  rec.DocumentID,
			Text:        rec.Text,
			SourceFile:  rec.SourceFile,
			ParagraphID: rec.ParagraphIndex,
			Author:      rec.Author.Label(),
			Embedding:   encodeEmbedding(rec.Embedding),
		})
		if err != nil {
			return err
		}
		if n > 0 {
			if _, err := bw.WriteString(",\n"); err != nil {
				return err
			}
		}
		n++
		_, err = bw.Write(data)
		return err
	})
	if err != nil {
		return n, fmt.Errorf("export: %w", err)
	}

	if _, err := bw.WriteString("]\n"); err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, err
	}

	logger.Debug("Exported %d records", n)
	return n, nil
}

// Stats returns index totals.
func (s *IndexService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}
	s.recorder.SetIndexSize(stats.Total)
	return &stats, nil
}

// DeleteSource removes all records of a source file.
func (s *IndexService) DeleteSource(ctx context.Context, sourceFile string) (int, error) {
	sourceFile = strings.TrimSpace(sourceFile)
	if sourceFile == "" {
		return 0, fmt.Errorf("%w: source file is empty", domain.ErrInvalidInput)
	}
	if !s.writer.TryLock() {
		return 0, domain.ErrIngestInProgress
	}
	defer s.writer.Unlock()

	n, err := s.index.DeleteBySource(ctx, sourceFile)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", sourceFile, err)
	}
	logger.Info("Deleted %d records of %s", n, sourceFile)
	s.reportSize(ctx)
	return n, nil
}

// DeleteAll clears the index.
func (s *IndexService) DeleteAll(ctx context.Context) (int, error) {
	if !s.writer.TryLock() {
		return 0, domain.ErrIngestInProgress
	}
	defer s.writer.Unlock()

	n, err := s.index.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}
	logger.Info("Deleted %d records", n)
	s.recorder.SetIndexSize(0)
	return n, nil
}

func (s *IndexService) reportSize(ctx context.Context) {
	if n, err := s.index.Count(ctx); err == nil {
		s.recorder.SetIndexSize(n)
	}
}
