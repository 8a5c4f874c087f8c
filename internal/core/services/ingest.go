package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Ingest outcomes reported to the Recorder.
const (
	outcomeInserted  = "inserted"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)

// DefaultIngestBatchSize is the number of units embedded per batch.
const DefaultIngestBatchSize = 32

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithCorpusReader enables IngestFile.
func WithCorpusReader(r driven.CorpusReader) IngestOption {
	return func(s *IngestService) { s.reader = r }
}

// WithRunStore records finished runs.
func WithRunStore(r driven.RunStore) IngestOption {
	return func(s *IngestService) { s.runs = r }
}

// WithIngestRecorder reports ingestion outcomes and the index size.
func WithIngestRecorder(r driven.Recorder) IngestOption {
	return func(s *IngestService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithProgressInterval sets the number of records between progress reports.
func WithProgressInterval(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.progressInterval = n
		}
	}
}

// WithBatchSize sets the number of units embedded per batch.
func WithBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithWriterLock shares the index writer lock with other services that
// write to the same index.
func WithWriterLock(mu *sync.Mutex) IngestOption {
	return func(s *IngestService) {
		if mu != nil {
			s.writer = mu
		}
	}
}

// IngestService merges, embeds and inserts corpus paragraphs. At most one
// run writes to the index at a time; a second caller gets
// domain.ErrIngestInProgress instead of waiting.
type IngestService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	pipeline driven.PostProcessorPipeline
	reader   driven.CorpusReader
	runs     driven.RunStore
	recorder driven.Recorder

	progressInterval int
	batchSize        int

	writer *sync.Mutex

	mu     sync.RWMutex
	status driving.IngestStatus
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	pipeline driven.PostProcessorPipeline,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		embedder:         embedder,
		index:            index,
		pipeline:         pipeline,
		recorder:         driven.NopRecorder{},
		progressInterval: domain.DefaultProgressInterval,
		batchSize:        DefaultIngestBatchSize,
		writer:           &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the state of the current or last run.
func (s *IngestService) Status() driving.IngestStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IngestFile reads a corpus file and ingests its paragraphs.
func (s *IngestService) IngestFile(
	ctx context.Context, path string, author *domain.AuthorTag, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("%w: no corpus reader configured", domain.ErrNotImplemented)
	}

	units, err := s.reader.ReadParagraphs(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	return s.Ingest(ctx, domain.IngestRequest{
		SourceFile: path,
		Units:      units,
		Author:     author,
	}, opts)
}

// Ingest merges the paragraphs of one document into units, embeds them and
// inserts every unit whose DocumentID is not yet indexed. A unit that fails
// to embed is skipped and counted; the run continues. Records are committed
// individually, so an interrupted run leaves the index consistent.
func (s *IngestService) Ingest(
	ctx context.Context, req domain.IngestRequest, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	if !s.writer.TryLock() {
		return nil, domain.ErrIngestInProgress
	}
	defer s.writer.Unlock()

	source := filepath.Base(strings.TrimSpace(req.SourceFile))
	if source == "" || source == "." || source == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: source file is empty", domain.ErrInvalidInput)
	}
	if s.embedder == nil || !s.embedder.Ready() {
		return nil, domain.ErrNotReady
	}

	author, err := resolveAuthor(source, req.Author)
	if err != nil {
		return nil, err
	}

	logger.Section("Ingest " + source)

	paragraphs := req.ParagraphUnits()
	units, err := s.pipeline.Process(ctx, paragraphs)
	if err != nil {
		return nil, fmt.Errorf("process paragraphs: %w", err)
	}

	started := time.Now()
	report := &domain.IngestReport{
		RunID:      uuid.NewString(),
		SourceFile: source,
		Author:     author,
		Units:      len(units),
	}
	logger.Debug("Run %s: %d paragraphs merged into %d units (author=%s)",
		report.RunID, len(paragraphs), len(units), author)

	s.setStatus(driving.IngestStatus{
		Running:    true,
		RunID:      report.RunID,
		SourceFile: source,
		Total:      len(units),
	})

	runErr := s.replace(ctx, report, opts)
	if runErr == nil {
		runErr = s.run(ctx, report, units, opts)
	}
	s.finish(ctx, report, runErr, started, opts)

	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

// resolveAuthor prefers an explicit tag over filename classification.
func resolveAuthor(source string, override *domain.AuthorTag) (domain.AuthorTag, error) {
	if override == nil {
		return domain.ClassifyAuthor(source), nil
	}
	if !override.IsValid() {
		return "", fmt.Errorf("%w: unknown author %q", domain.ErrInvalidInput, *override)
	}
	return *override, nil
}

func (s *IngestService) replace(ctx context.Context, report *domain.IngestReport, opts domain.IngestOptions) error {
	if !opts.Replace {
		return nil
	}
	n, err := s.index.DeleteBySource(ctx, report.SourceFile)
	if err != nil {
		return fmt.Errorf("replace %s: %w", report.SourceFile, err)
	}
	report.Replaced = n
	if n > 0 {
		logger.Info("Removed %d existing records of %s", n, report.SourceFile)
	}
	return nil
}

// progress tracks counters for one run and emits reports at the interval.
type progress struct {
	report   *domain.IngestReport
	interval int
	fn       func(domain.IngestProgress)
	recorder driven.Recorder

	processed int
}

func (p *progress) record(event domain.IngestEvent, documentID string, err error) {
	p.processed++
	switch event {
	case domain.IngestEventInserted:
		p.report.Inserted++
		p.recorder.IngestRecord(outcomeInserted)
	case domain.IngestEventDuplicate:
		p.report.Skipped++
		p.recorder.IngestRecord(outcomeDuplicate)
	case domain.IngestEventFailed:
		p.report.Failed++
		p.recorder.IngestRecord(outcomeFailed)
	}
	if p.processed%p.interval == 0 {
		p.emit(event, documentID, err)
	}
}

func (p *progress) emit(event domain.IngestEvent, documentID string, err error) {
	if p.fn == nil {
		return
	}
	p.fn(domain.IngestProgress{
		RunID:      p.report.RunID,
		SourceFile: p.report.SourceFile,
		Event:      event,
		DocumentID: documentID,
		Err:        err,
		Processed:  p.processed,
		Total:      p.report.Units,
		Inserted:   p.report.Inserted,
		Skipped:    p.report.Skipped,
		Failed:     p.report.Failed,
	})
}

func (s *IngestService) run(
	ctx context.Context, report *domain.IngestReport, units []domain.ParagraphUnit, opts domain.IngestOptions,
) error {
	p := &progress{report: report, interval: s.progressInterval, fn: opts.Progress, recorder: s.recorder}

	for start := 0; start < len(units); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+s.batchSize, len(units))
		if err := s.ingestBatch(ctx, report, units[start:end], p); err != nil {
			return err
		}
		s.mu.Lock()
		s.status.Processed = p.processed
		s.mu.Unlock()
	}
	return nil
}

// ingestBatch embeds the new units of a batch and inserts them. Units whose
// ID is already indexed are skipped without embedding.
func (s *IngestService) ingestBatch(
	ctx context.Context, report *domain.IngestReport, batch []domain.ParagraphUnit, p *progress,
) error {
	pending := make([]domain.ParagraphRecord, 0, len(batch))
	for _, u := range batch {
		id := domain.DocumentID(report.SourceFile, u.Index)
		exists, err := s.index.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("check %s: %w", id, err)
		}
		if exists {
			logger.Debug("Skipping existing %s", id)
			p.record(domain.IngestEventDuplicate, id, nil)
			continue
		}
		pending = append(pending, domain.ParagraphRecord{
			DocumentID:     id,
			Text:           u.Text,
			SourceFile:     report.SourceFile,
			ParagraphIndex: u.Index,
			Author:         report.Author,
		})
	}
	if len(pending) == 0 {
		return nil
	}

	vectors := s.embed(ctx, pending)
	for i, rec := range pending {
		if vectors[i].err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn("Skipping %s: %v", rec.DocumentID, vectors[i].err)
			p.record(domain.IngestEventFailed, rec.DocumentID, vectors[i].err)
			continue
		}

		rec.Embedding = vectors[i].vec
		inserted, err := s.index.Insert(ctx, rec)
		if err != nil {
			return fmt.Errorf("insert %s: %w", rec.DocumentID, err)
		}
		if inserted {
			p.record(domain.IngestEventInserted, rec.DocumentID, nil)
		} else {
			p.record(domain.IngestEventDuplicate, rec.DocumentID, nil)
		}
	}
	return nil
}

type embedResult struct {
	vec []float32
	err error
}

// embed embeds the batch in one call and falls back to one call per record
// when the batch fails, so a single bad text only costs its own record.
func (s *IngestService) embed(ctx context.Context, recs []domain.ParagraphRecord) []embedResult {
	texts := make([]string, len(recs))
	for i, rec := range recs {
		texts[i] = rec.Text
	}

	out := make([]embedResult, len(recs))
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err == nil && len(vectors) == len(texts) {
		for i, v := range vectors {
			out[i] = embedResult{vec: v}
		}
		return out
	}
	if err == nil {
		err = fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbeddingFailed, len(vectors), len(texts))
	}
	logger.Debug("Batch embedding failed (%v), retrying individually", err)

	for i, text := range texts {
		if ctx.Err() != nil {
			out[i] = embedResult{err: ctx.Err()}
			continue
		}
		v, err := s.embedder.Embed(ctx, text)
		out[i] = embedResult{vec: v, err: err}
	}
	return out
}

func (s *IngestService) finish(
	ctx context.Context, report *domain.IngestReport, runErr error, started time.Time, opts domain.IngestOptions,
) {
	processed := report.Inserted + report.Skipped + report.Failed
	s.setStatus(driving.IngestStatus{
		RunID:      report.RunID,
		SourceFile: report.SourceFile,
		Processed:  processed,
		Total:      report.Units,
	})

	if opts.Progress != nil {
		opts.Progress(domain.IngestProgress{
			RunID:      report.RunID,
			SourceFile: report.SourceFile,
			Event:      domain.IngestEventDone,
			Err:        runErr,
			Processed:  processed,
			Total:      report.Units,
			Inserted:   report.Inserted,
			Skipped:    report.Skipped,
			Failed:     report.Failed,
		})
	}

	// Bookkeeping must survive a cancelled run.
	bg := context.WithoutCancel(ctx)

	if n, err := s.index.Count(bg); err == nil {
		s.recorder.SetIndexSize(n)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Warn("Ingestion of %s cancelled after %d of %d units", report.SourceFile, processed, report.Units)
		} else {
			logger.Error(runErr, "Ingestion of %s failed", report.SourceFile)
		}
	} else {
		logger.Info("Ingested %s: %d inserted, %d skipped, %d failed",
			report.SourceFile, report.Inserted, report.Skipped, report.Failed)
	}

	if s.runs == nil {
		return
	}
	run := domain.IngestRun{
		Report:     *report,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := s.runs.SaveRun(bg, run); err != nil {
		logger.Warn("Failed to record ingestion run %s: %v", report.RunID, err)
	}
}

func (s *IngestService) setStatus(status driving.IngestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}
