package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// DefaultWatchDebounce is how long a path must stay quiet before its
// changes are applied. Editors typically emit several events per save.
const DefaultWatchDebounce = 500 * time.Millisecond

// WatchService applies corpus changes to the index: created and updated
// files are re-ingested with Replace, deleted files are removed.
type WatchService struct {
	watcher  driven.CorpusWatcher
	ingest   driving.IngestService
	index    driving.IndexService
	debounce time.Duration
}

// NewWatchService creates a watch service. A non-positive debounce uses
// DefaultWatchDebounce.
func NewWatchService(
	watcher driven.CorpusWatcher,
	ingest driving.IngestService,
	index driving.IndexService,
	debounce time.Duration,
) *WatchService {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &WatchService{
		watcher:  watcher,
		ingest:   ingest,
		index:    index,
		debounce: debounce,
	}
}

// Watch blocks until ctx is done or the watcher stops.
func (s *WatchService) Watch(ctx context.Context, root string, opts domain.IngestOptions) error {
	events, err := s.watcher.Watch(ctx, root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	logger.Info("Watching %s for changes", root)

	pending := make(map[string]driven.CorpusOp)
	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				if len(pending) > 0 && ctx.Err() == nil {
					s.apply(ctx, pending, opts)
				}
				return nil
			}
			logger.Debug("Corpus %s: %s", ev.Op, ev.Path)
			// The latest change wins: a delete followed by a create re-ingests.
			pending[ev.Path] = ev.Op
			timer.Reset(s.debounce)

		case <-timer.C:
			pending = s.apply(ctx, pending, opts)
			if len(pending) > 0 {
				timer.Reset(s.debounce)
			}
		}
	}
}

// apply handles every pending change in path order and returns the changes
// that must be retried because the index writer was busy.
func (s *WatchService) apply(
	ctx context.Context, pending map[string]driven.CorpusOp, opts domain.IngestOptions,
) map[string]driven.CorpusOp {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	retry := make(map[string]driven.CorpusOp)
	for _, path := range paths {
		if ctx.Err() != nil {
			return retry
		}
		op := pending[path]
		err := s.applyOne(ctx, path, op, opts)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrIngestInProgress):
			retry[path] = op
		case errors.Is(err, domain.ErrNotFound):
			// The file vanished between the event and the read; a delete
			// event follows.
			logger.Debug("Skipping %s: %v", path, err)
		default:
			logger.Warn("Failed to apply %s for %s: %v", op, path, err)
		}
	}
	return retry
}

func (s *WatchService) applyOne(ctx context.Context, path string, op driven.CorpusOp, opts domain.IngestOptions) error {
	if op == driven.CorpusDeleted {
		_, err := s.index.DeleteSource(ctx, filepath.Base(path))
		return err
	}

	opts.Replace = true
	_, err := s.ingest.IngestFile(ctx, path, nil, opts)
	return err
}
