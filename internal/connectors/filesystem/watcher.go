package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// Watch reports created, updated and deleted corpus files below root.
// Subdirectories, including ones created later, are watched too. The channel
// is closed when ctx is done or the connector is closed.
func (c *Connector) Watch(ctx context.Context, root string) (<-chan driven.CorpusEvent, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errClosed
	}
	c.mu.Unlock()

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", root)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(w, root); err != nil {
		_ = w.Close()
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = w.Close()
		return nil, errClosed
	}
	c.watchers[w] = struct{}{}
	c.mu.Unlock()

	logger.Debug("Watching %s", root)

	events := make(chan driven.CorpusEvent)
	go c.run(ctx, w, root, events)
	return events, nil
}

func (c *Connector) run(ctx context.Context, w *fsnotify.Watcher, root string, out chan<- driven.CorpusEvent) {
	defer close(out)
	defer c.release(w)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				c.watchNewDir(w, root, event.Name)
			}
			change := c.handleFsEvent(root, event)
			if change == nil {
				continue
			}
			select {
			case out <- *change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", root, err)
		}
	}
}

// release closes w and forgets it.
func (c *Connector) release(w *fsnotify.Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.watchers[w]; ok {
		_ = w.Close()
		delete(c.watchers, w)
	}
}

// watchNewDir adds a newly created, non-hidden directory to the watch.
func (c *Connector) watchNewDir(w *fsnotify.Watcher, root, path string) {
	rel, err := filepath.Rel(root, path)
	if err != nil || isHidden(rel) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := addTree(w, path); err != nil {
		logger.Warn("watch %s: %v", path, err)
	}
}

// handleFsEvent converts an fsnotify event to a corpus event, or nil when
// the event is irrelevant: hidden or unsupported files, directories, and
// chmod-only changes.
func (c *Connector) handleFsEvent(root string, event fsnotify.Event) *driven.CorpusEvent {
	rel, err := filepath.Rel(root, event.Name)
	if err != nil || isHidden(rel) {
		return nil
	}
	if !c.registry.Supports(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &driven.CorpusEvent{Op: driven.CorpusDeleted, Path: event.Name}

	case event.Has(fsnotify.Create):
		if isDir(event.Name) {
			return nil
		}
		return &driven.CorpusEvent{Op: driven.CorpusCreated, Path: event.Name}

	case event.Has(fsnotify.Write):
		if isDir(event.Name) {
			return nil
		}
		return &driven.CorpusEvent{Op: driven.CorpusUpdated, Path: event.Name}
	}
	return nil
}

// addTree watches dir and every non-hidden directory below it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(dir, path)
		if isHidden(rel) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
