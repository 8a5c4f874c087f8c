// Package filesystem reads and watches corpus files on the local filesystem.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Connector implements the interfaces.
var (
	_ driven.CorpusReader  = (*Connector)(nil)
	_ driven.CorpusWatcher = (*Connector)(nil)
)

// errClosed is returned by Watch after Close.
var errClosed = errors.New("connector is closed")

// Connector lists, reads and watches corpus files.
type Connector struct {
	registry driven.NormaliserRegistry
	minChars int

	mu       sync.Mutex
	watchers map[*fsnotify.Watcher]struct{}
	closed   bool
}

// New creates a filesystem connector. Paragraphs of minChars characters or
// fewer are dropped when reading.
func New(registry driven.NormaliserRegistry, minChars int) *Connector {
	return &Connector{
		registry: registry,
		minChars: minChars,
		watchers: make(map[*fsnotify.Watcher]struct{}),
	}
}

// ReadParagraphs reads a corpus file and returns its paragraphs in source
// order, without paragraphs at or below the minimum length.
func (c *Connector) ReadParagraphs(ctx context.Context, path string) ([]domain.ParagraphUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw, err := c.registry.Paragraphs(ctx, path, content)
	if err != nil {
		return nil, err
	}

	units := make([]domain.ParagraphUnit, 0, len(raw))
	for i, p := range raw {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) > c.minChars {
			units = append(units, domain.ParagraphUnit{Index: i, Text: p})
		}
	}
	return units, nil
}

// List returns the supported, non-hidden corpus files below root in lexical
// order. A file root is returned as is when its format is supported.
func (c *Connector) List(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("root path error: %w: %s does not exist", domain.ErrNotFound, root)
		}
		return nil, fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		if !c.registry.Supports(root) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Base(root))
		}
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, _ := filepath.Rel(root, path)
		if isHidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if c.registry.Supports(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Close stops every active watch. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	for w := range c.watchers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(c.watchers, w)
	}
	return errors.Join(errs...)
}

// isHidden checks if a path contains any hidden component (starting with .).
// The current and parent directory entries are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
