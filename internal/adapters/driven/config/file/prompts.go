package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptExt is the extension of prompt files in the prompt directory.
const promptExt = ".txt"

// defaultPrompts seed the prompt directory and stand in for missing or empty
// files.
//
//nolint:lll // Prompt content is not wrapped.
var defaultPrompts = map[string]string{
	driven.PromptJournalSystem: `You help a reader find passages in the Bahá'í writings that speak to what they have written in their journal.
You never answer the entry, give advice, or quote scripture. You only restate the entry as a short description of its spiritual themes, so it can be matched against passages by meaning.`,

	driven.PromptJournalRephrase: `Restate the following journal entry in two or three sentences that name its underlying spiritual themes (for example detachment, trust in God, service, grief, unity).
Return ONLY the restatement, nothing else.

Entry:
%s

Restatement:`,
}

const promptReadme = "# Insight Prompts\n\n" +
	"These prompts drive journal mode, which restates a journal entry before it is\n" +
	"searched against the index.\n\n" +
	"- `journal_system.txt`: system prompt sent to the rephrasing model\n" +
	"- `journal_rephrase.txt`: rephrase instruction; `%s` is replaced by the entry\n\n" +
	"Edits are picked up on the next journal entry. Delete a file to restore its default.\n"

// cachedPrompt is a prompt file's content as of its modification time.
type cachedPrompt struct {
	text    string
	modTime time.Time
}

// PromptStore serves journal prompts from user-editable files. A file is
// re-read when its modification time changes, so edits apply to a running
// TUI or MCP server. The directory is seeded on first Load.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

// NewPromptStore creates a prompt store over dir, defaulting to
// ~/.insight/prompts. Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".insight", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]cachedPrompt)}, nil
}

// Load returns the named prompt. Missing, empty or unreadable files fall
// back to the built-in prompt; a name with neither is ErrNotFound.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	text, err := s.read(name)
	if err == nil && text != "" {
		return text, nil
	}
	if def, ok := defaultPrompts[name]; ok {
		return def, nil
	}
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}
	return "", fmt.Errorf("load prompt %q: %w", name, err)
}

// read returns the trimmed file content, using the cache while the file is
// unchanged.
func (s *PromptStore) read(name string) (string, error) {
	path := s.Path(name)
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[name]; ok && c.modTime.Equal(info.ModTime()) {
		return c.text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime()}
	return text, nil
}

// Reload drops cached prompts so the next Load reads every file again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Path returns the file backing the named prompt.
func (s *PromptStore) Path(name string) string {
	return filepath.Join(s.dir, name+promptExt)
}

// SeedErr reports why the prompt directory could not be seeded, if it
// could not. Load keeps working from the built-in prompts regardless.
func (s *PromptStore) SeedErr() error {
	return s.seedErr
}

// seed writes the default prompts and README without replacing user files.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{filepath.Join(s.dir, "README.md"): promptReadme}
	for name, text := range defaultPrompts {
		files[s.Path(name)] = text + "\n"
	}
	for path, content := range files {
		err := writeIfAbsent(path, content)
		if err != nil && s.seedErr == nil {
			s.seedErr = fmt.Errorf("seed %s: %w", filepath.Base(path), err)
		}
	}
}

func writeIfAbsent(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
