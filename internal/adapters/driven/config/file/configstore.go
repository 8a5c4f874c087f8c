package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.toml"

const configHeader = "# Insight settings. Edit by hand or with `insight config set <key> <value>`.\n\n"

// keySegment is one dot-separated part of a key.
var keySegment = regexp.MustCompile(`^[a-z0-9_]+$`)

// ConfigStore keeps settings in config.toml. Dotted keys are written as
// nested tables, so "index.strategy" lands in an [index] table.
//
// Writes replace the file through a rename, so a crash never leaves it half
// written, and the in-memory values change only once the write succeeded.
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// NewConfigStore opens the store in configDir, defaulting to ~/.insight.
// The directory is created if needed; a missing file is an empty store.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".insight")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(configDir, ConfigFileName)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory values with the file's.
func (s *ConfigStore) Reload() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		raw, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	doc := map[string]any{}
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.values = flatten(doc, "")
	s.mu.Unlock()
	return nil
}

// Get returns the value stored under key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns key as a string, or "" when unset or not a string.
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt returns key as an int, or 0 when unset or not an integer.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	}
	return 0
}

// GetDuration reads key as a Go duration string or as whole seconds.
func (s *ConfigStore) GetDuration(key string) time.Duration {
	v, _ := s.Get(key)
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0
		}
		return parsed
	case int64:
		return time.Duration(d) * time.Second
	case int:
		return time.Duration(d) * time.Second
	}
	return 0
}

// Set stores value under key. Durations are kept in their string form.
func (s *ConfigStore) Set(key string, value any) error {
	if err := validKey(key); err != nil {
		return err
	}
	if d, ok := value.(time.Duration); ok {
		value = d.String()
	}
	return s.update(func(m map[string]any) { m[key] = value })
}

// Unset removes key.
func (s *ConfigStore) Unset(key string) error {
	if _, ok := s.Get(key); !ok {
		return nil
	}
	return s.update(func(m map[string]any) { delete(m, key) })
}

// Keys returns the stored keys in sorted order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// update applies change to a copy of the values and keeps the copy only if
// it was written.
func (s *ConfigStore) update(change func(map[string]any)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.values)
	change(next)
	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *ConfigStore) write(values map[string]any) error {
	doc, err := nest(values)
	if err != nil {
		return err
	}
	body, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.WriteString(configHeader)
	if err == nil {
		_, err = tmp.Write(body)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o600)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), s.path)
	}
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: config key is empty", domain.ErrInvalidInput)
	}
	for _, seg := range strings.Split(key, ".") {
		if !keySegment.MatchString(seg) {
			return fmt.Errorf("%w: invalid config key %q", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// flatten turns nested tables into dotted keys.
func flatten(doc map[string]any, prefix string) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			maps.Copy(out, flatten(table, k))
			continue
		}
		out[k] = v
	}
	return out
}

// nest is the inverse of flatten. A key that is both a value and a table
// prefix, like "a" and "a.b", cannot be written.
func nest(values map[string]any) (map[string]any, error) {
	doc := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(values)) {
		parts := strings.Split(key, ".")
		table := doc
		for i, part := range parts[:len(parts)-1] {
			child, exists := table[part]
			if !exists {
				child = make(map[string]any)
				table[part] = child
			}
			sub, ok := child.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: config key %q conflicts with %q",
					domain.ErrInvalidInput, key, strings.Join(parts[:i+1], "."))
			}
			table = sub
		}
		leaf := parts[len(parts)-1]
		if _, isTable := table[leaf].(map[string]any); isTable {
			return nil, fmt.Errorf("%w: config key %q conflicts with a table", domain.ErrInvalidInput, key)
		}
		table[leaf] = values[key]
	}
	return doc, nil
}
