package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/insight/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// DBFileName is the database file name inside the data directory.
const DBFileName = "index.db"

// Store is a SQLite-based storage that provides access to the
// paragraph and run store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.insight/data/index.db.
// A file that is not a readable database fails with domain.ErrCorruptIndex.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".insight", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: opening %s: %w", domain.ErrCorruptIndex, dbPath, err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrCorruptIndex, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ParagraphStore returns a ParagraphStore interface backed by this store.
func (s *Store) ParagraphStore() driven.ParagraphStore {
	return &paragraphStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// ==================== Paragraph Store ====================

// paragraphStore implements driven.ParagraphStore.
type paragraphStore struct {
	store *Store
}

var _ driven.ParagraphStore = (*paragraphStore)(nil)

// Insert stores a record unless its document ID exists. The conflict check
// and the write are a single statement.
func (s *paragraphStore) Insert(ctx context.Context, rec domain.ParagraphRecord) (bool, error) {
	if !rec.Author.IsValid() {
		return false, fmt.Errorf("%w: author %q", domain.ErrInvalidInput, rec.Author)
	}
	if len(rec.Embedding) == 0 {
		return false, fmt.Errorf("%w: record %s has no embedding", domain.ErrInvalidInput, rec.DocumentID)
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO paragraphs (document_id, text, source_file, paragraph_index, author, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO NOTHING
	`, rec.DocumentID, rec.Text, rec.SourceFile, rec.ParagraphIndex, string(rec.Author),
		float32SliceToBytes(rec.Embedding))
	if err != nil {
		return false, fmt.Errorf("inserting paragraph %s: %w", rec.DocumentID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting paragraph %s: %w", rec.DocumentID, err)
	}
	return n == 1, nil
}

// Exists reports whether a document ID is stored.
func (s *paragraphStore) Exists(ctx context.Context, documentID string) (bool, error) {
	var one int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM paragraphs WHERE document_id = ?", documentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking paragraph %s: %w", documentID, err)
	}
	return true, nil
}

// Each calls fn for every record in insertion order.
func (s *paragraphStore) Each(ctx context.Context, fn func(domain.ParagraphRecord) error) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_id, text, source_file, paragraph_index, author, embedding
		FROM paragraphs ORDER BY seq
	`)
	if err != nil {
		return fmt.Errorf("querying paragraphs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanParagraph(rows)
		if err != nil {
			return err
		}
		if err := fn(*rec); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating paragraphs: %w", err)
	}
	return nil
}

// DeleteBySource removes all records of a source file and returns their IDs.
func (s *paragraphStore) DeleteBySource(ctx context.Context, sourceFile string) ([]string, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		"SELECT document_id FROM paragraphs WHERE source_file = ? ORDER BY seq", sourceFile)
	if err != nil {
		return nil, fmt.Errorf("querying source %s: %w", sourceFile, err)
	}
	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source %s: %w", sourceFile, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM paragraphs WHERE source_file = ?", sourceFile); err != nil {
		return nil, fmt.Errorf("deleting source %s: %w", sourceFile, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing delete: %w", err)
	}
	return ids, nil
}

// DeleteAll removes every record.
func (s *paragraphStore) DeleteAll(ctx context.Context) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM paragraphs")
	if err != nil {
		return 0, fmt.Errorf("deleting paragraphs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting paragraphs: %w", err)
	}
	return int(n), nil
}

// Count returns the number of stored records.
func (s *paragraphStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM paragraphs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting paragraphs: %w", err)
	}
	return n, nil
}

// CountByAuthor returns the number of records per author tag.
func (s *paragraphStore) CountByAuthor(ctx context.Context) (map[domain.AuthorTag]int, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT author, COUNT(*) FROM paragraphs GROUP BY author")
	if err != nil {
		return nil, fmt.Errorf("counting authors: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.AuthorTag]int)
	for rows.Next() {
		var author string
		var n int
		if err := rows.Scan(&author, &n); err != nil {
			return nil, fmt.Errorf("scanning author count: %w", err)
		}
		counts[domain.AuthorTag(author)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating author counts: %w", err)
	}
	return counts, nil
}

// GetMeta reads an index metadata value.
func (s *paragraphStore) GetMeta(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.store.db.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading meta %s: %w", key, err)
	}
	return value, true, nil
}

// SetMeta writes an index metadata value.
func (s *paragraphStore) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing meta %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the connection.
func (s *paragraphStore) Close() error {
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanParagraph scans a paragraph from *sql.Rows.
func scanParagraph(rows *sql.Rows) (*domain.ParagraphRecord, error) {
	var rec domain.ParagraphRecord
	var author string
	var embeddingBlob []byte

	if err := rows.Scan(&rec.DocumentID, &rec.Text, &rec.SourceFile,
		&rec.ParagraphIndex, &author, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("%w: scanning paragraph: %w", domain.ErrCorruptIndex, err)
	}

	rec.Author = domain.AuthorTag(author)
	if !rec.Author.IsValid() {
		return nil, fmt.Errorf("%w: paragraph %s has unknown author %q",
			domain.ErrCorruptIndex, rec.DocumentID, author)
	}
	if len(embeddingBlob) == 0 || len(embeddingBlob)%4 != 0 {
		return nil, fmt.Errorf("%w: paragraph %s has a %d-byte embedding",
			domain.ErrCorruptIndex, rec.DocumentID, len(embeddingBlob))
	}
	rec.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &rec, nil
}
