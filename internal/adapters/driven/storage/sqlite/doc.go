// Package sqlite persists paragraph records and ingest runs in one SQLite
// file, index.db under the data directory. It uses modernc.org/sqlite, so
// no C toolchain is needed.
//
// Embeddings are little-endian float32 BLOBs and round-trip bit for bit.
// The schema is applied from the numbered files in migrations/ on open.
// The database runs in WAL mode with a single writer connection.
package sqlite
