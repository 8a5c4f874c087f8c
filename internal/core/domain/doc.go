// Package domain holds insight's core types: paragraph records and their
// embeddings, the closed set of author tags and filters over them, search
// results, ingest and import reports, and settings.
//
// It imports only the standard library. Every other package depends on
// domain and never the reverse.
package domain
