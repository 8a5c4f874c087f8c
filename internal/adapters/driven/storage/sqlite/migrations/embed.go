// Package migrations holds the schema for the SQLite store, one numbered
// .up.sql/.down.sql pair per version.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
