// Package driving holds the use-case interfaces the CLI, TUI and MCP server
// call: search, journal, ingest, watch, index maintenance and settings.
// The services package implements them.
package driving
