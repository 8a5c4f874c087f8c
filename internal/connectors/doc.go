// Package connectors provides the sources the ingestion pipeline reads
// corpus documents from. Each connector knows how to list, read and watch
// documents of one source type.
package connectors
