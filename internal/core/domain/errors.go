package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// ErrNotReady indicates the embedder has not completed Prepare.
	// Callers may show a loading state and retry once preparation finishes.
	ErrNotReady = errors.New("embedder not ready")

	// Configuration errors. These are fatal and never retried by the core.

	// ErrVocabulary indicates the tokenizer vocabulary is missing or incomplete.
	ErrVocabulary = errors.New("vocabulary unavailable")

	// ErrModelUnavailable indicates model assets could not be loaded.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrDimensionMismatch indicates a vector does not match the configured dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrCorruptIndex indicates the persisted index could not be read back.
	ErrCorruptIndex = errors.New("corrupt index")

	// Runtime errors.

	// ErrEmbeddingFailed indicates inference failed for one or more texts.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrIngestInProgress indicates another ingestion currently holds the writer.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrLLMUnavailable indicates no rephrasing service is configured.
	// Journal mode is disabled without one.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrIndexPopulated indicates a bulk import was refused because the index has data.
	ErrIndexPopulated = errors.New("index already populated")

	// ErrBundleFormat indicates a bulk import bundle could not be decoded.
	ErrBundleFormat = errors.New("invalid bundle format")

	// ErrUnsupportedFormat indicates no normaliser handles a corpus file.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// DimensionError describes a vector whose length disagrees with the index.
// It unwraps to ErrDimensionMismatch.
type DimensionError struct {
	// Expected is the configured dimension.
	Expected int

	// Actual is the dimension that was encountered.
	Actual int

	// Context names where the mismatch was detected (e.g. a document ID).
	Context string
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch (%s): expected %d, got %d", e.Context, e.Expected, e.Actual)
}

// Unwrap allows errors.Is(err, ErrDimensionMismatch).
func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// CheckDimension returns a DimensionError when len(v) differs from expected.
func CheckDimension(v []float32, expected int, context string) error {
	if len(v) != expected {
		return &DimensionError{Expected: expected, Actual: len(v), Context: context}
	}
	return nil
}
