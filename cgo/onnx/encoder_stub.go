//go:build !cgo

package onnx

import (
	"context"
	"fmt"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Encoder implements the interface.
var _ driven.TokenEncoder = (*Encoder)(nil)

// Encoder runs a sentence-transformer export.
// This is a stub for builds without CGO.
type Encoder struct {
	dimension int
}

// New creates an encoder.
// This is a stub for builds without CGO.
func New(_, _ string, dimension int) *Encoder {
	return &Encoder{dimension: dimension}
}

// Load always fails without CGO.
func (e *Encoder) Load(_ context.Context) error {
	return fmt.Errorf("%w: onnx backend requires a cgo build: %w", domain.ErrModelUnavailable, domain.ErrNotImplemented)
}

// Encode always fails without CGO.
func (e *Encoder) Encode(_ context.Context, _, _ [][]int64) (driven.EncoderOutput, error) {
	return driven.EncoderOutput{}, domain.ErrNotImplemented
}

// Dimensions returns the configured output size.
func (e *Encoder) Dimensions() int {
	return e.dimension
}

// Close is a no-op.
func (e *Encoder) Close() error {
	return nil
}
