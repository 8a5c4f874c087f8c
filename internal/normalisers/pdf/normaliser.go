// Package pdf provides a Normaliser implementation for PDF documents.
// Only the text layer is read; scanned pages without text yield nothing.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Paragraphs extracts the plain text of every page and splits it on blank
// lines. An empty file has no paragraphs.
func (n *Normaliser) Paragraphs(_ context.Context, content []byte) ([]string, error) {
	if len(content) == 0 {
		return nil, nil
	}
	text, err := extract(content)
	if err != nil {
		return nil, err
	}
	return plaintext.Split(text), nil
}

// extract reads the text layer. The parser panics on some malformed files,
// so a panic is reported as invalid input.
func extract(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed pdf: %v", domain.ErrInvalidInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a pdf: %v", domain.ErrInvalidInput, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read text: %v", domain.ErrInvalidInput, err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: read text: %v", domain.ErrInvalidInput, err)
	}
	return string(out), nil
}
