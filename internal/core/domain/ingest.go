package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// IngestRequest is one source document presented to the ingestion pipeline.
// The upstream parser has already segmented it into ordered paragraphs.
type IngestRequest struct {
	// SourceFile is the originating document name.
	SourceFile string

	// Paragraphs are the raw paragraph strings in source order.
	Paragraphs []string

	// Units replaces Paragraphs when set. Each Index is the paragraph's
	// position in the source, so filtered paragraphs leave gaps.
	Units []ParagraphUnit

	// Author overrides filename classification when set.
	Author *AuthorTag
}

// IngestOptions tunes a single ingestion run.
type IngestOptions struct {
	// Replace deletes the source's existing records before ingesting, so a
	// changed document can be re-embedded without clearing the whole index.
	Replace bool

	// Progress receives a report after every ProgressInterval records and
	// once when the run ends. It is called synchronously from the writer.
	Progress func(IngestProgress)
}

// IngestEvent classifies a progress report.
type IngestEvent string

// Ingest progress events.
const (
	IngestEventInserted  IngestEvent = "inserted"
	IngestEventDuplicate IngestEvent = "duplicate"
	IngestEventFailed    IngestEvent = "failed"
	IngestEventDone      IngestEvent = "done"
)

// IngestProgress reports the state of a running ingestion.
type IngestProgress struct {
	RunID      string
	SourceFile string

	// Event describes the record that triggered this report.
	Event IngestEvent

	// DocumentID is the record the event refers to (empty for IngestEventDone).
	DocumentID string

	// Err is set for IngestEventFailed.
	Err error

	Processed int
	Total     int
	Inserted  int
	Skipped   int
	Failed    int
}

// IngestReport summarises a completed (or interrupted) ingestion run.
type IngestReport struct {
	RunID      string    `json:"run_id"`
	SourceFile string    `json:"source_file"`
	Author     AuthorTag `json:"author"`

	// Units is the number of merged paragraph units produced.
	Units int `json:"units"`

	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`

	// Replaced is the number of records deleted because of IngestOptions.Replace.
	Replaced int `json:"replaced"`
}

// ParagraphUnit is a merged run of consecutive paragraphs ready for embedding.
type ParagraphUnit struct {
	// Index is the original index of the first paragraph in the run.
	Index int

	// Text is the paragraphs joined by blank lines.
	Text string
}

// NumberParagraphs tags each paragraph with its position.
func NumberParagraphs(paragraphs []string) []ParagraphUnit {
	if len(paragraphs) == 0 {
		return nil
	}
	units := make([]ParagraphUnit, len(paragraphs))
	for i, text := range paragraphs {
		units[i] = ParagraphUnit{Index: i, Text: text}
	}
	return units
}

// ParagraphUnits returns Units, or Paragraphs numbered by position.
func (r IngestRequest) ParagraphUnits() []ParagraphUnit {
	if r.Units != nil {
		return r.Units
	}
	return NumberParagraphs(r.Paragraphs)
}

// DocumentID derives the stable record key for a unit of a source file,
// e.g. "hidden-words_para_3".
func DocumentID(sourceFile string, paragraphIndex int) string {
	base := filepath.Base(sourceFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_para_%d", stem, paragraphIndex)
}

// IngestRun is a persisted record of one finished ingestion.
type IngestRun struct {
	Report     IngestReport `json:"report"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}
