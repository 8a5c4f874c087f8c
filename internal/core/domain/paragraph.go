package domain

// ParagraphRecord is one indexed unit of the corpus.
// Records are immutable once inserted; re-ingesting the same DocumentID is a no-op.
type ParagraphRecord struct {
	// DocumentID is the unique key, stable across re-ingestion.
	DocumentID string `json:"document_id"`

	// Text is the indexed passage (merged if the source paragraphs were short).
	Text string `json:"text"`

	// SourceFile is the originating document name.
	SourceFile string `json:"source_file"`

	// ParagraphIndex is the position within the source. For a merged run this
	// is the index of the first paragraph.
	ParagraphIndex int `json:"paragraph_index"`

	// Author is derived once at ingestion and never changes.
	Author AuthorTag `json:"author"`

	// Embedding is the vector representation; its length equals the index dimension.
	Embedding []float32 `json:"-"`
}

// ScoredParagraph pairs a stored record with its similarity to a query.
type ScoredParagraph struct {
	Record ParagraphRecord
	Score  float64
}

// SearchResult is one ranked passage returned to callers.
// It carries every record field except the embedding.
type SearchResult struct {
	DocumentID     string    `json:"document_id"`
	Text           string    `json:"text"`
	SourceFile     string    `json:"source_file"`
	ParagraphIndex int       `json:"paragraph_index"`
	Author         AuthorTag `json:"author"`
	AuthorLabel    string    `json:"author_label"`

	// Score is the cosine similarity in [-1, 1].
	Score float64 `json:"score"`

	// LibraryURL links to the source work in the online reference library.
	LibraryURL string `json:"library_url"`
}

// NewSearchResult maps a scored record to a result entry.
func NewSearchResult(sp ScoredParagraph) SearchResult {
	r := sp.Record
	return SearchResult{
		DocumentID:     r.DocumentID,
		Text:           r.Text,
		SourceFile:     r.SourceFile,
		ParagraphIndex: r.ParagraphIndex,
		Author:         r.Author,
		AuthorLabel:    r.Author.Label(),
		Score:          sp.Score,
		LibraryURL:     LibraryURL(r.SourceFile),
	}
}
