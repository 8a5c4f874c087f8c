package domain

// IndexStats summarises the contents of the vector index.
type IndexStats struct {
	// Total is the number of stored paragraphs.
	Total int `json:"total"`

	// PerAuthor counts paragraphs by author tag. Tags with no paragraphs are omitted.
	PerAuthor map[AuthorTag]int `json:"per_author"`

	// Dimension is the configured embedding size.
	Dimension int `json:"dimension"`

	// Strategy names the in-memory search structure ("exact" or "hnsw").
	Strategy string `json:"strategy"`

	// Model is the embedding model recorded in the index metadata.
	Model string `json:"model,omitempty"`
}
