package domain

// EmbedderState is the lifecycle state of an embedding service.
type EmbedderState int

// Embedder lifecycle: Uninitialized -> Loading -> Ready | Failed.
// A Failed embedder may be prepared again.
const (
	EmbedderUninitialized EmbedderState = iota
	EmbedderLoading
	EmbedderReady
	EmbedderFailed
)

// String returns the state name.
func (s EmbedderState) String() string {
	switch s {
	case EmbedderUninitialized:
		return "uninitialized"
	case EmbedderLoading:
		return "loading"
	case EmbedderReady:
		return "ready"
	case EmbedderFailed:
		return "failed"
	default:
		return unknownDescription
	}
}
