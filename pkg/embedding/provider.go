package embedding

// EmbeddingProvider turns query text into the vectors the segment index
// searches over. taskType hints the retrieval-side encoding (e.g.
// "retrieval_query") to providers that distinguish query and document
// embeddings; the rest ignore it.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}
