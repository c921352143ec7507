package engine

import "context"

// RankedDocument is one rerank result: the index of the input document and
// the relevance score the rerank model assigned.
type RankedDocument struct {
	Index int
	Score float64
}

// Reranker rescores candidate documents against the query with a dedicated
// rerank model. Results come back sorted by descending score.
type Reranker interface {
	Rerank(ctx context.Context, model string, query string, documents []string, topN int) ([]RankedDocument, error)
}
