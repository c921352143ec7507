package contract

import (
	"context"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredSegment pairs a segment with the relevance score the search channel
// assigned to it.
type ScoredSegment struct {
	Segment *entity.DocumentSegment
	Score   float64
}

type SegmentRepository interface {
	Create(ctx context.Context, segment *entity.DocumentSegment) error
	Update(ctx context.Context, segment *entity.DocumentSegment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentSegment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentSegment, error)

	// SearchSimilarWithScore runs the vector channel: cosine similarity over
	// segment embeddings, restricted to the given collections and optionally
	// to a document allowlist (nil means unrestricted; empty means no match).
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, collectionIds []uuid.UUID, threshold float64, documentIds []uuid.UUID) ([]*ScoredSegment, error)

	// SearchKeywordWithScore runs the keyword channel: full-text rank over
	// segment content under the same restrictions.
	SearchKeywordWithScore(ctx context.Context, query string, limit int, collectionIds []uuid.UUID, documentIds []uuid.UUID) ([]*ScoredSegment, error)
}
