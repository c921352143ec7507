package contract

import (
	"context"

	"knowledge-retrieval-be/internal/entity"
)

// RateLimitLogRepository is append-only: audit rows are never updated or
// deleted by this service.
type RateLimitLogRepository interface {
	Create(ctx context.Context, log *entity.RateLimitLog) error
}
