package contract

import (
	"context"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MetadataFieldRepository interface {
	Create(ctx context.Context, field *entity.MetadataField) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MetadataField, error)

	// DistinctNames returns the union of metadata field names declared across
	// the given collections.
	DistinctNames(ctx context.Context, collectionIds []uuid.UUID) ([]string, error)
}
