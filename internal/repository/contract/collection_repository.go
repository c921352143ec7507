package contract

import (
	"context"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CollectionRepository interface {
	Create(ctx context.Context, collection *entity.Collection) error
	Update(ctx context.Context, collection *entity.Collection) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collection, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collection, error)

	// FindAvailable returns the tenant's collections from the requested set
	// that are queryable: externally federated, or holding at least one
	// completed, enabled, non-archived document. Output order is unspecified.
	FindAvailable(ctx context.Context, tenantId uuid.UUID, collectionIds []uuid.UUID) ([]*entity.Collection, error)
}
