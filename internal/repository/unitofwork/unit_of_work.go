package unitofwork

import (
	"context"

	"knowledge-retrieval-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CollectionRepository() contract.CollectionRepository
	DocumentRepository() contract.DocumentRepository
	SegmentRepository() contract.SegmentRepository
	MetadataFieldRepository() contract.MetadataFieldRepository
	RateLimitLogRepository() contract.RateLimitLogRepository
}
