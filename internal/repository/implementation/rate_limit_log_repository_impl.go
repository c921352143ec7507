package implementation

import (
	"context"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/mapper"
	"knowledge-retrieval-be/internal/repository/contract"

	"gorm.io/gorm"
)

type RateLimitLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RateLimitLogMapper
}

func NewRateLimitLogRepository(db *gorm.DB) contract.RateLimitLogRepository {
	return &RateLimitLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewRateLimitLogMapper(),
	}
}

func (r *RateLimitLogRepositoryImpl) Create(ctx context.Context, log *entity.RateLimitLog) error {
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.ToEntity(m)
	return nil
}
