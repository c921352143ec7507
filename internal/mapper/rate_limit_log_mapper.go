package mapper

import (
	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/model"
)

type RateLimitLogMapper struct{}

func NewRateLimitLogMapper() *RateLimitLogMapper {
	return &RateLimitLogMapper{}
}

func (m *RateLimitLogMapper) ToEntity(l *model.RateLimitLog) *entity.RateLimitLog {
	if l == nil {
		return nil
	}
	return &entity.RateLimitLog{
		Id:               l.Id,
		TenantId:         l.TenantId,
		SubscriptionPlan: l.SubscriptionPlan,
		Operation:        l.Operation,
		CreatedAt:        l.CreatedAt,
	}
}

func (m *RateLimitLogMapper) ToModel(l *entity.RateLimitLog) *model.RateLimitLog {
	if l == nil {
		return nil
	}
	return &model.RateLimitLog{
		Id:               l.Id,
		TenantId:         l.TenantId,
		SubscriptionPlan: l.SubscriptionPlan,
		Operation:        l.Operation,
		CreatedAt:        l.CreatedAt,
	}
}
