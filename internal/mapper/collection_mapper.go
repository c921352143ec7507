package mapper

import (
	"time"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/model"
)

type CollectionMapper struct{}

func NewCollectionMapper() *CollectionMapper {
	return &CollectionMapper{}
}

func (m *CollectionMapper) ToEntity(c *model.Collection) *entity.Collection {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Collection{
		Id:                  c.Id,
		TenantId:            c.TenantId,
		Name:                c.Name,
		Description:         c.Description,
		Provider:            c.Provider,
		ExternalEndpoint:    c.ExternalEndpoint,
		ExternalAPIKey:      c.ExternalAPIKey,
		ExternalKnowledgeId: c.ExternalKnowledgeId,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *CollectionMapper) ToModel(c *entity.Collection) *model.Collection {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Collection{
		Id:                  c.Id,
		TenantId:            c.TenantId,
		Name:                c.Name,
		Description:         c.Description,
		Provider:            c.Provider,
		ExternalEndpoint:    c.ExternalEndpoint,
		ExternalAPIKey:      c.ExternalAPIKey,
		ExternalKnowledgeId: c.ExternalKnowledgeId,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *CollectionMapper) ToEntities(collections []*model.Collection) []*entity.Collection {
	entities := make([]*entity.Collection, len(collections))
	for i, c := range collections {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
