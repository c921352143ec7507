package mapper

import (
	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/model"
)

type MetadataFieldMapper struct{}

func NewMetadataFieldMapper() *MetadataFieldMapper {
	return &MetadataFieldMapper{}
}

func (m *MetadataFieldMapper) ToEntity(f *model.MetadataField) *entity.MetadataField {
	if f == nil {
		return nil
	}
	return &entity.MetadataField{
		Id:           f.Id,
		CollectionId: f.CollectionId,
		TenantId:     f.TenantId,
		Name:         f.Name,
		FieldType:    f.FieldType,
		CreatedAt:    f.CreatedAt,
	}
}

func (m *MetadataFieldMapper) ToModel(f *entity.MetadataField) *model.MetadataField {
	if f == nil {
		return nil
	}
	return &model.MetadataField{
		Id:           f.Id,
		CollectionId: f.CollectionId,
		TenantId:     f.TenantId,
		Name:         f.Name,
		FieldType:    f.FieldType,
		CreatedAt:    f.CreatedAt,
	}
}

func (m *MetadataFieldMapper) ToEntities(fields []*model.MetadataField) []*entity.MetadataField {
	entities := make([]*entity.MetadataField, len(fields))
	for i, f := range fields {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
