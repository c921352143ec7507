package mapper

import (
	"encoding/json"
	"time"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var docMetadata map[string]interface{}
	if len(d.DocMetadata) > 0 {
		// Malformed metadata is treated as absent rather than failing the read.
		_ = json.Unmarshal(d.DocMetadata, &docMetadata)
	}

	return &entity.Document{
		Id:             d.Id,
		CollectionId:   d.CollectionId,
		TenantId:       d.TenantId,
		Name:           d.Name,
		DataSourceType: d.DataSourceType,
		IndexingStatus: d.IndexingStatus,
		Enabled:        d.Enabled,
		Archived:       d.Archived,
		DocMetadata:    docMetadata,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	var docMetadata datatypes.JSON
	if d.DocMetadata != nil {
		raw, err := json.Marshal(d.DocMetadata)
		if err == nil {
			docMetadata = datatypes.JSON(raw)
		}
	}

	return &model.Document{
		Id:             d.Id,
		CollectionId:   d.CollectionId,
		TenantId:       d.TenantId,
		Name:           d.Name,
		DataSourceType: d.DataSourceType,
		IndexingStatus: d.IndexingStatus,
		Enabled:        d.Enabled,
		Archived:       d.Archived,
		DocMetadata:    docMetadata,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *DocumentMapper) ToEntities(documents []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(documents))
	for i, d := range documents {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
