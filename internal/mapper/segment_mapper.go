package mapper

import (
	"time"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type SegmentMapper struct{}

func NewSegmentMapper() *SegmentMapper {
	return &SegmentMapper{}
}

func (m *SegmentMapper) ToEntity(s *model.DocumentSegment) *entity.DocumentSegment {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.DocumentSegment{
		Id:            s.Id,
		CollectionId:  s.CollectionId,
		DocumentId:    s.DocumentId,
		Position:      s.Position,
		Content:       s.Content,
		Answer:        s.Answer,
		WordCount:     s.WordCount,
		HitCount:      s.HitCount,
		IndexNodeHash: s.IndexNodeHash,
		Embedding:     s.Embedding.Slice(),
		Enabled:       s.Enabled,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *SegmentMapper) ToModel(s *entity.DocumentSegment) *model.DocumentSegment {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.DocumentSegment{
		Id:            s.Id,
		CollectionId:  s.CollectionId,
		DocumentId:    s.DocumentId,
		Position:      s.Position,
		Content:       s.Content,
		Answer:        s.Answer,
		WordCount:     s.WordCount,
		HitCount:      s.HitCount,
		IndexNodeHash: s.IndexNodeHash,
		Embedding:     pgvector.NewVector(s.Embedding),
		Enabled:       s.Enabled,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *SegmentMapper) ToEntities(segments []*model.DocumentSegment) []*entity.DocumentSegment {
	entities := make([]*entity.DocumentSegment, len(segments))
	for i, s := range segments {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
