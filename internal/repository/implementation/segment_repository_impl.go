package implementation

import (
	"context"
	"errors"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/mapper"
	"knowledge-retrieval-be/internal/model"
	"knowledge-retrieval-be/internal/repository/contract"
	"knowledge-retrieval-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type SegmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SegmentMapper
}

func NewSegmentRepository(db *gorm.DB) contract.SegmentRepository {
	return &SegmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewSegmentMapper(),
	}
}

func (r *SegmentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SegmentRepositoryImpl) Create(ctx context.Context, segment *entity.DocumentSegment) error {
	m := r.mapper.ToModel(segment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*segment = *r.mapper.ToEntity(m)
	return nil
}

func (r *SegmentRepositoryImpl) Update(ctx context.Context, segment *entity.DocumentSegment) error {
	m := r.mapper.ToModel(segment)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*segment = *r.mapper.ToEntity(m)
	return nil
}

func (r *SegmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DocumentSegment{}, id).Error
}

func (r *SegmentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentSegment, error) {
	var m model.DocumentSegment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SegmentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentSegment, error) {
	var models []*model.DocumentSegment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SegmentRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, collectionIds []uuid.UUID, threshold float64, documentIds []uuid.UUID) ([]*contract.ScoredSegment, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query_vector) recovers the similarity.
	type result struct {
		model.DocumentSegment
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("document_segments").
		Select("document_segments.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("document_segments.collection_id IN ?", collectionIds).
		Where("document_segments.enabled = ?", true).
		Where("document_segments.deleted_at IS NULL").
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold)

	if documentIds != nil {
		query = query.Where("document_segments.document_id IN ?", documentIds)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredSegment, len(results))
	for i, res := range results {
		seg := res.DocumentSegment
		scored[i] = &contract.ScoredSegment{
			Segment: r.mapper.ToEntity(&seg),
			Score:   res.Similarity,
		}
	}
	return scored, nil
}

func (r *SegmentRepositoryImpl) SearchKeywordWithScore(ctx context.Context, queryText string, limit int, collectionIds []uuid.UUID, documentIds []uuid.UUID) ([]*contract.ScoredSegment, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.DocumentSegment
		Rank float64
	}
	var results []result

	query := r.db.WithContext(ctx).
		Table("document_segments").
		Select("document_segments.*, ts_rank(to_tsvector('simple', content), plainto_tsquery('simple', ?)) as rank", queryText).
		Where("document_segments.collection_id IN ?", collectionIds).
		Where("document_segments.enabled = ?", true).
		Where("document_segments.deleted_at IS NULL").
		Where("to_tsvector('simple', content) @@ plainto_tsquery('simple', ?)", queryText)

	if documentIds != nil {
		query = query.Where("document_segments.document_id IN ?", documentIds)
	}

	err := query.
		Order("rank DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredSegment, len(results))
	for i, res := range results {
		seg := res.DocumentSegment
		scored[i] = &contract.ScoredSegment{
			Segment: r.mapper.ToEntity(&seg),
			Score:   res.Rank,
		}
	}
	return scored, nil
}
