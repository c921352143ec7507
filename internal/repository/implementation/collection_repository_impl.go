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
	"gorm.io/gorm"
)

type CollectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CollectionMapper
}

func NewCollectionRepository(db *gorm.DB) contract.CollectionRepository {
	return &CollectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCollectionMapper(),
	}
}

func (r *CollectionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CollectionRepositoryImpl) Create(ctx context.Context, collection *entity.Collection) error {
	m := r.mapper.ToModel(collection)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*collection = *r.mapper.ToEntity(m)
	return nil
}

func (r *CollectionRepositoryImpl) Update(ctx context.Context, collection *entity.Collection) error {
	m := r.mapper.ToModel(collection)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*collection = *r.mapper.ToEntity(m)
	return nil
}

func (r *CollectionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Collection{}, id).Error
}

func (r *CollectionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collection, error) {
	var m model.Collection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CollectionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collection, error) {
	var models []*model.Collection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CollectionRepositoryImpl) FindAvailable(ctx context.Context, tenantId uuid.UUID, collectionIds []uuid.UUID) ([]*entity.Collection, error) {
	if len(collectionIds) == 0 {
		return nil, nil
	}

	// Collections with at least one document that can actually be retrieved.
	subQuery := r.db.Table("documents").
		Select("collection_id").
		Where("collection_id IN ?", collectionIds).
		Where("indexing_status = ?", entity.DocumentIndexingStatusCompleted).
		Where("enabled = ?", true).
		Where("archived = ?", false).
		Where("deleted_at IS NULL").
		Group("collection_id").
		Having("COUNT(id) > 0")

	var models []*model.Collection
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantId).
		Where("id IN ?", collectionIds).
		Where("id IN (?) OR provider = ?", subQuery, entity.CollectionProviderExternal).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
