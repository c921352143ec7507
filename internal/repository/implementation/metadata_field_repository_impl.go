package implementation

import (
	"context"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/mapper"
	"knowledge-retrieval-be/internal/model"
	"knowledge-retrieval-be/internal/repository/contract"
	"knowledge-retrieval-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MetadataFieldRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MetadataFieldMapper
}

func NewMetadataFieldRepository(db *gorm.DB) contract.MetadataFieldRepository {
	return &MetadataFieldRepositoryImpl{
		db:     db,
		mapper: mapper.NewMetadataFieldMapper(),
	}
}

func (r *MetadataFieldRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MetadataFieldRepositoryImpl) Create(ctx context.Context, field *entity.MetadataField) error {
	m := r.mapper.ToModel(field)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*field = *r.mapper.ToEntity(m)
	return nil
}

func (r *MetadataFieldRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MetadataField{}, id).Error
}

func (r *MetadataFieldRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MetadataField, error) {
	var models []*model.MetadataField
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MetadataFieldRepositoryImpl) DistinctNames(ctx context.Context, collectionIds []uuid.UUID) ([]string, error) {
	if len(collectionIds) == 0 {
		return nil, nil
	}
	var names []string
	err := r.db.WithContext(ctx).
		Model(&model.MetadataField{}).
		Where("collection_id IN ?", collectionIds).
		Distinct("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
