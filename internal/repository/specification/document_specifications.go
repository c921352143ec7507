package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByCollectionID filters documents by owning collection
type ByCollectionID struct {
	CollectionID uuid.UUID
}

func (s ByCollectionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collection_id = ?", s.CollectionID)
}

// ByCollectionIDs filters documents by a set of owning collections
type ByCollectionIDs struct {
	CollectionIDs []uuid.UUID
}

func (s ByCollectionIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collection_id IN ?", s.CollectionIDs)
}

// ByTenantID filters by tenant owner
type ByTenantID struct {
	TenantID uuid.UUID
}

func (s ByTenantID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tenant_id = ?", s.TenantID)
}

// DocumentQueryable keeps only documents that participate in retrieval:
// indexing finished, enabled, and not archived.
type DocumentQueryable struct{}

func (s DocumentQueryable) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("indexing_status = ?", "completed").
		Where("enabled = ?", true).
		Where("archived = ?", false)
}

// DocumentEnabledNotArchived mirrors the weaker check used when re-resolving
// a result item's owning document during fusion.
type DocumentEnabledNotArchived struct{}

func (s DocumentEnabledNotArchived) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("enabled = ?", true).Where("archived = ?", false)
}
