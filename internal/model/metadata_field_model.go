package model

import (
	"time"

	"github.com/google/uuid"
)

type MetadataField struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CollectionId uuid.UUID `gorm:"type:uuid;not null;index"`
	TenantId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(255);not null"`
	FieldType    string    `gorm:"type:varchar(32);not null;default:'string'"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (MetadataField) TableName() string {
	return "collection_metadata_fields"
}
