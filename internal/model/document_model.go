package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CollectionId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	TenantId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name           string         `gorm:"type:varchar(255);not null"`
	DataSourceType string         `gorm:"type:varchar(64);default:'upload_file'"`
	IndexingStatus string         `gorm:"type:varchar(32);not null;default:'waiting';index"`
	Enabled        bool           `gorm:"not null;default:true"`
	Archived       bool           `gorm:"not null;default:false"`
	DocMetadata    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
