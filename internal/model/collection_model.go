package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Collection struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Provider    string    `gorm:"type:varchar(32);not null;default:'internal'"`

	ExternalEndpoint    string `gorm:"type:text"`
	ExternalAPIKey      string `gorm:"type:text"`
	ExternalKnowledgeId string `gorm:"type:varchar(255)"`

	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Collection) TableName() string {
	return "collections"
}
