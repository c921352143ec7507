package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentSegment struct {
	Id            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CollectionId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentId    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position      int             `gorm:"default:0"`
	Content       string          `gorm:"type:text"`
	Answer        string          `gorm:"type:text"`
	WordCount     int             `gorm:"default:0"`
	HitCount      int             `gorm:"default:0"`
	IndexNodeHash string          `gorm:"type:varchar(64)"`
	Embedding     pgvector.Vector `gorm:"type:vector(768)"` // must match the configured embedding model's dimension
	Enabled       bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt  `gorm:"index"`
}

func (DocumentSegment) TableName() string {
	return "document_segments"
}
