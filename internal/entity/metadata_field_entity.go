package entity

import (
	"time"

	"github.com/google/uuid"
)

// Field type constants for MetadataField
const (
	MetadataFieldTypeString = "string"
	MetadataFieldTypeNumber = "number"
	MetadataFieldTypeTime   = "time"
)

// MetadataField declares a filterable key in a collection's document metadata.
type MetadataField struct {
	Id           uuid.UUID
	CollectionId uuid.UUID
	TenantId     uuid.UUID
	Name         string
	FieldType    string
	CreatedAt    time.Time
}
