package entity

import (
	"time"

	"github.com/google/uuid"
)

// Indexing status constants for Document
const (
	DocumentIndexingStatusWaiting   = "waiting"
	DocumentIndexingStatusIndexing  = "indexing"
	DocumentIndexingStatusCompleted = "completed"
	DocumentIndexingStatusError     = "error"
)

// Document is an indexed source inside a collection. DocMetadata holds the
// free-form metadata bag (string key -> scalar value) that filter conditions
// run against.
type Document struct {
	Id             uuid.UUID
	CollectionId   uuid.UUID
	TenantId       uuid.UUID
	Name           string
	DataSourceType string
	IndexingStatus string
	Enabled        bool
	Archived       bool
	DocMetadata    map[string]interface{}
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// Queryable reports whether the document participates in retrieval.
func (d *Document) Queryable() bool {
	return d.IndexingStatus == DocumentIndexingStatusCompleted && d.Enabled && !d.Archived
}
