package entity

import (
	"time"

	"github.com/google/uuid"
)

// Provider constants for Collection
const (
	CollectionProviderInternal = "internal"
	CollectionProviderExternal = "external"
)

// Collection is a named group of documents searchable as a unit. External
// collections carry the federated endpoint binding; internal ones leave those
// fields empty.
type Collection struct {
	Id          uuid.UUID
	TenantId    uuid.UUID
	Name        string
	Description string
	Provider    string // "internal" or "external"

	ExternalEndpoint    string
	ExternalAPIKey      string
	ExternalKnowledgeId string

	CreatedAt time.Time
	UpdatedAt *time.Time
}
