package entity

import (
	"time"

	"github.com/google/uuid"
)

// Operation constants for RateLimitLog
const (
	RateLimitOperationKnowledge = "knowledge"
)

// RateLimitLog is an append-only audit row recorded when a tenant request is
// rejected for exceeding its quota. Rows are never mutated by this service.
type RateLimitLog struct {
	Id               uuid.UUID
	TenantId         uuid.UUID
	SubscriptionPlan string
	Operation        string
	CreatedAt        time.Time
}
