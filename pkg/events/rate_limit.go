package events

import "time"

const EventTypeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"

// RateLimitExceededEvent is emitted when a tenant request is rejected for
// exceeding its quota. Carried off the request path to the audit consumer.
type RateLimitExceededEvent struct {
	TenantId         string
	SubscriptionPlan string
	Operation        string
	OccurredAt       time.Time
}

func (e RateLimitExceededEvent) EventType() string {
	return EventTypeRateLimitExceeded
}

func (e RateLimitExceededEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"tenant_id":         e.TenantId,
		"subscription_plan": e.SubscriptionPlan,
		"operation":         e.Operation,
		"occurred_at":       e.OccurredAt.Format(time.RFC3339),
	}
}

func (e RateLimitExceededEvent) Timestamp() time.Time {
	return e.OccurredAt
}
