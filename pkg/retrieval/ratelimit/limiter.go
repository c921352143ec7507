package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"knowledge-retrieval-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// ErrLimitExceeded is returned by Admit when the tenant has already spent its
// full per-minute quota. The rejecting request itself is counted.
var ErrLimitExceeded = errors.New("knowledge request rate limit exceeded")

// Policy is the effective rate limit for one tenant, resolved from its
// subscription plan. Enabled false means the tenant is not limited at all.
type Policy struct {
	Enabled          bool
	Limit            int64
	SubscriptionPlan string
}

// Rejection describes one rejected request for audit purposes.
type Rejection struct {
	TenantId         uuid.UUID
	SubscriptionPlan string
	Operation        string
	At               time.Time
}

// AuditSink receives rejection records. Implementations must not block the
// rejecting request; persistence happens off the critical path.
type AuditSink interface {
	RecordRejection(ctx context.Context, rejection Rejection)
}

// Limiter enforces a per-tenant sliding window over knowledge requests.
type Limiter struct {
	counter WindowedCounter
	sink    AuditSink
	logger  logger.ILogger
}

func NewLimiter(counter WindowedCounter, sink AuditSink, log logger.ILogger) *Limiter {
	return &Limiter{counter: counter, sink: sink, logger: log}
}

// Admit records the request against the tenant's window and rejects with
// ErrLimitExceeded once the window holds more than the policy limit. A
// request landing exactly on the limit is still admitted.
func (l *Limiter) Admit(ctx context.Context, tenantId uuid.UUID, policy Policy) error {
	if !policy.Enabled {
		return nil
	}

	now := time.Now()
	key := fmt.Sprintf("knowledge_request_rate_limit:%s", tenantId)
	count, err := l.counter.Increment(ctx, key, now)
	if err != nil {
		return err
	}
	if count <= policy.Limit {
		return nil
	}

	l.logger.Warn("ratelimit", "knowledge request rejected", map[string]interface{}{
		"tenant_id": tenantId.String(),
		"count":     count,
		"limit":     policy.Limit,
	})
	if l.sink != nil {
		l.sink.RecordRejection(ctx, Rejection{
			TenantId:         tenantId,
			SubscriptionPlan: policy.SubscriptionPlan,
			Operation:        "knowledge",
			At:               now,
		})
	}
	return ErrLimitExceeded
}
