package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"knowledge-retrieval-be/internal/dto"
	"knowledge-retrieval-be/pkg/events"
	"knowledge-retrieval-be/pkg/retrieval/ratelimit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	payloads [][]byte
	err      error
}

func (p *capturingPublisher) Publish(_ context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return p.err
}

type capturingLogger struct {
	warnings []map[string]interface{}
}

func (l *capturingLogger) Debug(string, string, map[string]interface{}) {}
func (l *capturingLogger) Info(string, string, map[string]interface{})  {}
func (l *capturingLogger) Warn(_ string, _ string, details map[string]interface{}) {
	l.warnings = append(l.warnings, details)
}
func (l *capturingLogger) Error(string, string, map[string]interface{}) {}
func (l *capturingLogger) Sync() error                                  { return nil }

func TestAuditSinkPublishesRejection(t *testing.T) {
	publisher := &capturingPublisher{}
	sink := NewAuditSink(publisher)

	tenantId := uuid.New()
	at := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	sink.RecordRejection(context.Background(), ratelimit.Rejection{
		TenantId:         tenantId,
		SubscriptionPlan: "pro",
		Operation:        "knowledge",
		At:               at,
	})

	require.Len(t, publisher.payloads, 1)
	var msg dto.RateLimitAuditMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &msg))
	assert.Equal(t, tenantId, msg.TenantId)
	assert.Equal(t, "pro", msg.SubscriptionPlan)
	assert.Equal(t, "knowledge", msg.Operation)
	assert.Equal(t, at.Format(time.RFC3339Nano), msg.OccurredAt)
}

func TestRateLimitMirrorHandlerLogsPayload(t *testing.T) {
	log := &capturingLogger{}
	handler := RateLimitMirrorHandler(log)

	event := events.RateLimitExceededEvent{
		TenantId:         uuid.NewString(),
		SubscriptionPlan: "sandbox",
		Operation:        "knowledge",
		OccurredAt:       time.Now(),
	}
	err := handler(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, log.warnings, 1)
	assert.Equal(t, "sandbox", log.warnings[0]["subscription_plan"])
}
