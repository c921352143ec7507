package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"knowledge-retrieval-be/internal/dto"
	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/pkg/logger"
	"knowledge-retrieval-be/internal/repository/unitofwork"
	"knowledge-retrieval-be/pkg/events"
	pktNats "knowledge-retrieval-be/pkg/nats"
	"knowledge-retrieval-be/pkg/retrieval/ratelimit"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// auditSink publishes rejection records onto the audit topic. Publishing is
// best effort: a failed publish costs one audit row, never the request.
type auditSink struct {
	publisher IPublisherService
}

func NewAuditSink(publisher IPublisherService) ratelimit.AuditSink {
	return &auditSink{publisher: publisher}
}

func (s *auditSink) RecordRejection(ctx context.Context, rejection ratelimit.Rejection) {
	payload := dto.RateLimitAuditMessage{
		TenantId:         rejection.TenantId,
		SubscriptionPlan: rejection.SubscriptionPlan,
		Operation:        rejection.Operation,
		OccurredAt:       rejection.At.Format(time.RFC3339Nano),
	}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal audit message: %v", err)
		return
	}
	if err := s.publisher.Publish(ctx, msgJson); err != nil {
		log.Printf("[ERROR] Failed to publish audit message: %v", err)
	}
}

// RateLimitMirrorHandler logs quota rejections mirrored onto the bus by any
// instance, giving operators one consolidated view across the fleet.
func RateLimitMirrorHandler(log logger.ILogger) pktNats.EventHandler {
	return func(_ context.Context, event events.Event) error {
		log.Warn("ratelimit", "tenant exceeded knowledge request quota", event.Payload())
		return nil
	}
}

type IAuditConsumerService interface {
	Consume(ctx context.Context) error
}

// auditConsumerService drains the audit topic, persists each rejection as a
// RateLimitLog row, and mirrors the event to NATS when a publisher is wired.
type auditConsumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewAuditConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
) IAuditConsumerService {
	return &auditConsumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (cs *auditConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *auditConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RateLimitAuditMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal audit message: %v", err)
		msg.Ack() // malformed, retry cannot help
		return
	}

	occurredAt, err := time.Parse(time.RFC3339Nano, payload.OccurredAt)
	if err != nil {
		occurredAt = time.Now()
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	row := &entity.RateLimitLog{
		Id:               uuid.New(),
		TenantId:         payload.TenantId,
		SubscriptionPlan: payload.SubscriptionPlan,
		Operation:        payload.Operation,
		CreatedAt:        occurredAt,
	}
	if err := uow.RateLimitLogRepository().Create(ctx, row); err != nil {
		log.Printf("[ERROR] Failed to persist rate limit log for tenant %s: %v", payload.TenantId, err)
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.RateLimitExceededEvent{
			TenantId:         payload.TenantId.String(),
			SubscriptionPlan: payload.SubscriptionPlan,
			Operation:        payload.Operation,
			OccurredAt:       occurredAt,
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to mirror rate limit event to NATS: %v", err)
		}
	}

	msg.Ack()
}
