package events

import (
	"context"

	"campsite/pkg/kafka"
	kafka_config "campsite/pkg/kafka/config"
	"campsite/pkg/logger"
)

const source = "campsite"

const (
	ListingCreated = "listing.created"
	ListingUpdated = "listing.updated"
	ListingDeleted = "listing.deleted"
	ReviewCreated  = "review.created"
	ReviewDeleted  = "review.deleted"
)

// Publisher emits lifecycle events. Publishing is synchronous within the
// request and fire-and-forget on failure: an unreachable broker must never
// fail a user-facing write.
type Publisher interface {
	Publish(ctx context.Context, eventType, entityID string, payload any)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, eventType, entityID string, payload any) {}

// NewPublisher returns a Kafka-backed publisher when brokers are configured,
// a no-op one otherwise.
func NewPublisher(cfg *kafka_config.Config, log *logger.Logger) (Publisher, func() error) {
	if !cfg.Enabled() {
		log.Info("Event publishing disabled (no Kafka brokers configured)")
		return noopPublisher{}, func() error { return nil }
	}

	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		log.Error("Failed to create Kafka producer, events disabled", "error", err)
		return noopPublisher{}, func() error { return nil }
	}

	log.Info("Event publishing enabled", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return &kafkaPublisher{producer: producer, log: log}, producer.Close
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, entityID string, payload any) {
	msg, err := kafka.NewMessage(source, eventType, entityID, payload)
	if err != nil {
		p.log.Error("Failed to build event message", "event_type", eventType, "error", err)
		return
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish event", "event_type", eventType, "entity_id", entityID, "error", err)
	}
}
