package publisher

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/playcv/cartd/internal/journal"
)

// OutboxPoller drains unprocessed checkout-completed events from the
// journal and publishes them to Kafka for downstream consumers
// (notifications, analytics).
type OutboxPoller struct {
	tick   time.Duration
	repo   journal.Repository
	writer *kafka.Writer
	log    *zap.Logger
}

func NewOutboxPoller(repo journal.Repository, log *zap.Logger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "checkout-completed",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		tick:   time.Second,
		repo:   repo,
		writer: w,
		log:    log,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() {
	if err := p.writer.Close(); err != nil {
		p.log.Warn("error closing kafka writer", zap.Error(err))
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		p.log.Warn("failed to fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		if errPublish := p.publish(ctx, event); errPublish != nil {
			p.log.Warn("failed to publish outbox event",
				zap.Int64("event_id", event.ID),
				zap.Error(errPublish))
			continue
		}

		if errMark := p.repo.MarkEventAsProcessed(ctx, event.ID); errMark != nil {
			p.log.Warn("failed to mark outbox event as processed",
				zap.Int64("event_id", event.ID),
				zap.Error(errMark))
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *journal.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // payment reference for ordering
		Value: event.Payload,             // already JSON from the journal
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
