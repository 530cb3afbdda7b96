package events

import (
	"context"
	"encoding/json"
	"time"

	"orderflow/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher implements service.EventBus on top of a kafka-go writer.
// Publishing is fire-and-forget from the checkout path's point of view; a
// broker failure is logged, never surfaced to the customer.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		log: log,
	}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, e service.OrderPlacedEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.OrderID.String()),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		p.log.Error("failed to publish order placed event",
			zap.String("order_id", e.OrderID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
