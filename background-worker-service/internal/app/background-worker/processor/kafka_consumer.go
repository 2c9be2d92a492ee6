package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/background-worker-service/internal/app/background-worker/service"
	"staynest/pkg/logger"
	"staynest/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const consumerServiceName = "background-worker-service"

// KafkaConsumer обрабатывает события из Kafka топика booking_events
type KafkaConsumer struct {
	reader     *kafka.Reader
	paymentSvc service.PaymentProcessingServiceInterface
	topic      string
	groupID    string
	stopChan   chan struct{}
	doneChan   chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	paymentSvc service.PaymentProcessingServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:     reader,
		paymentSvc: paymentSvc,
		topic:      topic,
		groupID:    groupID,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().
		Str("topic", c.topic).
		Str("group", c.groupID).
		Msg("Starting Kafka consumer")

	go c.consume(ctx)
}

// Stop останавливает consumer
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	logger.Info().Msg("Kafka consumer stopped")
}

// consume читает и обрабатывает сообщения из Kafka
func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}

				logger.Error().Err(err).Msg("Error fetching message")
				time.Sleep(time.Second)
				continue
			}

			if err := c.processMessage(ctx, message); err != nil {
				metrics.RecordKafkaError(consumerServiceName, c.topic, "process")
				logger.Error().
					Err(err).
					Int64("offset", message.Offset).
					Msg("Error processing message")
				// Offset не коммитим - сообщение будет обработано повторно
			} else {
				metrics.RecordKafkaMessageConsumed(consumerServiceName, c.topic, c.groupID)
				if err := c.reader.CommitMessages(ctx, message); err != nil {
					logger.Error().Err(err).Msg("Error committing message")
				}
			}
		}
	}
}

// processMessage обрабатывает одно сообщение из Kafka
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.BookingEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal booking event: %w", err)
	}

	logger.Info().
		Str("event_type", event.EventType).
		Str("booking_id", event.BookingID).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Received booking event")

	if err := c.paymentSvc.ProcessBookingEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to process booking event: %w", err)
	}

	return nil
}

// GetStats возвращает статистику consumer
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
