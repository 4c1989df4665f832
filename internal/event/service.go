package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/freshtrackdev/freshtrack/internal/storage/mq"
)

// Service consumes inventory events from the message queue. Handlers are
// the last hop for alerts: in a real deployment they would fan out to
// notification channels, here they log structured records.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := registerJSONHandler(s.mqConsumer, TopicProductCreated, s.handleProductCreatedEvent); err != nil {
		return nil, err
	}
	if err := registerJSONHandler(s.mqConsumer, TopicExpiryAlert, s.handleExpiryAlertEvent); err != nil {
		return nil, err
	}
	if err := registerJSONHandler(s.mqConsumer, TopicLowStockAlert, s.handleLowStockAlertEvent); err != nil {
		return nil, err
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	return func() { mqCleanup() }, nil
}

func registerJSONHandler[T any](consumer mq.Consumer, topic string, handle func(ctx context.Context, ev T) error) error {
	err := consumer.RegisterHandler(topic, func(ctx context.Context, topic string, payload []byte) error {
		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := handle(ctx, ev); err != nil {
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("register %s handler: %w", topic, err)
	}

	return nil
}
