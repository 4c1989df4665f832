package event

import (
	"context"
	"log/slog"
)

const TopicProductCreated = "product.created"

type ProductCreatedEvent struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	ExpiryDate string  `json:"expiry_date"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling product created event", slog.Any("event", ev))
	return nil
}
