package event

import (
	"context"
	"log/slog"
)

const (
	TopicExpiryAlert   = "inventory.expiry_alert"
	TopicLowStockAlert = "inventory.low_stock_alert"
)

// ExpiryAlertEvent is emitted by the alert scanner for products that are
// expired or inside their alert_days lead window. Status is the freshness
// classification at scan time.
type ExpiryAlertEvent struct {
	ProductID       string `json:"product_id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	ExpiryDate      string `json:"expiry_date"`
	Status          string `json:"status"`
	DaysUntilExpiry int    `json:"days_until_expiry"`
}

// LowStockAlertEvent is emitted for products at or below the configured
// stock threshold.
type LowStockAlertEvent struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

func (s *Service) handleExpiryAlertEvent(ctx context.Context, ev ExpiryAlertEvent) error {
	s.logger.WarnContext(ctx, "product expiry alert",
		slog.String("product_id", ev.ProductID),
		slog.String("name", ev.Name),
		slog.String("status", ev.Status),
		slog.Int("days_until_expiry", ev.DaysUntilExpiry),
	)
	return nil
}

func (s *Service) handleLowStockAlertEvent(ctx context.Context, ev LowStockAlertEvent) error {
	s.logger.WarnContext(ctx, "product low stock alert",
		slog.String("product_id", ev.ProductID),
		slog.String("name", ev.Name),
		slog.Int("quantity", ev.Quantity),
		slog.Int("threshold", ev.Threshold),
	)
	return nil
}
