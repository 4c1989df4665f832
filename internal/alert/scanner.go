// Package alert periodically scans the product table and enqueues expiry
// and low-stock alert events on the transactional outbox. The relay ships
// them to the message queue; this package never talks to Kafka itself.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/freshtrackdev/freshtrack/internal/config"
	"github.com/freshtrackdev/freshtrack/internal/event"
	"github.com/freshtrackdev/freshtrack/internal/inventory"
	"github.com/freshtrackdev/freshtrack/internal/model"
	"github.com/freshtrackdev/freshtrack/internal/repository"
	"github.com/freshtrackdev/freshtrack/internal/storage/db"
	"github.com/freshtrackdev/freshtrack/pkg/ptr"
)

type Scanner struct {
	cfg           config.Alert
	logger        *slog.Logger
	db            db.DB
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository

	now      func() time.Time
	stopChan chan struct{}
}

func NewScanner(
	cfg config.Alert,
	logger *slog.Logger,
	db db.DB,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) *Scanner {
	return &Scanner{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "alert")),
		db:            db,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *Scanner) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
		}
	}
}

func (s *Scanner) run(ctx context.Context) {
	// First pass right away so a fresh deployment alerts without waiting
	// a full interval.
	if err := s.Scan(ctx); err != nil {
		s.logger.ErrorContext(ctx, "error scanning for alerts", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(s.cfg.ScanInterval):
			if err := s.Scan(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error scanning for alerts", slog.Any("error", err))
			}
		}
	}
}

// Scan runs one alert pass: expired and expiring-soon products produce
// expiry alerts, products at or under the stock threshold produce
// low-stock alerts. All events of a pass share one now and one
// transaction.
func (s *Scanner) Scan(ctx context.Context) error {
	now := s.now()
	today := model.DateOf(now)

	return s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)
		outboxMsgRepo := s.outboxMsgRepo.WithDB(db)

		expiring, err := productRepo.ListExpiringProducts(ctx, today)
		if err != nil {
			return fmt.Errorf("list expiring products: %w", err)
		}

		expired, err := productRepo.ListExpiredProducts(ctx, today)
		if err != nil {
			return fmt.Errorf("list expired products: %w", err)
		}

		lowStock, err := productRepo.ListLowStockProducts(ctx, s.cfg.LowStockThreshold)
		if err != nil {
			return fmt.Errorf("list low stock products: %w", err)
		}

		for _, p := range append(expired, expiring...) {
			status := inventory.Classify(p.ExpiryDate.Time, now)
			ev := event.ExpiryAlertEvent{
				ProductID:       p.ID.String(),
				Name:            p.Name,
				Category:        p.Category,
				ExpiryDate:      p.ExpiryDate.Format("2006-01-02"),
				Status:          string(status.Category),
				DaysUntilExpiry: status.DaysUntilExpiry,
			}
			if err := s.enqueue(ctx, outboxMsgRepo, event.TopicExpiryAlert, p, ev); err != nil {
				return err
			}
		}

		for _, p := range lowStock {
			ev := event.LowStockAlertEvent{
				ProductID: p.ID.String(),
				Name:      p.Name,
				Category:  p.Category,
				Quantity:  p.Quantity,
				Threshold: s.cfg.LowStockThreshold,
			}
			if err := s.enqueue(ctx, outboxMsgRepo, event.TopicLowStockAlert, p, ev); err != nil {
				return err
			}
		}

		if n := len(expired) + len(expiring) + len(lowStock); n > 0 {
			s.logger.InfoContext(ctx, "alert scan enqueued events",
				slog.Int("expired", len(expired)),
				slog.Int("expiring", len(expiring)),
				slog.Int("low_stock", len(lowStock)),
			)
		}

		return nil
	})
}

func (s *Scanner) enqueue(ctx context.Context, repo repository.OutboxMsgRepository, topic string, p model.Product, ev any) error {
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := repo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        topic,
		Payload:      evBytes,
		PartitionKey: ptr.New(p.ID.String()),
	}); err != nil {
		return fmt.Errorf("create outbox msg: %w", err)
	}

	return nil
}
