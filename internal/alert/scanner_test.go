package alert

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshtrackdev/freshtrack/internal/config"
	"github.com/freshtrackdev/freshtrack/internal/event"
	"github.com/freshtrackdev/freshtrack/internal/model"
	"github.com/freshtrackdev/freshtrack/internal/repository"
	"github.com/freshtrackdev/freshtrack/internal/storage/db"
)

type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (fakeDB) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (f fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error { return txFunc(f) }

type fakeProductRepo struct {
	repository.ProductRepository

	expiring []model.Product
	expired  []model.Product
	lowStock []model.Product
}

func (f *fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return f }

func (f *fakeProductRepo) ListExpiringProducts(context.Context, types.Date) ([]model.Product, error) {
	return f.expiring, nil
}

func (f *fakeProductRepo) ListExpiredProducts(context.Context, types.Date) ([]model.Product, error) {
	return f.expired, nil
}

func (f *fakeProductRepo) ListLowStockProducts(context.Context, int) ([]model.Product, error) {
	return f.lowStock, nil
}

type fakeOutboxRepo struct {
	repository.OutboxMsgRepository

	msgs []repository.CreateOutboxMsgParams
}

func (f *fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return f }

func (f *fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	f.msgs = append(f.msgs, params)
	return nil
}

func alertProduct(name string, expiry time.Time, quantity int) model.Product {
	return model.Product{
		ID:         uuid.New(),
		Name:       name,
		Category:   model.DefaultCategory,
		ExpiryDate: model.DateOf(expiry),
		Quantity:   quantity,
		AlertDays:  model.DefaultAlertDays,
	}
}

func TestScan(t *testing.T) {
	now := time.Date(2024, 1, 5, 6, 0, 0, 0, time.UTC)

	newScanner := func(productRepo *fakeProductRepo, outboxRepo *fakeOutboxRepo) *Scanner {
		s := NewScanner(
			config.Alert{ScanInterval: time.Hour, LowStockThreshold: 5},
			slog.New(slog.DiscardHandler),
			fakeDB{},
			productRepo,
			outboxRepo,
		)
		s.now = func() time.Time { return now }
		return s
	}

	t.Run("Should enqueue expiry alerts for expired and expiring products", func(t *testing.T) {
		productRepo := &fakeProductRepo{
			expired:  []model.Product{alertProduct("old milk", now.AddDate(0, 0, -2), 10)},
			expiring: []model.Product{alertProduct("yogurt", now.AddDate(0, 0, 3), 10)},
		}
		outboxRepo := &fakeOutboxRepo{}

		require.NoError(t, newScanner(productRepo, outboxRepo).Scan(context.Background()))

		require.Len(t, outboxRepo.msgs, 2)
		assert.Equal(t, event.TopicExpiryAlert, outboxRepo.msgs[0].Topic)
		assert.Equal(t, event.TopicExpiryAlert, outboxRepo.msgs[1].Topic)

		var first event.ExpiryAlertEvent
		require.NoError(t, json.Unmarshal(outboxRepo.msgs[0].Payload, &first))
		assert.Equal(t, "old milk", first.Name)
		assert.Equal(t, "expired", first.Status)
		assert.Equal(t, -2, first.DaysUntilExpiry)
	})

	t.Run("Should enqueue low stock alerts with the configured threshold", func(t *testing.T) {
		productRepo := &fakeProductRepo{
			lowStock: []model.Product{alertProduct("butter", now.AddDate(0, 0, 30), 2)},
		}
		outboxRepo := &fakeOutboxRepo{}

		require.NoError(t, newScanner(productRepo, outboxRepo).Scan(context.Background()))

		require.Len(t, outboxRepo.msgs, 1)
		assert.Equal(t, event.TopicLowStockAlert, outboxRepo.msgs[0].Topic)

		var ev event.LowStockAlertEvent
		require.NoError(t, json.Unmarshal(outboxRepo.msgs[0].Payload, &ev))
		assert.Equal(t, 2, ev.Quantity)
		assert.Equal(t, 5, ev.Threshold)
	})

	t.Run("Should enqueue nothing when no products match", func(t *testing.T) {
		outboxRepo := &fakeOutboxRepo{}

		require.NoError(t, newScanner(&fakeProductRepo{}, outboxRepo).Scan(context.Background()))

		assert.Empty(t, outboxRepo.msgs)
	})
}
