package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshtrackdev/freshtrack/internal/apperr"
	"github.com/freshtrackdev/freshtrack/internal/event"
	"github.com/freshtrackdev/freshtrack/internal/inventory"
	"github.com/freshtrackdev/freshtrack/internal/model"
	"github.com/freshtrackdev/freshtrack/internal/repository"
	"github.com/freshtrackdev/freshtrack/internal/storage/db"
	"github.com/freshtrackdev/freshtrack/pkg/validator"
)

// fakeDB satisfies db.DB for service tests; WithTx just runs the function
// against itself so repositories see the same fake.
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

	products []model.Product
	created  []model.Product
	bulk     []model.Product
	getErr   error
}

func (f *fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return f }

func (f *fakeProductRepo) CreateProduct(_ context.Context, product model.Product) error {
	f.created = append(f.created, product)
	return nil
}

func (f *fakeProductRepo) BulkCreateProducts(_ context.Context, products []model.Product) (int64, error) {
	f.bulk = append(f.bulk, products...)
	return int64(len(products)), nil
}

func (f *fakeProductRepo) GetProduct(context.Context, uuid.UUID) (model.Product, error) {
	if f.getErr != nil {
		return model.Product{}, f.getErr
	}
	return f.products[0], nil
}

func (f *fakeProductRepo) ListAllProducts(context.Context) ([]model.Product, error) {
	return f.products, nil
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

func newTestService(t *testing.T, productRepo *fakeProductRepo, outboxRepo *fakeOutboxRepo, now time.Time) *productService {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	svc := NewProductService(fakeDB{}, v, productRepo, outboxRepo).(*productService)
	svc.now = func() time.Time { return now }
	return svc
}

func date(y int, m time.Month, d int) types.Date {
	return types.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func TestCreateProduct(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	t.Run("Should persist product and enqueue created event in one tx", func(t *testing.T) {
		productRepo := &fakeProductRepo{}
		outboxRepo := &fakeOutboxRepo{}
		svc := newTestService(t, productRepo, outboxRepo, now)

		product, err := svc.CreateProduct(context.Background(), CreateProductParams{
			Name:         "Milk",
			Category:     "Dairy Products",
			ExpiryDate:   date(2024, 1, 10),
			PurchaseDate: date(2024, 1, 1),
			Price:        50,
			Quantity:     3,
			AlertDays:    7,
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, product.ID)
		assert.Equal(t, now, product.CreatedAt)
		assert.Equal(t, now, product.UpdatedAt)

		require.Len(t, productRepo.created, 1)
		require.Len(t, outboxRepo.msgs, 1)
		assert.Equal(t, event.TopicProductCreated, outboxRepo.msgs[0].Topic)

		var ev event.ProductCreatedEvent
		require.NoError(t, json.Unmarshal(outboxRepo.msgs[0].Payload, &ev))
		assert.Equal(t, product.ID.String(), ev.ProductID)
		assert.Equal(t, "2024-01-10", ev.ExpiryDate)
	})

	t.Run("Should reject invalid params without touching the store", func(t *testing.T) {
		productRepo := &fakeProductRepo{}
		outboxRepo := &fakeOutboxRepo{}
		svc := newTestService(t, productRepo, outboxRepo, now)

		_, err := svc.CreateProduct(context.Background(), CreateProductParams{
			Name:      "",
			Category:  "Dairy Products",
			Price:     -1,
			AlertDays: 0,
		})

		require.Error(t, err)
		assert.Empty(t, productRepo.created)
		assert.Empty(t, outboxRepo.msgs)
	})
}

func TestGetProduct(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	t.Run("Should map repository not-found to domain error", func(t *testing.T) {
		productRepo := &fakeProductRepo{getErr: repository.ErrProductNotFound}
		svc := newTestService(t, productRepo, &fakeOutboxRepo{}, now)

		_, err := svc.GetProduct(context.Background(), uuid.New())

		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

func TestDashboardStats(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	productRepo := &fakeProductRepo{products: []model.Product{
		{Name: "expired", ExpiryDate: date(2024, 1, 1), Price: 10, Quantity: 2},
		{Name: "warning", ExpiryDate: date(2024, 1, 8), Price: 5, Quantity: 1},
		{Name: "fresh", ExpiryDate: date(2024, 3, 1), Price: 2, Quantity: 10},
	}}
	svc := newTestService(t, productRepo, &fakeOutboxRepo{}, now)

	stats, err := svc.DashboardStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, inventory.DashboardStats{
		TotalProducts:   3,
		ExpiredProducts: 1,
		WarningProducts: 1,
		FreshProducts:   1,
		TotalValue:      10*2 + 5*1 + 2*10,
	}, stats)
}

func TestExportCSV(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	productRepo := &fakeProductRepo{products: []model.Product{
		{Name: "Milk", Category: "Dairy Products", ExpiryDate: date(2024, 1, 10),
			PurchaseDate: date(2024, 1, 1), Price: 50, Quantity: 3, AlertDays: 7},
	}}
	svc := newTestService(t, productRepo, &fakeOutboxRepo{}, now)

	result, err := svc.ExportCSV(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "inventory-export-2024-01-05.csv", result.Filename)
	assert.Contains(t, result.Content, `"Milk","Dairy Products"`)
	assert.Contains(t, result.Content, `"warning"`)
}

func TestImportCSV(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	t.Run("Should bulk create decoded drafts", func(t *testing.T) {
		productRepo := &fakeProductRepo{}
		svc := newTestService(t, productRepo, &fakeOutboxRepo{}, now)

		content := "header\n\"Milk\",\"Dairy Products\",\"\",\"2024-01-10\",\"2024-01-01\",\"50\",\"3\"\n\"Eggs\""

		count, err := svc.ImportCSV(context.Background(), content)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		require.Len(t, productRepo.bulk, 2)
		assert.Equal(t, "Milk", productRepo.bulk[0].Name)
		assert.Equal(t, model.DefaultCategory, productRepo.bulk[1].Category)
		assert.Equal(t, now, productRepo.bulk[0].CreatedAt)
	})

	t.Run("Should reject an import with no usable rows", func(t *testing.T) {
		svc := newTestService(t, &fakeProductRepo{}, &fakeOutboxRepo{}, now)

		_, err := svc.ImportCSV(context.Background(), "header only")

		assert.ErrorIs(t, err, apperr.EmptyImportErr)
	})
}
