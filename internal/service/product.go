package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"

	"github.com/freshtrackdev/freshtrack/internal/apperr"
	"github.com/freshtrackdev/freshtrack/internal/event"
	"github.com/freshtrackdev/freshtrack/internal/inventory"
	"github.com/freshtrackdev/freshtrack/internal/model"
	"github.com/freshtrackdev/freshtrack/internal/repository"
	"github.com/freshtrackdev/freshtrack/internal/storage/db"
	"github.com/freshtrackdev/freshtrack/pkg/outbox"
	"github.com/freshtrackdev/freshtrack/pkg/validator"
)

type CreateProductParams struct {
	Name         string     `validate:"required"`
	Category     string     `validate:"required"`
	Barcode      *string    `validate:"omitempty,min=1"`
	ExpiryDate   types.Date `validate:"required"`
	PurchaseDate types.Date `validate:"required"`
	Price        float64    `validate:"gte=0"`
	Quantity     int        `validate:"gte=0"`
	Supplier     *string    `validate:"omitempty,min=1"`
	AlertDays    int        `validate:"gt=0"`
}

type UpdateProductParams struct {
	Name         *string     `validate:"omitempty,min=1"`
	Category     *string     `validate:"omitempty,min=1"`
	Barcode      *string     `validate:"omitempty,min=1"`
	ExpiryDate   *types.Date `validate:"omitempty"`
	PurchaseDate *types.Date `validate:"omitempty"`
	Price        *float64    `validate:"omitempty,gte=0"`
	Quantity     *int        `validate:"omitempty,gte=0"`
	Supplier     *string     `validate:"omitempty,min=1"`
	AlertDays    *int        `validate:"omitempty,gt=0"`
}

type ListProductsParams struct {
	Category string
	Query    string
	Status   inventory.StatusCategory
}

// ExportResult is a rendered CSV export plus its download filename.
type ExportResult struct {
	Filename string
	Content  string
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	ListExpiringProducts(ctx context.Context) ([]model.Product, error)
	ListExpiredProducts(ctx context.Context) ([]model.Product, error)
	ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error)
	DashboardStats(ctx context.Context) (inventory.DashboardStats, error)
	ExportCSV(ctx context.Context) (ExportResult, error)
	ImportCSV(ctx context.Context, content string) (int64, error)
}

type productService struct {
	db            db.DB
	validator     validator.Validator
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository

	// now is swappable in tests so classification stays deterministic.
	now func() time.Time
}

func NewProductService(
	db db.DB,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		validator:     validator,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		now:           time.Now,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, err
	}

	now := s.now()
	product, err := draftToProduct(model.ProductDraft{
		Name:         params.Name,
		Category:     params.Category,
		Barcode:      params.Barcode,
		ExpiryDate:   params.ExpiryDate,
		PurchaseDate: params.PurchaseDate,
		Price:        params.Price,
		Quantity:     params.Quantity,
		Supplier:     params.Supplier,
		AlertDays:    params.AlertDays,
	}, now)
	if err != nil {
		return model.Product{}, err
	}

	evBytes, err := json.Marshal(productCreatedEvent(product))
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:   event.TopicProductCreated,
				Headers: outbox.BuildHeaders(ctx),
				Payload: evBytes,
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, mapRepoErr(err)
	}

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, mapRepoErr(err)
	}

	return product, nil
}

func (s *productService) GetProductByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	product, err := s.productRepo.GetProductByBarcode(ctx, barcode)
	if err != nil {
		return model.Product{}, mapRepoErr(err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, err
	}

	product, err := s.productRepo.UpdateProduct(ctx, id, repository.UpdateProductParams{
		Name:         params.Name,
		Category:     params.Category,
		Barcode:      params.Barcode,
		ExpiryDate:   params.ExpiryDate,
		PurchaseDate: params.PurchaseDate,
		Price:        params.Price,
		Quantity:     params.Quantity,
		Supplier:     params.Supplier,
		AlertDays:    params.AlertDays,
	})
	if err != nil {
		return model.Product{}, mapRepoErr(err)
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return mapRepoErr(err)
	}

	return nil
}

// ListProducts applies the optional category/search filters in the store
// and the status filter in memory, so status always comes from the one
// classifier call path.
func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	var (
		products []model.Product
		err      error
	)

	switch {
	case params.Query != "":
		products, err = s.productRepo.SearchProducts(ctx, params.Query)
	case params.Category != "":
		products, err = s.productRepo.ListProductsByCategory(ctx, params.Category)
	default:
		products, err = s.productRepo.ListAllProducts(ctx)
	}
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if params.Status != "" {
		products = inventory.GroupByStatus(products, s.now())[params.Status]
	}

	return products, nil
}

func (s *productService) ListExpiringProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListExpiringProducts(ctx, model.DateOf(s.now()))
	if err != nil {
		return nil, mapRepoErr(err)
	}

	return products, nil
}

func (s *productService) ListExpiredProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListExpiredProducts(ctx, model.DateOf(s.now()))
	if err != nil {
		return nil, mapRepoErr(err)
	}

	return products, nil
}

func (s *productService) ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error) {
	products, err := s.productRepo.ListLowStockProducts(ctx, threshold)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	return products, nil
}

// DashboardStats aggregates over the full product set, not a filtered
// view, with one captured now for the whole pass.
func (s *productService) DashboardStats(ctx context.Context) (inventory.DashboardStats, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return inventory.DashboardStats{}, mapRepoErr(err)
	}

	return inventory.Aggregate(products, s.now()), nil
}

func (s *productService) ExportCSV(ctx context.Context) (ExportResult, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return ExportResult{}, mapRepoErr(err)
	}

	now := s.now()
	return ExportResult{
		Filename: inventory.ExportFilename(now),
		Content:  inventory.EncodeCSV(products, now),
	}, nil
}

func (s *productService) ImportCSV(ctx context.Context, content string) (int64, error) {
	now := s.now()
	drafts := inventory.DecodeCSV(content, now)
	if len(drafts) == 0 {
		return 0, apperr.EmptyImportErr
	}

	products := make([]model.Product, 0, len(drafts))
	for _, draft := range drafts {
		product, err := draftToProduct(draft, now)
		if err != nil {
			return 0, err
		}
		products = append(products, product)
	}

	var count int64
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		count, err = s.productRepo.
			WithDB(db).
			BulkCreateProducts(ctx, products)
		if err != nil {
			return fmt.Errorf("product repository bulk create products: %w", err)
		}

		return nil
	}); err != nil {
		return 0, mapRepoErr(err)
	}

	return count, nil
}

func draftToProduct(draft model.ProductDraft, now time.Time) (model.Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	return model.Product{
		ID:           id,
		Name:         draft.Name,
		Category:     draft.Category,
		Barcode:      draft.Barcode,
		ExpiryDate:   draft.ExpiryDate,
		PurchaseDate: draft.PurchaseDate,
		Price:        draft.Price,
		Quantity:     draft.Quantity,
		Supplier:     draft.Supplier,
		AlertDays:    draft.AlertDays,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func productCreatedEvent(product model.Product) event.ProductCreatedEvent {
	return event.ProductCreatedEvent{
		ProductID:  product.ID.String(),
		Name:       product.Name,
		Category:   product.Category,
		ExpiryDate: product.ExpiryDate.Format("2006-01-02"),
		Price:      product.Price,
		Quantity:   product.Quantity,
	}
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return apperr.ProductNotFoundErr
	case errors.Is(err, repository.ErrBarcodeConflict):
		return apperr.BarcodeAlreadyExistsErr
	default:
		return err
	}
}
