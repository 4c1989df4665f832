package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/oapi-codegen/runtime/types"

	"github.com/freshtrackdev/freshtrack/internal/model"
	"github.com/freshtrackdev/freshtrack/internal/storage/db"
)

// ErrProductNotFound is returned when no product row matches the lookup.
var ErrProductNotFound = errors.New("product not found")

// ErrBarcodeConflict is returned when a create or update collides with an
// existing barcode.
var ErrBarcodeConflict = errors.New("barcode already exists")

const productColumns = `id, name, category, barcode, expiry_date, purchase_date,
	price, quantity, supplier, alert_days, created_at, updated_at`

type UpdateProductParams struct {
	Name         *string
	Category     *string
	Barcode      *string
	ExpiryDate   *types.Date
	PurchaseDate *types.Date
	Price        *float64
	Quantity     *int
	Supplier     *string
	AlertDays    *int
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	BulkCreateProducts(ctx context.Context, products []model.Product) (int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]model.Product, error)
	ListExpiringProducts(ctx context.Context, today types.Date) ([]model.Product, error)
	ListExpiredProducts(ctx context.Context, today types.Date) ([]model.Product, error)
	ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	price, err := numericFromFloat(product.Price)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (@id, @name, @category, @barcode, @expiry_date, @purchase_date,
			@price, @quantity, @supplier, @alert_days, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":            product.ID,
		"name":          product.Name,
		"category":      product.Category,
		"barcode":       product.Barcode,
		"expiry_date":   product.ExpiryDate.Time,
		"purchase_date": product.PurchaseDate.Time,
		"price":         price,
		"quantity":      int32(product.Quantity),
		"supplier":      product.Supplier,
		"alert_days":    int32(product.AlertDays),
		"created_at":    product.CreatedAt,
		"updated_at":    product.UpdatedAt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrBarcodeConflict
		}
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r productRepository) BulkCreateProducts(ctx context.Context, products []model.Product) (int64, error) {
	rows := make([][]any, 0, len(products))
	for _, product := range products {
		price, err := numericFromFloat(product.Price)
		if err != nil {
			return 0, err
		}

		rows = append(rows, []any{
			product.ID, product.Name, product.Category, product.Barcode,
			product.ExpiryDate.Time, product.PurchaseDate.Time, price,
			int32(product.Quantity), product.Supplier, int32(product.AlertDays),
			product.CreatedAt, product.UpdatedAt,
		})
	}

	count, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"products"},
		[]string{"id", "name", "category", "barcode", "expiry_date", "purchase_date",
			"price", "quantity", "supplier", "alert_days", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrBarcodeConflict
		}
		return 0, fmt.Errorf("bulk create products: %w", err)
	}

	return count, nil
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)

	return scanProduct(row)
}

func (r productRepository) GetProductByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE barcode = $1
	`, barcode)

	return scanProduct(row)
}

func (r productRepository) UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error) {
	var price *pgtype.Numeric
	if params.Price != nil {
		n, err := numericFromFloat(*params.Price)
		if err != nil {
			return model.Product{}, err
		}
		price = &n
	}

	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET
			name          = COALESCE(@name, name),
			category      = COALESCE(@category, category),
			barcode       = COALESCE(@barcode, barcode),
			expiry_date   = COALESCE(@expiry_date, expiry_date),
			purchase_date = COALESCE(@purchase_date, purchase_date),
			price         = COALESCE(@price, price),
			quantity      = COALESCE(@quantity, quantity),
			supplier      = COALESCE(@supplier, supplier),
			alert_days    = COALESCE(@alert_days, alert_days),
			updated_at    = NOW()
		WHERE id = @id
		RETURNING `+productColumns+`
	`, pgx.NamedArgs{
		"id":            id,
		"name":          params.Name,
		"category":      params.Category,
		"barcode":       params.Barcode,
		"expiry_date":   dateOrNil(params.ExpiryDate),
		"purchase_date": dateOrNil(params.PurchaseDate),
		"price":         price,
		"quantity":      params.Quantity,
		"supplier":      params.Supplier,
		"alert_days":    params.AlertDays,
	})

	product, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Product{}, ErrBarcodeConflict
		}
		return model.Product{}, err
	}

	return product, nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	return r.listProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY expiry_date ASC
	`)
}

func (r productRepository) ListProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return r.listProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE category = $1
		ORDER BY expiry_date ASC
	`, category)
}

// ListExpiringProducts returns not-yet-expired products inside their own
// alert_days lead window. This is the one place the per-product alert_days
// field drives behavior; badge classification uses the fixed warning window.
func (r productRepository) ListExpiringProducts(ctx context.Context, today types.Date) ([]model.Product, error) {
	return r.listProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE expiry_date >= $1
		  AND expiry_date <= $1 + alert_days
		ORDER BY expiry_date ASC
	`, today.Time)
}

func (r productRepository) ListExpiredProducts(ctx context.Context, today types.Date) ([]model.Product, error) {
	return r.listProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE expiry_date < $1
		ORDER BY expiry_date DESC
	`, today.Time)
}

func (r productRepository) ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error) {
	return r.listProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE quantity <= $1
		ORDER BY quantity ASC
	`, int32(threshold))
}

func (r productRepository) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	pattern := "%" + query + "%"
	return r.listProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE $1 OR barcode ILIKE $1 OR supplier ILIKE $1
		ORDER BY expiry_date ASC
	`, pattern)
}

func (r productRepository) listProducts(ctx context.Context, sql string, args ...any) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		product      model.Product
		price        pgtype.Numeric
		expiryDate   pgtype.Date
		purchaseDate pgtype.Date
		quantity     int32
		alertDays    int32
	)

	err := row.Scan(
		&product.ID, &product.Name, &product.Category, &product.Barcode,
		&expiryDate, &purchaseDate, &price, &quantity,
		&product.Supplier, &alertDays, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("scan product: %w", err)
	}

	priceValue, err := price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}

	product.Price = priceValue.Float64
	product.Quantity = int(quantity)
	product.AlertDays = int(alertDays)
	product.ExpiryDate = model.DateOf(expiryDate.Time)
	product.PurchaseDate = model.DateOf(purchaseDate.Time)

	return product, nil
}

func numericFromFloat(value float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(fmt.Sprintf("%f", value)); err != nil {
		return n, fmt.Errorf("scan price: %w", err)
	}
	return n, nil
}

func dateOrNil(d *types.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
