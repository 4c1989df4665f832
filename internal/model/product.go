package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"
)

// DefaultCategory is assigned to products imported without a category.
const DefaultCategory = "Others"

// DefaultAlertDays is the lead time, in days, at which a product shows up
// in the expiring-soon query when no explicit value was set.
const DefaultAlertDays = 7

// Categories is the suggested category set offered by product forms.
// It is not enforced at the data layer.
var Categories = []string{
	"Dairy Products",
	"Fruits & Vegetables",
	"Meat & Seafood",
	"Bakery",
	"Beverages",
	"Snacks",
	"Frozen Foods",
	DefaultCategory,
}

// Product is a tracked inventory item. Expiry and purchase dates are
// calendar dates without a time component, so classification does not
// shift across timezones.
type Product struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Barcode      *string    `json:"barcode,omitempty"`
	ExpiryDate   types.Date `json:"expiry_date"`
	PurchaseDate types.Date `json:"purchase_date"`
	Price        float64    `json:"price"`
	Quantity     int        `json:"quantity"`
	Supplier     *string    `json:"supplier,omitempty"`
	AlertDays    int        `json:"alert_days"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ProductDraft is a product payload before the store has assigned an
// identity, used for form creation and CSV import.
type ProductDraft struct {
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Barcode      *string    `json:"barcode,omitempty"`
	ExpiryDate   types.Date `json:"expiry_date"`
	PurchaseDate types.Date `json:"purchase_date"`
	Price        float64    `json:"price"`
	Quantity     int        `json:"quantity"`
	Supplier     *string    `json:"supplier,omitempty"`
	AlertDays    int        `json:"alert_days"`
}

// DateOf truncates t to a calendar date.
func DateOf(t time.Time) types.Date {
	return types.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}
