package inventory_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshtrackdev/freshtrack/internal/inventory"
	"github.com/freshtrackdev/freshtrack/internal/model"
)

func TestEncodeCSV(t *testing.T) {
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("Should emit only the header for no products", func(t *testing.T) {
		out := inventory.EncodeCSV(nil, now)

		assert.Equal(t,
			`"Name","Category","Barcode","Expiry Date","Purchase Date","Price","Quantity","Supplier","Alert Days","Status"`,
			out)
	})

	t.Run("Should quote every field and derive status at encode time", func(t *testing.T) {
		milk := model.Product{
			Name:         "Milk",
			Category:     "Dairy Products",
			ExpiryDate:   model.DateOf(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
			PurchaseDate: model.DateOf(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			Price:        50,
			Quantity:     3,
			AlertDays:    7,
		}

		out := inventory.EncodeCSV([]model.Product{milk}, now)
		lines := strings.Split(out, "\n")

		require.Len(t, lines, 2)
		assert.Equal(t,
			`"Milk","Dairy Products","","2024-01-10","2024-01-01","50","3","","7","warning"`,
			lines[1])
	})

	t.Run("Should serialize missing optionals as empty text", func(t *testing.T) {
		p := testProduct("Bread", now.AddDate(0, 0, 1), 2.5, 1)

		out := inventory.EncodeCSV([]model.Product{p}, now)

		assert.Contains(t, out, `"Bread","Others","",`)
		assert.NotContains(t, out, "null")
	})
}

func TestDecodeCSV(t *testing.T) {
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	today := model.DateOf(now)

	t.Run("Should yield nothing for a header-only file", func(t *testing.T) {
		drafts := inventory.DecodeCSV(`"Name","Category","Barcode"`, now)

		assert.Empty(t, drafts)
	})

	t.Run("Should drop rows with an empty name and keep the rest", func(t *testing.T) {
		content := strings.Join([]string{
			`"Name","Category","Barcode","Expiry Date","Purchase Date","Price","Quantity","Supplier","Alert Days","Status"`,
			`"","Dairy Products","","2024-01-10","2024-01-01","50","3","","7","warning"`,
			`"Yogurt","Dairy Products","","2024-01-10","2024-01-01","20","2","","7","warning"`,
		}, "\n")

		drafts := inventory.DecodeCSV(content, now)

		require.Len(t, drafts, 1)
		assert.Equal(t, "Yogurt", drafts[0].Name)
	})

	t.Run("Should default malformed numeric fields instead of failing", func(t *testing.T) {
		content := strings.Join([]string{
			`"Name","Category","Barcode","Expiry Date","Purchase Date","Price","Quantity","Supplier","Alert Days","Status"`,
			`"Cheese","Dairy Products","","2024-01-10","2024-01-01","not-a-price","oops","","??","fresh"`,
		}, "\n")

		drafts := inventory.DecodeCSV(content, now)

		require.Len(t, drafts, 1)
		assert.Equal(t, float64(0), drafts[0].Price)
		assert.Equal(t, 1, drafts[0].Quantity)
		assert.Equal(t, model.DefaultAlertDays, drafts[0].AlertDays)
	})

	t.Run("Should default missing trailing columns", func(t *testing.T) {
		content := "header\n\"Eggs\""

		drafts := inventory.DecodeCSV(content, now)

		require.Len(t, drafts, 1)
		draft := drafts[0]
		assert.Equal(t, "Eggs", draft.Name)
		assert.Equal(t, model.DefaultCategory, draft.Category)
		assert.Nil(t, draft.Barcode)
		assert.Nil(t, draft.Supplier)
		assert.Equal(t, today, draft.ExpiryDate)
		assert.Equal(t, today, draft.PurchaseDate)
		assert.Equal(t, float64(0), draft.Price)
		assert.Equal(t, 1, draft.Quantity)
		assert.Equal(t, model.DefaultAlertDays, draft.AlertDays)
	})

	t.Run("Should round-trip fields for comma-free products", func(t *testing.T) {
		barcode := "8901234567890"
		supplier := "Daily Farm"
		products := []model.Product{
			{
				Name:         "Milk",
				Category:     "Dairy Products",
				Barcode:      &barcode,
				ExpiryDate:   model.DateOf(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
				PurchaseDate: model.DateOf(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
				Price:        50,
				Quantity:     3,
				Supplier:     &supplier,
				AlertDays:    5,
			},
			testProduct("Butter", now.AddDate(0, 0, 20), 8.75, 2),
		}

		drafts := inventory.DecodeCSV(inventory.EncodeCSV(products, now), now)

		require.Len(t, drafts, 2)
		for i, draft := range drafts {
			assert.Equal(t, products[i].Name, draft.Name)
			assert.Equal(t, products[i].Category, draft.Category)
			assert.Equal(t, products[i].ExpiryDate, draft.ExpiryDate)
			assert.Equal(t, products[i].PurchaseDate, draft.PurchaseDate)
			assert.Equal(t, products[i].Price, draft.Price)
			assert.Equal(t, products[i].Quantity, draft.Quantity)
			assert.Equal(t, products[i].AlertDays, draft.AlertDays)
		}
		assert.Equal(t, &barcode, drafts[0].Barcode)
		assert.Equal(t, &supplier, drafts[0].Supplier)
	})
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 1, 5, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "inventory-export-2024-01-05.csv", inventory.ExportFilename(now))
}
