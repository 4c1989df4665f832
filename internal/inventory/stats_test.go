package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/freshtrackdev/freshtrack/internal/inventory"
	"github.com/freshtrackdev/freshtrack/internal/model"
)

func testProduct(name string, expiry time.Time, price float64, quantity int) model.Product {
	return model.Product{
		Name:       name,
		Category:   model.DefaultCategory,
		ExpiryDate: model.DateOf(expiry),
		Price:      price,
		Quantity:   quantity,
		AlertDays:  model.DefaultAlertDays,
	}
}

func TestAggregate(t *testing.T) {
	now := time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC)

	t.Run("Should return all zeros for empty input", func(t *testing.T) {
		stats := inventory.Aggregate(nil, now)

		assert.Equal(t, inventory.DashboardStats{}, stats)
	})

	t.Run("Should count each status bucket once", func(t *testing.T) {
		products := []model.Product{
			testProduct("expired", now.AddDate(0, 0, -3), 10, 1),
			testProduct("warning", now.AddDate(0, 0, 2), 20, 2),
			testProduct("fresh", now.AddDate(0, 0, 30), 30, 3),
			testProduct("fresh too", now.AddDate(0, 0, 60), 5, 4),
		}

		stats := inventory.Aggregate(products, now)

		assert.Equal(t, 4, stats.TotalProducts)
		assert.Equal(t, 1, stats.ExpiredProducts)
		assert.Equal(t, 1, stats.WarningProducts)
		assert.Equal(t, 2, stats.FreshProducts)
		assert.Equal(t, stats.TotalProducts,
			stats.ExpiredProducts+stats.WarningProducts+stats.FreshProducts)
	})

	t.Run("Should sum price times quantity over all products", func(t *testing.T) {
		products := []model.Product{
			testProduct("a", now.AddDate(0, 0, 10), 12.50, 4),
			testProduct("b", now.AddDate(0, 0, -1), 3.99, 10),
			testProduct("c", now.AddDate(0, 0, 1), 0, 100),
		}

		stats := inventory.Aggregate(products, now)

		assert.InDelta(t, 12.50*4+3.99*10, stats.TotalValue, 1e-9)
	})
}

func TestGroupByStatus(t *testing.T) {
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	products := []model.Product{
		testProduct("gone", now.AddDate(0, 0, -1), 1, 1),
		testProduct("soon", now, 1, 1),
		testProduct("fine", now.AddDate(0, 0, 14), 1, 1),
	}

	groups := inventory.GroupByStatus(products, now)

	assert.Len(t, groups[inventory.StatusExpired], 1)
	assert.Len(t, groups[inventory.StatusWarning], 1)
	assert.Len(t, groups[inventory.StatusFresh], 1)
	assert.Equal(t, "soon", groups[inventory.StatusWarning][0].Name)
}
