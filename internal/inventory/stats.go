package inventory

import (
	"time"

	"github.com/freshtrackdev/freshtrack/internal/model"
)

// DashboardStats is the aggregate view rendered on the dashboard.
// TotalProducts always equals the sum of the three status counters.
type DashboardStats struct {
	TotalProducts   int     `json:"total_products"`
	ExpiredProducts int     `json:"expired_products"`
	WarningProducts int     `json:"warning_products"`
	FreshProducts   int     `json:"fresh_products"`
	TotalValue      float64 `json:"total_value"`
}

// Aggregate computes dashboard statistics over products in a single pass.
// Every product is classified against the same now, so a render cannot
// straddle a midnight boundary and disagree with itself.
func Aggregate(products []model.Product, now time.Time) DashboardStats {
	stats := DashboardStats{TotalProducts: len(products)}

	for _, p := range products {
		stats.TotalValue += p.Price * float64(p.Quantity)

		switch Classify(p.ExpiryDate.Time, now).Category {
		case StatusExpired:
			stats.ExpiredProducts++
		case StatusWarning:
			stats.WarningProducts++
		case StatusFresh:
			stats.FreshProducts++
		}
	}

	return stats
}

// GroupByStatus splits products into their freshness buckets, classifying
// each against the same now.
func GroupByStatus(products []model.Product, now time.Time) map[StatusCategory][]model.Product {
	groups := map[StatusCategory][]model.Product{}
	for _, p := range products {
		category := Classify(p.ExpiryDate.Time, now).Category
		groups[category] = append(groups[category], p)
	}
	return groups
}
