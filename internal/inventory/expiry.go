// Package inventory holds the pure domain computations: expiry
// classification, dashboard aggregation and the CSV import/export codec.
// Nothing in this package performs I/O or reads the system clock; callers
// capture "now" once per logical operation and pass it in.
package inventory

import "time"

// StatusCategory is the freshness bucket of a product.
type StatusCategory string

const (
	StatusFresh   StatusCategory = "fresh"
	StatusWarning StatusCategory = "warning"
	StatusExpired StatusCategory = "expired"
)

// WarningWindowDays is the fixed classification window: a product expiring
// within this many days (inclusive) is a warning. It is intentionally
// distinct from the per-product alert_days field, which only drives the
// expiring-soon store query.
const WarningWindowDays = 7

// Status is the classification of a single product at a point in time.
// DaysUntilExpiry is negative once the product has expired.
type Status struct {
	Category        StatusCategory
	DaysUntilExpiry int
}

// Classify buckets a product by its expiry date relative to now. Both
// inputs are truncated to midnight before comparison, so a product
// expiring today classifies as warning with zero days left regardless of
// the time of day.
func Classify(expiryDate, now time.Time) Status {
	days := daysBetween(now, expiryDate)

	switch {
	case days < 0:
		return Status{Category: StatusExpired, DaysUntilExpiry: days}
	case days <= WarningWindowDays:
		return Status{Category: StatusWarning, DaysUntilExpiry: days}
	default:
		return Status{Category: StatusFresh, DaysUntilExpiry: days}
	}
}

func daysBetween(from, to time.Time) int {
	from = midnight(from)
	to = midnight(to)
	return int(to.Sub(from) / (24 * time.Hour))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
