package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/freshtrackdev/freshtrack/internal/inventory"
)

func TestClassify(t *testing.T) {
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("Should classify today as warning with zero days", func(t *testing.T) {
		status := inventory.Classify(now, now)

		assert.Equal(t, inventory.StatusWarning, status.Category)
		assert.Equal(t, 0, status.DaysUntilExpiry)
	})

	t.Run("Should classify seventh day as warning", func(t *testing.T) {
		status := inventory.Classify(now.AddDate(0, 0, 7), now)

		assert.Equal(t, inventory.StatusWarning, status.Category)
		assert.Equal(t, 7, status.DaysUntilExpiry)
	})

	t.Run("Should classify eighth day as fresh", func(t *testing.T) {
		status := inventory.Classify(now.AddDate(0, 0, 8), now)

		assert.Equal(t, inventory.StatusFresh, status.Category)
		assert.Equal(t, 8, status.DaysUntilExpiry)
	})

	t.Run("Should classify yesterday as expired with negative days", func(t *testing.T) {
		status := inventory.Classify(now.AddDate(0, 0, -1), now)

		assert.Equal(t, inventory.StatusExpired, status.Category)
		assert.Equal(t, -1, status.DaysUntilExpiry)
	})

	t.Run("Should ignore the time of day on both sides", func(t *testing.T) {
		lateNow := time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC)
		earlyExpiry := time.Date(2024, 1, 5, 0, 1, 0, 0, time.UTC)

		status := inventory.Classify(earlyExpiry, lateNow)

		assert.Equal(t, inventory.StatusWarning, status.Category)
		assert.Equal(t, 0, status.DaysUntilExpiry)
	})

	t.Run("Should have day count sign matching date comparison", func(t *testing.T) {
		for offset := -30; offset <= 30; offset++ {
			status := inventory.Classify(now.AddDate(0, 0, offset), now)
			assert.Equal(t, offset, status.DaysUntilExpiry)
			assert.Contains(t, []inventory.StatusCategory{
				inventory.StatusFresh,
				inventory.StatusWarning,
				inventory.StatusExpired,
			}, status.Category)
		}
	})
}
