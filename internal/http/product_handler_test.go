package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshtrackdev/freshtrack/internal/apperr"
	"github.com/freshtrackdev/freshtrack/internal/config"
	"github.com/freshtrackdev/freshtrack/internal/inventory"
	"github.com/freshtrackdev/freshtrack/internal/model"
	"github.com/freshtrackdev/freshtrack/internal/service"
)

// stubProductService returns canned values; only the methods a test
// exercises are populated.
type stubProductService struct {
	service.ProductService

	products []model.Product
	stats    inventory.DashboardStats
	export   service.ExportResult
	getErr   error
}

func (s *stubProductService) ListProducts(context.Context, service.ListProductsParams) ([]model.Product, error) {
	return s.products, nil
}

func (s *stubProductService) GetProduct(context.Context, uuid.UUID) (model.Product, error) {
	if s.getErr != nil {
		return model.Product{}, s.getErr
	}
	return s.products[0], nil
}

func (s *stubProductService) DashboardStats(context.Context) (inventory.DashboardStats, error) {
	return s.stats, nil
}

func (s *stubProductService) ExportCSV(context.Context) (service.ExportResult, error) {
	return s.export, nil
}

func newTestRouter(svc service.ProductService) chi.Router {
	s := New(config.HTTP{}, slog.New(slog.DiscardHandler), svc, nil)

	r := chi.NewRouter()
	s.RegisterHandlers(r)
	return r
}

func TestListProductsRoute(t *testing.T) {
	r := newTestRouter(&stubProductService{products: []model.Product{{Name: "Milk"}}})

	t.Run("Should list products", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)

		var products []model.Product
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &products))
		require.Len(t, products, 1)
		assert.Equal(t, "Milk", products[0].Name)
	})

	t.Run("Should reject an unknown status filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?status=stale", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestGetProductRoute(t *testing.T) {
	t.Run("Should return 404 for a missing product", func(t *testing.T) {
		r := newTestRouter(&stubProductService{getErr: apperr.ProductNotFoundErr})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), apperr.ProductNotFoundCode)
	})

	t.Run("Should reject a malformed id", func(t *testing.T) {
		r := newTestRouter(&stubProductService{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestDashboardStatsRoute(t *testing.T) {
	r := newTestRouter(&stubProductService{stats: inventory.DashboardStats{
		TotalProducts: 2,
		FreshProducts: 2,
		TotalValue:    19.5,
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var stats inventory.DashboardStats
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalProducts)
	assert.InDelta(t, 19.5, stats.TotalValue, 1e-9)
}

func TestExportRoute(t *testing.T) {
	r := newTestRouter(&stubProductService{export: service.ExportResult{
		Filename: "inventory-export-2024-01-05.csv",
		Content:  `"Name","Category"`,
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/export", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "inventory-export-2024-01-05.csv")
	assert.True(t, strings.HasPrefix(resp.Body.String(), `"Name"`))
}
