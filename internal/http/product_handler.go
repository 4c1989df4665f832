package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"

	"github.com/freshtrackdev/freshtrack/internal/apperr"
	"github.com/freshtrackdev/freshtrack/internal/inventory"
	"github.com/freshtrackdev/freshtrack/internal/model"
	"github.com/freshtrackdev/freshtrack/internal/service"
)

// maxImportBytes caps a CSV import request body at 8 MB.
const maxImportBytes = 8 << 20

type productHandler struct {
	productSvc service.ProductService

	respondJSON  func(w http.ResponseWriter, r *http.Request, status int, body any)
	respondError func(w http.ResponseWriter, r *http.Request, err error)
}

type productRequest struct {
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Barcode      *string    `json:"barcode"`
	ExpiryDate   types.Date `json:"expiry_date"`
	PurchaseDate types.Date `json:"purchase_date"`
	Price        float64    `json:"price"`
	Quantity     int        `json:"quantity"`
	Supplier     *string    `json:"supplier"`
	AlertDays    *int       `json:"alert_days"`
}

type updateProductRequest struct {
	Name         *string     `json:"name"`
	Category     *string     `json:"category"`
	Barcode      *string     `json:"barcode"`
	ExpiryDate   *types.Date `json:"expiry_date"`
	PurchaseDate *types.Date `json:"purchase_date"`
	Price        *float64    `json:"price"`
	Quantity     *int        `json:"quantity"`
	Supplier     *string     `json:"supplier"`
	AlertDays    *int        `json:"alert_days"`
}

type importResponse struct {
	Imported int64 `json:"imported"`
}

func (h *productHandler) register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Get("/", h.listProducts)
		r.Get("/expiring", h.listExpiringProducts)
		r.Get("/expired", h.listExpiredProducts)
		r.Get("/low-stock", h.listLowStockProducts)
		r.Get("/export", h.exportCSV)
		r.Post("/import", h.importCSV)
		r.Get("/barcode/{barcode}", h.getProductByBarcode)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getProduct)
			r.Patch("/", h.updateProduct)
			r.Delete("/", h.deleteProduct)
		})
	})
	r.Get("/dashboard/stats", h.dashboardStats)
}

func (h *productHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	params := service.CreateProductParams{
		Name:         req.Name,
		Category:     req.Category,
		Barcode:      req.Barcode,
		ExpiryDate:   req.ExpiryDate,
		PurchaseDate: req.PurchaseDate,
		Price:        req.Price,
		Quantity:     req.Quantity,
		Supplier:     req.Supplier,
		AlertDays:    model.DefaultAlertDays,
	}
	if req.AlertDays != nil {
		params.AlertDays = *req.AlertDays
	}

	product, err := h.productSvc.CreateProduct(r.Context(), params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusCreated, product)
}

func (h *productHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	params := service.ListProductsParams{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
		Status:   inventory.StatusCategory(r.URL.Query().Get("status")),
	}

	switch params.Status {
	case "", inventory.StatusFresh, inventory.StatusWarning, inventory.StatusExpired:
	default:
		h.respondError(w, r, apperr.ValidationErr)
		return
	}

	products, err := h.productSvc.ListProducts(r.Context(), params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, products)
}

func (h *productHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, product)
}

func (h *productHandler) getProductByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.productSvc.GetProductByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, product)
}

func (h *productHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, service.UpdateProductParams{
		Name:         req.Name,
		Category:     req.Category,
		Barcode:      req.Barcode,
		ExpiryDate:   req.ExpiryDate,
		PurchaseDate: req.PurchaseDate,
		Price:        req.Price,
		Quantity:     req.Quantity,
		Supplier:     req.Supplier,
		AlertDays:    req.AlertDays,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, product)
}

func (h *productHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *productHandler) listExpiringProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.ListExpiringProducts(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, products)
}

func (h *productHandler) listExpiredProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.ListExpiredProducts(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, products)
}

func (h *productHandler) listLowStockProducts(w http.ResponseWriter, r *http.Request) {
	threshold := 5
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := parsePositiveInt(raw)
		if err != nil {
			h.respondError(w, r, apperr.ValidationErr.WrapParent(err))
			return
		}
		threshold = parsed
	}

	products, err := h.productSvc.ListLowStockProducts(r.Context(), threshold)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, products)
}

func (h *productHandler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.productSvc.DashboardStats(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, stats)
}

func (h *productHandler) exportCSV(w http.ResponseWriter, r *http.Request) {
	result, err := h.productSvc.ExportCSV(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write([]byte(result.Content))
}

func (h *productHandler) importCSV(w http.ResponseWriter, r *http.Request) {
	content, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		h.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	count, err := h.productSvc.ImportCSV(r.Context(), string(content))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusCreated, importResponse{Imported: count})
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative: %d", n)
	}
	return n, nil
}
