package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/models"
	"github.com/ternarybob/pricewatch/internal/services/analysis"
	"github.com/ternarybob/pricewatch/internal/services/monitor"
	"github.com/ternarybob/pricewatch/internal/services/tracker"
)

// ProductHandler handles product CRUD, refresh, and export endpoints
type ProductHandler struct {
	monitor *monitor.Service
	tracker *tracker.Service
	logger  arbor.ILogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(monitorService *monitor.Service, trackerService *tracker.Service, logger arbor.ILogger) *ProductHandler {
	return &ProductHandler{
		monitor: monitorService,
		tracker: trackerService,
		logger:  logger,
	}
}

type addProductRequest struct {
	URL string `json:"url"`
}

// ListHandler handles GET /api/products
func (h *ProductHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.monitor.ListProducts(OwnerID(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list products")
		WriteError(w, http.StatusInternalServerError, "Server error fetching products")
		return
	}
	WriteJSON(w, http.StatusOK, products)
}

// AddHandler handles POST /api/products
func (h *ProductHandler) AddHandler(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		WriteError(w, http.StatusBadRequest, "Please provide a product URL")
		return
	}

	product, err := h.monitor.AddProduct(r.Context(), OwnerID(r), req.URL)
	if err != nil {
		if errors.Is(err, interfaces.ErrResolutionFailed) {
			WriteError(w, http.StatusBadRequest, "Could not fetch product data from the URL")
			return
		}
		h.logger.Error().Err(err).Msg("Failed to add product")
		WriteError(w, http.StatusInternalServerError, "Server error adding product")
		return
	}

	WriteJSON(w, http.StatusCreated, product)
}

// RefreshHandler handles PUT /api/products/{id}/refresh
func (h *ProductHandler) RefreshHandler(w http.ResponseWriter, r *http.Request, productID string) {
	product, err := h.ownedProduct(r, productID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err = h.monitor.Refresh(r.Context(), product.ID)
	if err != nil {
		if errors.Is(err, interfaces.ErrResolutionFailed) {
			WriteError(w, http.StatusBadRequest, "Could not fetch updated product data")
			return
		}
		h.logger.Error().Err(err).Str("product_id", productID).Msg("Refresh failed")
		WriteError(w, http.StatusInternalServerError, "Server error updating product")
		return
	}

	WriteJSON(w, http.StatusOK, product)
}

// DeleteHandler handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, productID string) {
	if _, err := h.ownedProduct(r, productID); err != nil {
		WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	if err := h.monitor.DeleteProduct(productID); err != nil {
		h.logger.Error().Err(err).Str("product_id", productID).Msg("Delete failed")
		WriteError(w, http.StatusInternalServerError, "Server error deleting product")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// CSVHandler handles GET /api/products/{id}/csv, exporting the full price
// series as delimited text, oldest first.
func (h *ProductHandler) CSVHandler(w http.ResponseWriter, r *http.Request, productID string) {
	product, err := h.ownedProduct(r, productID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	filename := ExportFilename(product.Title, "_prices.csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	writer.Write([]string{"Date", "Price (INR)", "Product", "Platform"})
	for _, point := range product.PriceHistory {
		writer.Write([]string{
			point.Date.Format("02/01/2006"),
			fmt.Sprintf("%.0f", point.Price),
			product.Title,
			product.Platform,
		})
	}
	writer.Flush()

	h.logger.Debug().
		Str("product_id", productID).
		Int("rows", len(product.PriceHistory)).
		Msg("CSV export generated")
}

// SummaryHandler handles GET /api/products/{id}/summary, exporting the
// analytical context as plain text.
func (h *ProductHandler) SummaryHandler(w http.ResponseWriter, r *http.Request, productID string) {
	product, err := h.ownedProduct(r, productID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	summaries, err := analysis.Aggregate(product.PriceHistory)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Product has no price history")
		return
	}

	context := analysis.ComposeContext(summaries, product.Title, product.Platform, product.CurrentPrice)

	filename := ExportFilename(product.Title, "_summary.txt")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write([]byte(context))
}

// AlertHandler handles GET /api/products/{id}/alert, returning the
// currently surfaceable alert (404 when none).
func (h *ProductHandler) AlertHandler(w http.ResponseWriter, r *http.Request, productID string) {
	if _, err := h.ownedProduct(r, productID); err != nil {
		WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	alert := h.tracker.Get(productID)
	if alert == nil {
		WriteError(w, http.StatusNotFound, "No active alert")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"product_id":        alert.ProductID,
		"old_price":         alert.OldPrice,
		"new_price":         alert.NewPrice,
		"direction":         alert.Direction(),
		"first_detected_at": alert.FirstDetectedAt.Format(time.RFC3339),
		"acknowledged":      alert.Acknowledged,
	})
}

// AcknowledgeHandler handles POST /api/products/{id}/alert/ack
func (h *ProductHandler) AcknowledgeHandler(w http.ResponseWriter, r *http.Request, productID string) {
	if _, err := h.ownedProduct(r, productID); err != nil {
		WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	h.tracker.Acknowledge(productID)
	WriteSuccess(w, "Alert acknowledged")
}

// ownedProduct fetches a product and verifies the request's owner scope.
func (h *ProductHandler) ownedProduct(r *http.Request, productID string) (*models.Product, error) {
	product, err := h.monitor.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	if product.OwnerID != OwnerID(r) {
		return nil, interfaces.ErrProductNotFound
	}
	return product, nil
}
