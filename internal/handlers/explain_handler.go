package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/services/analysis"
	"github.com/ternarybob/pricewatch/internal/services/llm"
	"github.com/ternarybob/pricewatch/internal/services/monitor"
)

// ExplainHandler streams AI strategy briefs for price changes over SSE.
type ExplainHandler struct {
	monitor   *monitor.Service
	explainer interfaces.Explainer
	logger    arbor.ILogger
}

// NewExplainHandler creates a new explain handler
func NewExplainHandler(monitorService *monitor.Service, explainer interfaces.Explainer, logger arbor.ILogger) *ExplainHandler {
	return &ExplainHandler{
		monitor:   monitorService,
		explainer: explainer,
		logger:    logger,
	}
}

type explainRequest struct {
	OldPrice float64 `json:"oldPrice"`
	NewPrice float64 `json:"newPrice"`
}

// ExplainHandler handles POST /api/products/{id}/explain. The response is
// a text/event-stream of content frames terminated by [DONE] or an error
// frame; the explainer's frame format is relayed verbatim so clients and
// the session parser share one contract. Client disconnect cancels the
// upstream request.
func (h *ExplainHandler) ExplainHandler(w http.ResponseWriter, r *http.Request, productID string) {
	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.monitor.GetProduct(productID)
	if err != nil || product.OwnerID != OwnerID(r) {
		WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	summaries, err := analysis.Aggregate(product.PriceHistory)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Product has no price history")
		return
	}

	context := analysis.ComposeContext(summaries, product.Title, product.Platform, product.CurrentPrice)
	prompt := llm.BuildStrategyPrompt(product, context, req.OldPrice, req.NewPrice)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	if h.explainer == nil {
		payload, _ := json.Marshal(map[string]string{"error": "Explanation service is not configured"})
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return
	}

	stream, err := h.explainer.Stream(r.Context(), prompt)
	if err != nil {
		h.logger.Warn().Err(err).Str("product_id", productID).Msg("Explainer unavailable")
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return
	}
	defer stream.Close()

	h.logger.Info().
		Str("product_id", productID).
		Float64("old_price", req.OldPrice).
		Float64("new_price", req.NewPrice).
		Msg("Streaming explanation")

	reader := bufio.NewReader(stream)
	for {
		select {
		case <-r.Context().Done():
			// Client went away; closing the stream cancels upstream
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if _, werr := io.WriteString(w, line); werr != nil {
				return
			}
			flusher.Flush()
		}
		if err != nil {
			return
		}
	}
}
