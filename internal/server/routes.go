package server

import (
	"net/http"
	"strings"

	"github.com/ternarybob/pricewatch/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Products
	mux.HandleFunc("/api/products", s.handleProductsRoute)  // GET (list), POST (add by URL)
	mux.HandleFunc("/api/products/", s.handleProductRoutes) // /{id} and subpaths

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleProductsRoute routes the product collection endpoint
func (s *Server) handleProductsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.ProductHandler.ListHandler(w, r)
	case "POST":
		s.app.ProductHandler.AddHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleProductRoutes routes /api/products/{id} and its subpaths
func (s *Server) handleProductRoutes(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/products/"

	productID := handlers.PathSegment(r.URL.Path, prefix, 0)
	if productID == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	action := handlers.PathSegment(r.URL.Path, prefix, 1)
	switch {
	case action == "" && r.Method == "DELETE":
		s.app.ProductHandler.DeleteHandler(w, r, productID)
	case action == "refresh" && r.Method == "PUT":
		s.app.ProductHandler.RefreshHandler(w, r, productID)
	case action == "csv" && r.Method == "GET":
		s.app.ProductHandler.CSVHandler(w, r, productID)
	case action == "summary" && r.Method == "GET":
		s.app.ProductHandler.SummaryHandler(w, r, productID)
	case action == "explain" && r.Method == "POST":
		s.app.ExplainHandler.ExplainHandler(w, r, productID)
	case action == "alert" && r.Method == "GET":
		s.app.ProductHandler.AlertHandler(w, r, productID)
	case action == "alert" && r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/ack"):
		s.app.ProductHandler.AcknowledgeHandler(w, r, productID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}
