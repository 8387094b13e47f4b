package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// defaultOwnerID is used when no owner header is supplied (single-tenant
// deployments).
const defaultOwnerID = "default"

// OwnerID extracts the owner scope from the request. Authentication proper
// lives outside this service; the owner id arrives as a header.
func OwnerID(r *http.Request) string {
	if owner := r.Header.Get("X-Owner-ID"); owner != "" {
		return owner
	}
	return defaultOwnerID
}

var filenameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ExportFilename derives a short download filename from a product title.
func ExportFilename(title, suffix string) string {
	short := title
	if len(short) > 25 {
		short = short[:25]
	}
	return filenameSanitizer.ReplaceAllString(short, "_") + suffix
}

// PathSegment returns the path segment at the given index after the
// prefix, or "" when absent. Index 0 is the first segment after prefix.
func PathSegment(path, prefix string, index int) string {
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.Trim(path[len(prefix):], "/")
	if rest == "" {
		return ""
	}
	segments := strings.Split(rest, "/")
	if index >= len(segments) {
		return ""
	}
	return segments[index]
}
