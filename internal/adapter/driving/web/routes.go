package web

import "net/http"

// RegisterRoutes registers the web routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /{$}", h.Summary)
}
