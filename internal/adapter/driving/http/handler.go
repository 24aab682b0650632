// Package httphandler serves the scan history REST API.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
	"github.com/ericfisherdev/forkmonkey/internal/domain/port/driven"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// Handler is the HTTP driving adapter that serves recorded scan runs and
// their snapshots.
type Handler struct {
	store  driven.ScanStore
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a Handler reading from store.
func NewHandler(store driven.ScanStore, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterAPIRoutes registers the API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/runs", h.ListRuns)
	mux.HandleFunc("GET /api/v1/snapshots/{kind}", h.GetSnapshot)
}

// ApplyMiddleware wraps handler with logging and recovery middleware.
func ApplyMiddleware(handler http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, handler)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)

	return ApplyMiddleware(mux, logger)
}

// Health reports liveness together with the most recent recorded run. A
// database failure reports 503 so container health checks notice it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Time:   h.now().UTC().Format(time.RFC3339),
	}

	run, err := h.store.LatestRun(r.Context())
	if err != nil {
		h.logger.Error("failed to read latest run", "error", err)
		resp.Status = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	if run != nil {
		latest := toRunResponse(*run)
		resp.LatestRun = &latest
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListRuns returns recorded runs, newest first. The optional limit query
// parameter defaults to 20 and is capped at 100.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit: expected a positive integer")
			return
		}
		limit = min(parsed, maxRunsLimit)
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toRunResponse(run))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetSnapshot returns a stored snapshot document verbatim. The latest run is
// used unless the run query parameter names one.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	kind := model.SnapshotKind(r.PathValue("kind"))
	if !kind.Valid() {
		writeError(w, http.StatusNotFound, "unknown snapshot kind")
		return
	}

	runID := r.URL.Query().Get("run")
	if runID == "" {
		run, err := h.store.LatestRun(r.Context())
		if err != nil {
			h.logger.Error("failed to read latest run", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if run == nil {
			writeError(w, http.StatusNotFound, "no scan has been recorded")
			return
		}
		runID = run.ID
	}

	body, err := h.store.GetSnapshot(r.Context(), runID, kind)
	if errors.Is(err, driven.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get snapshot", "run_id", runID, "kind", kind, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Scan-Run", runID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
