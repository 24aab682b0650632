package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RunResponse is the JSON representation of a recorded scan run.
type RunResponse struct {
	ID             string `json:"id"`
	RootRepo       string `json:"root_repo"`
	StartedAt      string `json:"started_at"`
	FinishedAt     string `json:"finished_at"`
	DurationMillis int64  `json:"duration_ms"`
	ReposScanned   int    `json:"repos_scanned"`
	CreaturesFound int    `json:"creatures_found"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status    string       `json:"status"`
	Time      string       `json:"time"`
	LatestRun *RunResponse `json:"latest_run"`
}

// toRunResponse converts a domain ScanRun to its JSON response representation.
func toRunResponse(run model.ScanRun) RunResponse {
	return RunResponse{
		ID:             run.ID,
		RootRepo:       run.RootRepo,
		StartedAt:      run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:     run.FinishedAt.UTC().Format(time.RFC3339),
		DurationMillis: run.Duration().Milliseconds(),
		ReposScanned:   run.ReposScanned,
		CreaturesFound: run.CreaturesFound,
	}
}
