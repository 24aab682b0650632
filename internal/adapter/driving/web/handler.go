// Package web serves the HTML summary of the latest scan.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/forkmonkey/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
	"github.com/ericfisherdev/forkmonkey/internal/domain/port/driven"
)

// Handler is the web driving adapter that renders the summary page.
type Handler struct {
	store  driven.ScanStore
	logger *slog.Logger
}

// NewHandler creates a Handler reading from store.
func NewHandler(store driven.ScanStore, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// Summary renders the latest run's statistics and leaderboard.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.loadSummary(r.Context())
	if err != nil {
		h.logger.Error("failed to load summary", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	body := templ.Raw(RenderMarkdown(summaryMarkdown(summary)))
	layout := Layout("ForkMonkey", body)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render summary", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) loadSummary(ctx context.Context) (vm.SummaryViewModel, error) {
	run, err := h.store.LatestRun(ctx)
	if err != nil {
		return vm.SummaryViewModel{}, err
	}
	if run == nil {
		return vm.SummaryViewModel{}, nil
	}

	var stats model.NetworkStats
	if err := h.decodeSnapshot(ctx, run.ID, model.SnapshotStatistics, &stats); err != nil {
		return vm.SummaryViewModel{}, err
	}

	var leaderboard model.Leaderboard
	if err := h.decodeSnapshot(ctx, run.ID, model.SnapshotLeaderboard, &leaderboard); err != nil {
		return vm.SummaryViewModel{}, err
	}

	return toSummaryViewModel(*run, stats, leaderboard), nil
}

func (h *Handler) decodeSnapshot(ctx context.Context, runID string, kind model.SnapshotKind, v any) error {
	body, err := h.store.GetSnapshot(ctx, runID, kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s snapshot of run %s: %w", kind, runID, err)
	}
	return nil
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+`</title><style>`+pageStyle+`</style></head><body><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:0;background:#fdf8f0;color:#3b2f1e}` +
	`main{max-width:48rem;margin:0 auto;padding:1.5rem}` +
	`table{border-collapse:collapse;margin:.5rem 0}` +
	`th,td{border:1px solid #d8c8a8;padding:.3rem .6rem;text-align:left}` +
	`code{background:#efe4cf;padding:0 .2rem}`
