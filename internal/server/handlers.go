package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/maltedev/leadtime-scraper/internal/models"
)

// StatusProvider exposes the batch currently being scraped.
type StatusProvider interface {
	Snapshot() *models.BatchReport
}

type Handlers struct {
	status StatusProvider
	logger *slog.Logger
}

func NewHandlers(status StatusProvider, logger *slog.Logger) *Handlers {
	return &Handlers{
		status: status,
		logger: logger,
	}
}

// StatusResponse summarizes a batch for the /status endpoint
type StatusResponse struct {
	RunID       string                 `json:"run_id"`
	Running     bool                   `json:"running"`
	Interrupted bool                   `json:"interrupted"`
	Total       int                    `json:"total"`
	Completed   int                    `json:"completed"`
	Successful  int                    `json:"successful"`
	Failed      int                    `json:"failed"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Results     []*models.ScrapeResult `json:"results"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	report := h.status.Snapshot()
	if report == nil {
		h.respondError(w, http.StatusNotFound, "no batch started yet")
		return
	}

	resp := StatusResponse{
		RunID:       report.RunID,
		Running:     report.CompletedAt.IsZero(),
		Interrupted: report.Interrupted,
		Total:       len(report.Parts),
		Completed:   len(report.Results),
		Successful:  report.Successful(),
		Failed:      report.Failed(),
		StartedAt:   report.StartedAt,
		Results:     report.Results,
	}
	if !report.CompletedAt.IsZero() {
		completed := report.CompletedAt
		resp.CompletedAt = &completed
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
