package handler

import (
	"net/http"

	"github.com/chroniclebot/chronicle/internal/logger"
	"github.com/chroniclebot/chronicle/internal/stats"
	syncsvc "github.com/chroniclebot/chronicle/internal/sync"
)

// StatsHandler merges persisted sync totals with runtime counters
type StatsHandler struct {
	service   *syncsvc.Service
	collector *stats.Collector
}

// NewStatsHandler creates the stats HTTP handler
func NewStatsHandler(service *syncsvc.Service, collector *stats.Collector) *StatsHandler {
	return &StatsHandler{service: service, collector: collector}
}

// StatsResponse combines database totals with in-process counters
type StatsResponse struct {
	Store   *syncsvc.StatsReport `json:"store"`
	Runtime stats.Snapshot       `json:"runtime"`
}

// HandleGetStats reports sync totals, optionally scoped to one config
// GET /api/v1/sync/stats?config_id=
func (h *StatsHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	var configID *string
	if v := r.URL.Query().Get("config_id"); v != "" {
		configID = &v
	}

	report, err := h.service.Stats(r.Context(), configID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to load sync stats", "error", err)
		status, msg := mapServiceError(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Data: StatsResponse{
		Store:   report,
		Runtime: h.collector.Snapshot(),
	}})
}
