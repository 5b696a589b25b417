package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/logger"
	"github.com/chroniclebot/chronicle/internal/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// HandleGetHistory lists sync history rows, newest first
// GET /api/v1/sync/history?config_id=&channel_id=&status=&since=&until=&limit=&offset=
func (h *SyncHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := historyFilterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.service.History(r.Context(), filter)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list sync history", "error", err)
		status, msg := mapServiceError(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Data: rows})
}

func historyFilterFromQuery(r *http.Request) (repository.HistoryFilter, error) {
	q := r.URL.Query()
	filter := repository.HistoryFilter{Limit: defaultHistoryLimit}

	if v := q.Get("config_id"); v != "" {
		filter.ConfigID = &v
	}
	if v := q.Get("channel_id"); v != "" {
		filter.ChannelID = &v
	}
	if v := q.Get("status"); v != "" {
		status := domain.SyncStatus(v)
		if !status.Valid() {
			return filter, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, v)
		}
		filter.Status = &status
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("%w: since must be RFC 3339", domain.ErrInvalidInput)
		}
		filter.Since = &t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("%w: until must be RFC 3339", domain.ErrInvalidInput)
		}
		filter.Until = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput)
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("%w: offset must be a non-negative integer", domain.ErrInvalidInput)
		}
		filter.Offset = n
	}
	return filter, nil
}
