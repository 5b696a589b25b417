package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/chroniclebot/chronicle/internal/logger"
	syncsvc "github.com/chroniclebot/chronicle/internal/sync"
)

// RunRequest scopes a manual reconciliation pass. An empty body runs every
// active config.
type RunRequest struct {
	ConfigID  string `json:"config_id"`
	ChannelID string `json:"channel_id" validate:"omitempty,slack_channel"`
}

// HandleRunNow triggers a manual reconciliation pass
// POST /api/v1/sync/run
func (h *SyncHandler) HandleRunNow(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return
	}

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"fields": FormatValidationError(err),
		})
		return
	}

	ctx := r.Context()
	log := logger.FromContext(ctx)

	var (
		results []syncsvc.PassResult
		err     error
	)
	switch {
	case req.ConfigID != "":
		var result syncsvc.PassResult
		result, err = h.service.RunConfigNow(ctx, req.ConfigID)
		results = []syncsvc.PassResult{result}
	case req.ChannelID != "":
		results, err = h.service.RunChannelNow(ctx, req.ChannelID)
	default:
		results, err = h.service.RunAllNow(ctx)
	}
	if err != nil {
		log.Error("Manual sync run failed",
			"config_id", req.ConfigID, "channel_id", req.ChannelID, "error", err)
		status, msg := mapServiceError(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Message: "Sync pass complete", Data: results})
}
