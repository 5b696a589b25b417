package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/logger"
	"github.com/chroniclebot/chronicle/internal/repository"
	syncsvc "github.com/chroniclebot/chronicle/internal/sync"
)

// SyncHandler exposes the sync service over HTTP
type SyncHandler struct {
	service *syncsvc.Service
}

// NewSyncHandler creates the sync HTTP handler
func NewSyncHandler(service *syncsvc.Service) *SyncHandler {
	return &SyncHandler{service: service}
}

// ConfigRequest is the create/update payload for a sync config. Zero-valued
// tunables fall back to service defaults.
type ConfigRequest struct {
	OwnerID             string               `json:"owner_id"`
	ChannelID           string               `json:"channel_id" validate:"required,slack_channel"`
	ChannelName         string               `json:"channel_name" validate:"omitempty,max=80"`
	DatabaseID          string               `json:"database_id" validate:"required"`
	DatabaseName        string               `json:"database_name" validate:"omitempty,max=200"`
	TriggerEmoji        string               `json:"trigger_emoji" validate:"omitempty,max=100"`
	SyncIntervalMinutes int                  `json:"sync_interval_minutes" validate:"omitempty,min=1,max=60"`
	MaxMessagesPerSync  int                  `json:"max_messages_per_sync" validate:"omitempty,min=1,max=100"`
	IsActive            *bool                `json:"is_active"`
	RetryAttempts       int                  `json:"retry_attempts" validate:"omitempty,min=1,max=10"`
	RetryDelayMS        int                  `json:"retry_delay_ms" validate:"omitempty,min=100,max=10000"`
	Tags                []string             `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Filters             *domain.Filters      `json:"filters"`
	PageTemplate        *domain.PageTemplate `json:"page_template"`
}

// HandleCreateConfig creates a new sync config
// POST /api/v1/sync/configs
func (h *SyncHandler) HandleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
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

	cfg := req.toDomain(&domain.SyncConfig{IsActive: true})
	if err := h.service.CreateConfig(r.Context(), cfg); err != nil {
		logger.FromContext(r.Context()).Error("Failed to create sync config", "error", err)
		status, msg := mapServiceError(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusCreated, DataResponse{Message: "Sync config created", Data: cfg})
}

// HandleGetConfig retrieves one sync config
// GET /api/v1/sync/configs/{configID}
func (h *SyncHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	configID := chi.URLParam(r, "configID")

	cfg, err := h.service.GetConfig(r.Context(), configID)
	if err != nil {
		status, msg := mapServiceError(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Data: cfg})
}

// HandleListConfigs lists sync configs, optionally filtered by query params
// GET /api/v1/sync/configs?channel_id=&owner_id=&active=
func (h *SyncHandler) HandleListConfigs(w http.ResponseWriter, r *http.Request) {
	var filter repository.ConfigFilter
	if v := r.URL.Query().Get("channel_id"); v != "" {
		filter.ChannelID = &v
	}
	if v := r.URL.Query().Get("owner_id"); v != "" {
		filter.OwnerID = &v
	}
	switch r.URL.Query().Get("active") {
	case "true":
		active := true
		filter.IsActive = &active
	case "false":
		active := false
		filter.IsActive = &active
	}

	configs, err := h.service.ListConfigs(r.Context(), filter)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list sync configs", "error", err)
		status, msg := mapServiceError(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Data: configs})
}

// HandleUpdateConfig updates an existing sync config. Fields absent from the
// request keep their stored values.
// PUT /api/v1/sync/configs/{configID}
func (h *SyncHandler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	configID := chi.URLParam(r, "configID")

	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
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

	existing, err := h.service.GetConfig(r.Context(), configID)
	if err != nil {
		status, msg := mapServiceError(err)
		respondError(w, status, msg)
		return
	}

	cfg := req.toDomain(existing)
	if err := h.service.UpdateConfig(r.Context(), cfg); err != nil {
		logger.FromContext(r.Context()).Error("Failed to update sync config",
			"config_id", configID, "error", err)
		status, msg := mapServiceError(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Message: "Sync config updated", Data: cfg})
}

// HandleDeleteConfig removes a sync config and its schedule
// DELETE /api/v1/sync/configs/{configID}
func (h *SyncHandler) HandleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	configID := chi.URLParam(r, "configID")

	if err := h.service.DeleteConfig(r.Context(), configID); err != nil {
		status, msg := mapServiceError(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "Sync config deleted"})
}

// toDomain overlays the request onto base. Base carries either defaults (on
// create) or the stored config (on update).
func (req *ConfigRequest) toDomain(base *domain.SyncConfig) *domain.SyncConfig {
	cfg := *base

	if req.OwnerID != "" {
		cfg.OwnerID = req.OwnerID
	}
	if req.ChannelID != "" {
		cfg.ChannelID = req.ChannelID
	}
	if req.ChannelName != "" {
		cfg.ChannelName = req.ChannelName
	}
	if req.DatabaseID != "" {
		cfg.DatabaseID = req.DatabaseID
	}
	if req.DatabaseName != "" {
		cfg.DatabaseName = req.DatabaseName
	}
	if req.TriggerEmoji != "" {
		cfg.TriggerEmoji = req.TriggerEmoji
	}
	if req.SyncIntervalMinutes != 0 {
		cfg.SyncIntervalMinutes = req.SyncIntervalMinutes
	}
	if req.MaxMessagesPerSync != 0 {
		cfg.MaxMessagesPerSync = req.MaxMessagesPerSync
	}
	if req.RetryAttempts != 0 {
		cfg.RetryAttempts = req.RetryAttempts
	}
	if req.RetryDelayMS != 0 {
		cfg.RetryDelayMS = req.RetryDelayMS
	}
	if req.IsActive != nil {
		cfg.IsActive = *req.IsActive
	}
	if req.Tags != nil {
		cfg.Tags = req.Tags
	}
	if req.Filters != nil {
		cfg.Filters = *req.Filters
	}
	if req.PageTemplate != nil {
		cfg.PageTemplate = *req.PageTemplate
	}
	return &cfg
}
