package handlers

import (
	"net/http"

	"github.com/benvon/smart-planner/internal/tasks"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SettingsHandler handles per-owner preferences
type SettingsHandler struct {
	service *tasks.Service
	log     *zap.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(service *tasks.Service, log *zap.Logger) *SettingsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsHandler{service: service, log: log}
}

// RegisterRoutes registers settings routes. The router should already have the /settings prefix.
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetSettings).Methods(http.MethodGet)
	r.HandleFunc("/reminders", h.SetReminders).Methods(http.MethodPut)
}

// RemindersRequest toggles reminders for every active task
type RemindersRequest struct {
	Enabled *bool `json:"enabled"`
}

// GetSettings returns the caller's preferences
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	settings, err := h.service.Settings(r.Context(), owner)
	if err != nil {
		respondTaskError(w, r, h.log, "load_settings", err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// SetReminders enables or disables reminders. Disabling cancels every
// scheduled reminder; enabling schedules one per active task.
func (h *SettingsHandler) SetReminders(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req RemindersRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if req.Enabled == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "enabled is required")
		return
	}
	settings, err := h.service.SetRemindersEnabled(r.Context(), owner, *req.Enabled)
	if err != nil {
		respondTaskError(w, r, h.log, "update_reminder_settings", err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
