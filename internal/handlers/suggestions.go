package handlers

import (
	"net/http"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/services/ai"
	"github.com/benvon/smart-planner/internal/tasks"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SuggestionHandler serves time-of-day task suggestions
type SuggestionHandler struct {
	tasks  *tasks.Service
	engine *ai.SuggestionService
	log    *zap.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(taskService *tasks.Service, engine *ai.SuggestionService, log *zap.Logger) *SuggestionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SuggestionHandler{tasks: taskService, engine: engine, log: log}
}

// RegisterRoutes registers suggestion routes. The router should already have the /ai prefix.
func (h *SuggestionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/suggestions", h.GetSuggestions).Methods(http.MethodGet)
	r.HandleFunc("/suggestions/accept", h.AcceptSuggestion).Methods(http.MethodPost)
}

// GetSuggestions returns up to six suggestions. It never fails because the
// external service is unavailable; the fallback set is returned instead.
func (h *SuggestionHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	overview, err := h.tasks.Overview(r.Context(), owner)
	if err != nil {
		respondTaskError(w, r, h.log, "load_tasks_for_suggestions", err)
		return
	}
	result := h.engine.Suggest(r.Context(), ai.SuggestionContext{
		Active:         overview.Active,
		Completed:      overview.Completed,
		CompletedToday: overview.CompletedToday,
	})
	respondJSON(w, http.StatusOK, result)
}

// AcceptSuggestion copies a suggestion into a new task
func (h *SuggestionHandler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var sg models.Suggestion
	if err := decodeJSON(r, &sg); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	task, err := h.tasks.AcceptSuggestion(r.Context(), owner, sg)
	if err != nil {
		respondTaskError(w, r, h.log, "accept_suggestion", err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}
