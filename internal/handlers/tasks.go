package handlers

import (
	"net/http"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/tasks"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	service *tasks.Service
	log     *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service *tasks.Service, log *zap.Logger) *TaskHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskHandler{service: service, log: log}
}

// RegisterRoutes registers task routes on the given router.
// The router should already have the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods(http.MethodGet)
	r.HandleFunc("", h.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/completed", h.ListCompleted).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.GetTask).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.UpdateTask).Methods(http.MethodPatch)
	r.HandleFunc("/{id}", h.DeleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/{id}/complete", h.CompleteTask).Methods(http.MethodPost)
}

// ListTasks lists the caller's active tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	list, err := h.service.List(r.Context(), owner)
	if err != nil {
		respondTaskError(w, r, h.log, "list_tasks", err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(list))
}

// ListCompleted lists the caller's completed tasks
func (h *TaskHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	list, err := h.service.History(r.Context(), owner)
	if err != nil {
		respondTaskError(w, r, h.log, "list_completed_tasks", err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(list))
}

// CreateTask creates a task and schedules its reminder
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var in tasks.CreateTaskInput
	if err := decodeJSON(r, &in); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	task, err := h.service.Create(r.Context(), owner, in)
	if err != nil {
		respondTaskError(w, r, h.log, "create_task", err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// GetTask returns one task, active or completed
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	task, err := h.service.Get(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		respondTaskError(w, r, h.log, "get_task", err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial edit to an active task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var in tasks.UpdateTaskInput
	if err := decodeJSON(r, &in); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	task, err := h.service.Update(r.Context(), owner, mux.Vars(r)["id"], in)
	if err != nil {
		respondTaskError(w, r, h.log, "update_task", err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// CompleteTask moves a task to the completed collection
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	task, err := h.service.Complete(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		respondTaskError(w, r, h.log, "complete_task", err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask removes an active task and cancels its reminder
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), owner, mux.Vars(r)["id"]); err != nil {
		respondTaskError(w, r, h.log, "delete_task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(list []models.Task) []models.Task {
	if list == nil {
		return []models.Task{}
	}
	return list
}
