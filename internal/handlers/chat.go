package handlers

import (
	"net/http"
	"strings"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/services/ai"
	"github.com/benvon/smart-planner/internal/tasks"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxChatMessageLength bounds a single chat message
const maxChatMessageLength = 2000

// ChatHandler handles assistant chat and task drafts
type ChatHandler struct {
	chat  *ai.ChatService
	tasks *tasks.Service
	log   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *ai.ChatService, taskService *tasks.Service, log *zap.Logger) *ChatHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatHandler{chat: chat, tasks: taskService, log: log}
}

// RegisterRoutes registers chat routes. The router should already have the /ai prefix.
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/chat/message", h.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/chat/transcript", h.GetTranscript).Methods(http.MethodGet)
	r.HandleFunc("/chat", h.ResetChat).Methods(http.MethodDelete)
	r.HandleFunc("/drafts", h.CreateDraft).Methods(http.MethodPost)
	r.HandleFunc("/drafts/accept", h.AcceptDraft).Methods(http.MethodPost)
}

// ChatMessageRequest represents a chat message request
type ChatMessageRequest struct {
	Message string `json:"message"`
}

// DraftRequest asks for a task draft synthesised from free text
type DraftRequest struct {
	Text string `json:"text"`
}

// DraftResponse pairs a draft with how the text was classified
type DraftResponse struct {
	Draft          models.TaskDraft      `json:"draft"`
	Classification models.Classification `json:"classification"`
}

func readText(w http.ResponseWriter, text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "message is required")
		return "", false
	}
	if len([]rune(text)) > maxChatMessageLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "message is too long")
		return "", false
	}
	return text, true
}

// SendMessage records a user message and returns the assistant reply
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req ChatMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	text, ok := readText(w, req.Message)
	if !ok {
		return
	}
	reply := h.chat.Send(owner, text)
	h.log.Debug("chat_message_answered",
		zap.String("owner", ai.HashOwner(owner)),
		zap.Bool("has_draft", reply.TaskDraft != nil),
	)
	respondJSON(w, http.StatusOK, reply)
}

// GetTranscript returns the caller's conversation so far
func (h *ChatHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	transcript := h.chat.Transcript(owner)
	if transcript == nil {
		transcript = []models.ChatMessage{}
	}
	respondJSON(w, http.StatusOK, transcript)
}

// ResetChat discards the caller's conversation
func (h *ChatHandler) ResetChat(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	h.chat.CloseSession(owner)
	w.WriteHeader(http.StatusNoContent)
}

// CreateDraft synthesises a task draft without touching the transcript
func (h *ChatHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOwner(w, r); !ok {
		return
	}
	var req DraftRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	text, ok := readText(w, req.Text)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, DraftResponse{
		Draft:          h.chat.Draft(text),
		Classification: h.chat.Classify(text),
	})
}

// AcceptDraft creates a task from a (possibly edited) draft
func (h *ChatHandler) AcceptDraft(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var draft models.TaskDraft
	if err := decodeJSON(r, &draft); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	task, err := h.tasks.AcceptDraft(r.Context(), owner, draft)
	if err != nil {
		respondTaskError(w, r, h.log, "accept_draft", err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}
