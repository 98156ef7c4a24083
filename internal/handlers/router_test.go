package handlers

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/smart-planner/internal/middleware"
	"github.com/benvon/smart-planner/internal/notification"
	"github.com/benvon/smart-planner/internal/services/ai"
	"github.com/benvon/smart-planner/internal/storage"
	"github.com/benvon/smart-planner/internal/tasks"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type testEnv struct {
	router *mux.Router
	tasks  *tasks.Service
}

// newTestEnv wires the handlers the way cmd/server does, over a memory store
// and a notifier that never grants permission.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zap.NewNop()
	kv := storage.NewMemoryStore()
	binder := notification.NewBinder(notification.NoneNotifier{}, log)
	taskService := tasks.NewService(tasks.NewStore(kv), binder, log)
	chat := ai.NewChatService(ai.NewClassifier(), ai.NewResponder(ai.WithRand(rand.New(rand.NewSource(1)))), nil)
	engine := ai.NewSuggestionService(nil, "", log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(nil, log))
	NewTaskHandler(taskService, log).RegisterRoutes(api.PathPrefix("/tasks").Subrouter())
	NewSettingsHandler(taskService, log).RegisterRoutes(api.PathPrefix("/settings").Subrouter())
	aiRouter := api.PathPrefix("/ai").Subrouter()
	NewSuggestionHandler(taskService, engine, log).RegisterRoutes(aiRouter)
	NewChatHandler(chat, taskService, log).RegisterRoutes(aiRouter)

	return &testEnv{router: r, tasks: taskService}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func TestRequireOwner_Unauthorized(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	w := httptest.NewRecorder()
	NewTaskHandler(nil, nil).ListTasks(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}
