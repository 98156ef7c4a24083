package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/notification"
	"github.com/benvon/smart-planner/internal/services/ai"
	"github.com/benvon/smart-planner/internal/tasks"
)

func TestNew_MemoryLocal(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		StorageBackend:  "memory",
		NotifierBackend: notification.BackendLocal,
	}
	var out bytes.Buffer
	a, err := New(context.Background(), cfg, nil, Options{
		Deliverers: []notification.Deliverer{notification.NewWriterDeliverer(&out)},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = a.Close() }()

	if a.Queue != nil || a.Redis != nil {
		t.Error("Expected no queue or redis connection")
	}
	if _, ok := a.Notifier.(*notification.LocalNotifier); !ok {
		t.Errorf("Expected local notifier, got %T", a.Notifier)
	}

	ctx := context.Background()
	task, err := a.Tasks.Create(ctx, "local", tasks.CreateTaskInput{
		Title:    "Stretch",
		Time:     "11:59 PM",
		Priority: models.PriorityLow,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.NotificationID == "" {
		t.Error("Expected the local notifier to grant a reminder handle")
	}

	result := a.Suggestions.Suggest(ctx, ai.SuggestionContext{})
	if !result.UsingFallback || result.Error != "" {
		t.Errorf("Expected quiet fallback without a key, got %+v", result)
	}
	if reply := a.Chat.Send("local", "hello"); reply.Text == "" {
		t.Error("Expected a chat reply")
	}
}

func TestNew_InvalidKeyStillBuilds(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		StorageBackend:  "memory",
		NotifierBackend: notification.BackendNone,
		OpenAIKey:       "not-a-key",
	}
	a, err := New(context.Background(), cfg, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = a.Close() }()

	result := a.Suggestions.Suggest(context.Background(), ai.SuggestionContext{})
	if !result.UsingFallback || result.Error == "" {
		t.Errorf("Expected fallback with a credential error, got %+v", result)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{StorageBackend: "memory", NotifierBackend: "pager"}
	if _, err := New(context.Background(), cfg, nil, Options{}); err == nil {
		t.Error("Expected error for unknown notifier backend")
	}
}
