package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reminderGrace is how long after its fire time a reminder job is still worth delivering
const reminderGrace = time.Hour

// RegistryKey is the storage key marking a reminder handle as live
func RegistryKey(handle string) string {
	return "reminders/" + handle
}

// QueueNotifier publishes delayed reminder jobs and tracks live handles in a
// KV registry. Cancelling removes the registry entry; the worker drops jobs
// whose handle is no longer registered.
type QueueNotifier struct {
	queue    queue.JobQueue
	registry storage.KV
	log      *zap.Logger

	mu      sync.Mutex
	tracked map[string]models.Reminder
}

// NewQueueNotifier creates a notifier backed by a job queue
func NewQueueNotifier(q queue.JobQueue, registry storage.KV, log *zap.Logger) *QueueNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueueNotifier{
		queue:    q,
		registry: registry,
		log:      log,
		tracked:  make(map[string]models.Reminder),
	}
}

func (n *QueueNotifier) RequestPermission(ctx context.Context) (bool, error) {
	if err := n.queue.HealthCheck(ctx); err != nil {
		return false, fmt.Errorf("reminder queue unavailable: %w", err)
	}
	return true, nil
}

func (n *QueueNotifier) Schedule(ctx context.Context, reminder models.Reminder, at time.Time) (string, error) {
	handle := uuid.NewString()
	reminder.Handle = handle
	reminder.FireAt = at

	blob, err := json.Marshal(reminder)
	if err != nil {
		return "", fmt.Errorf("failed to marshal reminder: %w", err)
	}
	if err := n.registry.Set(ctx, RegistryKey(handle), blob); err != nil {
		return "", fmt.Errorf("failed to register reminder: %w", err)
	}

	job := queue.NewJob(queue.JobTypeReminder, reminder.Owner, reminder.TaskID)
	notAfter := at.Add(reminderGrace)
	job.NotBefore = &at
	job.NotAfter = &notAfter
	job.Payload = blob

	if err := n.queue.Enqueue(ctx, job); err != nil {
		if delErr := n.registry.Delete(ctx, RegistryKey(handle)); delErr != nil {
			n.log.Warn("failed_to_unregister_reminder",
				zap.Error(delErr),
				zap.String("handle", handle),
			)
		}
		return "", fmt.Errorf("failed to enqueue reminder: %w", err)
	}

	n.mu.Lock()
	n.tracked[handle] = reminder
	n.mu.Unlock()
	return handle, nil
}

func (n *QueueNotifier) Cancel(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	n.mu.Lock()
	delete(n.tracked, handle)
	n.mu.Unlock()
	if err := n.registry.Delete(ctx, RegistryKey(handle)); err != nil {
		return fmt.Errorf("failed to cancel reminder: %w", err)
	}
	return nil
}

func (n *QueueNotifier) CancelAll(ctx context.Context) error {
	n.mu.Lock()
	handles := make([]string, 0, len(n.tracked))
	for handle := range n.tracked {
		handles = append(handles, handle)
	}
	n.mu.Unlock()

	var errs []error
	for _, handle := range handles {
		if err := n.Cancel(ctx, handle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ListScheduled returns the handles this process scheduled and has not cancelled
func (n *QueueNotifier) ListScheduled(context.Context) ([]models.Reminder, error) {
	n.mu.Lock()
	out := make([]models.Reminder, 0, len(n.tracked))
	for _, r := range n.tracked {
		out = append(out, r)
	}
	n.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out, nil
}

// LookupReminder reads the registry entry for handle. ok is false when the
// reminder was cancelled (or already delivered) and must not be delivered.
func LookupReminder(ctx context.Context, registry storage.KV, handle string) (models.Reminder, bool, error) {
	blob, err := registry.Get(ctx, RegistryKey(handle))
	if errors.Is(err, storage.ErrNotFound) {
		return models.Reminder{}, false, nil
	}
	if err != nil {
		return models.Reminder{}, false, fmt.Errorf("failed to read reminder registry: %w", err)
	}
	var reminder models.Reminder
	if err := json.Unmarshal(blob, &reminder); err != nil {
		return models.Reminder{}, false, fmt.Errorf("failed to unmarshal reminder: %w", err)
	}
	return reminder, true, nil
}

// ReleaseReminder removes the registry entry once the reminder was delivered
func ReleaseReminder(ctx context.Context, registry storage.KV, handle string) error {
	if err := registry.Delete(ctx, RegistryKey(handle)); err != nil {
		return fmt.Errorf("failed to release reminder: %w", err)
	}
	return nil
}

// RegisterReminder (re)writes the registry entry for reminder.Handle
func RegisterReminder(ctx context.Context, registry storage.KV, reminder models.Reminder) error {
	blob, err := json.Marshal(reminder)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder: %w", err)
	}
	if err := registry.Set(ctx, RegistryKey(reminder.Handle), blob); err != nil {
		return fmt.Errorf("failed to register reminder: %w", err)
	}
	return nil
}

// ClaimReminder looks up and releases the entry for handle in one step.
// A second claim of the same handle reports ok=false.
func ClaimReminder(ctx context.Context, registry storage.KV, handle string) (models.Reminder, bool, error) {
	reminder, ok, err := LookupReminder(ctx, registry, handle)
	if err != nil || !ok {
		return reminder, ok, err
	}
	if err := ReleaseReminder(ctx, registry, handle); err != nil {
		return models.Reminder{}, false, err
	}
	return reminder, true, nil
}
