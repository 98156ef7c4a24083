package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalNotifier delivers reminders from in-process timers.
// Handles do not survive a restart; callers re-register with RestoreReminders.
type LocalNotifier struct {
	mu        sync.Mutex
	timers    map[string]*localEntry
	deliverer Deliverer
	log       *zap.Logger
	now       func() time.Time
}

type localEntry struct {
	timer    *time.Timer
	reminder models.Reminder
}

// LocalOption configures a LocalNotifier
type LocalOption func(*LocalNotifier)

// WithLocalClock overrides the clock used to compute timer delays
func WithLocalClock(now func() time.Time) LocalOption {
	return func(n *LocalNotifier) { n.now = now }
}

// NewLocalNotifier creates a timer-backed notifier
func NewLocalNotifier(d Deliverer, log *zap.Logger, opts ...LocalOption) *LocalNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	n := &LocalNotifier{
		timers:    make(map[string]*localEntry),
		deliverer: d,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// RequestPermission always succeeds: the process delivers to its own deliverer
func (n *LocalNotifier) RequestPermission(context.Context) (bool, error) {
	return n.deliverer != nil, nil
}

func (n *LocalNotifier) Schedule(_ context.Context, reminder models.Reminder, at time.Time) (string, error) {
	if n.deliverer == nil {
		return "", ErrPermissionDenied
	}
	handle := uuid.NewString()
	reminder.Handle = handle
	reminder.FireAt = at

	delay := at.Sub(n.now())
	if delay < 0 {
		delay = 0
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.timers[handle] = &localEntry{
		reminder: reminder,
		timer:    time.AfterFunc(delay, func() { n.fire(handle) }),
	}
	return handle, nil
}

func (n *LocalNotifier) fire(handle string) {
	n.mu.Lock()
	entry, ok := n.timers[handle]
	if ok {
		delete(n.timers, handle)
	}
	n.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.deliverer.Deliver(ctx, entry.reminder); err != nil {
		n.log.Warn("failed_to_deliver_reminder",
			zap.Error(err),
			zap.String("handle", handle),
			zap.String("task_id", entry.reminder.TaskID),
		)
	}
}

func (n *LocalNotifier) Cancel(_ context.Context, handle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if entry, ok := n.timers[handle]; ok {
		entry.timer.Stop()
		delete(n.timers, handle)
	}
	return nil
}

func (n *LocalNotifier) CancelAll(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for handle, entry := range n.timers {
		entry.timer.Stop()
		delete(n.timers, handle)
	}
	return nil
}

// ListScheduled returns pending reminders ordered by fire time
func (n *LocalNotifier) ListScheduled(context.Context) ([]models.Reminder, error) {
	n.mu.Lock()
	out := make([]models.Reminder, 0, len(n.timers))
	for _, entry := range n.timers {
		out = append(out, entry.reminder)
	}
	n.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out, nil
}
