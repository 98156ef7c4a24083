package notification

import (
	"context"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/tasktime"
	"go.uber.org/zap"
)

// Binder maps task lifecycle events onto a Notifier. It never fails the
// caller: every backend problem is logged and reported as "no handle".
type Binder struct {
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

// BinderOption configures a Binder
type BinderOption func(*Binder)

// WithClock overrides the binder's notion of now
func WithClock(now func() time.Time) BinderOption {
	return func(b *Binder) { b.now = now }
}

// NewBinder creates a binder over notifier
func NewBinder(notifier Notifier, log *zap.Logger, opts ...BinderOption) *Binder {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Binder{notifier: notifier, log: log, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Schedule registers a reminder for the next occurrence of task.Time.
// It returns ok=false when the time is malformed, permission is denied or
// the backend fails.
func (b *Binder) Schedule(ctx context.Context, owner string, task models.Task) (string, bool) {
	now := b.now()
	at, ok := tasktime.NextOccurrence(task.Time, now)
	if !ok || !at.After(now) {
		b.log.Debug("reminder_time_not_schedulable",
			zap.String("task_id", task.ID),
			zap.String("time", task.Time),
		)
		return "", false
	}

	granted, err := b.notifier.RequestPermission(ctx)
	if err != nil || !granted {
		b.log.Info("reminder_permission_denied",
			zap.String("task_id", task.ID),
			zap.Error(err),
		)
		return "", false
	}

	handle, err := b.notifier.Schedule(ctx, models.Reminder{
		Owner:    owner,
		TaskID:   task.ID,
		Title:    task.Title,
		Category: task.Category,
		Priority: task.Priority,
		FireAt:   at,
	}, at)
	if err != nil {
		b.log.Warn("failed_to_schedule_reminder",
			zap.Error(err),
			zap.String("task_id", task.ID),
		)
		return "", false
	}

	b.log.Debug("reminder_scheduled",
		zap.String("task_id", task.ID),
		zap.String("handle", handle),
		zap.Time("fire_at", at),
	)
	return handle, true
}

// Cancel unregisters handle. Empty, unknown and repeated handles are no-ops.
func (b *Binder) Cancel(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	if err := b.notifier.Cancel(ctx, handle); err != nil {
		b.log.Warn("failed_to_cancel_reminder",
			zap.Error(err),
			zap.String("handle", handle),
		)
	}
}

// CancelAll unregisters every reminder this process tracks
func (b *Binder) CancelAll(ctx context.Context) {
	if err := b.notifier.CancelAll(ctx); err != nil {
		b.log.Warn("failed_to_cancel_all_reminders", zap.Error(err))
	}
}

// Reschedule cancels the task's current handle and schedules newTime.
// The returned handle replaces task.NotificationID; ok=false means it is cleared.
func (b *Binder) Reschedule(ctx context.Context, owner string, task models.Task, newTime string) (string, bool) {
	b.Cancel(ctx, task.NotificationID)
	task.NotificationID = ""
	task.Time = newTime
	return b.Schedule(ctx, owner, task)
}

// Scheduled lists reminders the backend currently holds
func (b *Binder) Scheduled(ctx context.Context) ([]models.Reminder, error) {
	return b.notifier.ListScheduled(ctx)
}
