// Package notification schedules task reminders against a pluggable
// notification backend and keeps reminder handles tied to task lifecycle.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/storage"
	"go.uber.org/zap"
)

// ErrPermissionDenied is returned by Schedule when the backend cannot deliver reminders
var ErrPermissionDenied = errors.New("notification permission denied")

// Notifier is the reminder primitive a backend provides.
// Cancel must be idempotent: unknown, fired and already-cancelled handles are not errors.
type Notifier interface {
	RequestPermission(ctx context.Context) (bool, error)
	Schedule(ctx context.Context, reminder models.Reminder, at time.Time) (string, error)
	Cancel(ctx context.Context, handle string) error
	CancelAll(ctx context.Context) error
	ListScheduled(ctx context.Context) ([]models.Reminder, error)
}

var (
	_ Notifier = (*LocalNotifier)(nil)
	_ Notifier = (*QueueNotifier)(nil)
	_ Notifier = NoneNotifier{}
)

// Backend names accepted by New
const (
	BackendLocal = "local"
	BackendQueue = "queue"
	BackendNone  = "none"
)

// Options wires a backend. Queue and Registry are required by the queue
// backend; Deliverer by the local one.
type Options struct {
	Backend   string
	Queue     queue.JobQueue
	Registry  storage.KV
	Deliverer Deliverer
	Log       *zap.Logger
}

// New constructs the notifier selected by opts.Backend
func New(opts Options) (Notifier, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	switch opts.Backend {
	case BackendLocal, "":
		d := opts.Deliverer
		if d == nil {
			d = NewLogDeliverer(log)
		}
		return NewLocalNotifier(d, log), nil
	case BackendQueue:
		if opts.Queue == nil || opts.Registry == nil {
			return nil, fmt.Errorf("notification: queue backend requires a job queue and a registry")
		}
		return NewQueueNotifier(opts.Queue, opts.Registry, log), nil
	case BackendNone:
		return NoneNotifier{}, nil
	default:
		return nil, fmt.Errorf("notification: unknown backend %q", opts.Backend)
	}
}

// NoneNotifier is used where the platform offers no reminders at all
type NoneNotifier struct{}

func (NoneNotifier) RequestPermission(context.Context) (bool, error) { return false, nil }

func (NoneNotifier) Schedule(context.Context, models.Reminder, time.Time) (string, error) {
	return "", ErrPermissionDenied
}

func (NoneNotifier) Cancel(context.Context, string) error { return nil }

func (NoneNotifier) CancelAll(context.Context) error { return nil }

func (NoneNotifier) ListScheduled(context.Context) ([]models.Reminder, error) { return nil, nil }
