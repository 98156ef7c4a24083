package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/tasktime"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deliverer hands a due reminder to the user
type Deliverer interface {
	Deliver(ctx context.Context, reminder models.Reminder) error
}

// LogDeliverer records due reminders in the structured log
type LogDeliverer struct {
	log *zap.Logger
}

func NewLogDeliverer(log *zap.Logger) *LogDeliverer {
	return &LogDeliverer{log: log}
}

func (d *LogDeliverer) Deliver(_ context.Context, r models.Reminder) error {
	d.log.Info("reminder_due",
		zap.String("handle", r.Handle),
		zap.String("owner", r.Owner),
		zap.String("task_id", r.TaskID),
		zap.String("title", r.Title),
		zap.String("category", r.Category),
		zap.String("priority", string(r.Priority)),
		zap.Time("fire_at", r.FireAt),
	)
	return nil
}

// ReminderChannel is the pub/sub channel reminders for owner are published on
func ReminderChannel(owner string) string {
	return "reminders:" + owner
}

// RedisDeliverer publishes due reminders for connected clients to pick up
type RedisDeliverer struct {
	client *redis.Client
}

func NewRedisDeliverer(client *redis.Client) *RedisDeliverer {
	return &RedisDeliverer{client: client}
}

func (d *RedisDeliverer) Deliver(ctx context.Context, r models.Reminder) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder: %w", err)
	}
	if err := d.client.Publish(ctx, ReminderChannel(r.Owner), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish reminder: %w", err)
	}
	return nil
}

// WriterDeliverer prints due reminders, one line each
type WriterDeliverer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterDeliverer(w io.Writer) *WriterDeliverer {
	return &WriterDeliverer{w: w}
}

func (d *WriterDeliverer) Deliver(_ context.Context, r models.Reminder) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	at := tasktime.Format(r.FireAt.Hour(), r.FireAt.Minute())
	_, err := fmt.Fprintf(d.w, "[%s] Reminder: %s (%s, %s priority)\n", at, r.Title, r.Category, r.Priority)
	return err
}

// MultiDeliverer fans a reminder out to every deliverer and joins their errors
type MultiDeliverer []Deliverer

func (m MultiDeliverer) Deliver(ctx context.Context, r models.Reminder) error {
	var errs []error
	for _, d := range m {
		if err := d.Deliver(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
