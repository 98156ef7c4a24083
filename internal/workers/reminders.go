package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/notification"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/storage"
	"go.uber.org/zap"
)

const (
	baseRetryDelay = 5 * time.Second
	maxRetryDelay  = 5 * time.Minute
)

// ReminderDispatcher delivers reminder jobs whose handle is still registered
type ReminderDispatcher struct {
	registry  storage.KV
	deliverer notification.Deliverer
	jobQueue  queue.JobQueue // For re-enqueueing failed deliveries with a delay
	log       *zap.Logger
}

// NewReminderDispatcher creates a new reminder dispatcher
func NewReminderDispatcher(
	registry storage.KV,
	deliverer notification.Deliverer,
	jobQueue queue.JobQueue,
	log *zap.Logger,
) *ReminderDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderDispatcher{
		registry:  registry,
		deliverer: deliverer,
		jobQueue:  jobQueue,
		log:       log,
	}
}

// Run consumes the queue until ctx is cancelled or the delivery channel closes
func (d *ReminderDispatcher) Run(ctx context.Context, prefetch int) error {
	msgChan, errChan, err := d.jobQueue.Consume(ctx, prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			d.log.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgChan:
			if !ok {
				d.log.Info("message_channel_closed")
				return nil
			}
			if err := d.ProcessJob(ctx, msg); err != nil {
				d.log.Error("failed_to_process_job",
					zap.Error(err),
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.String("job_type", string(msg.GetJob().Type)),
				)
			}
		}
	}
}

// ProcessJob processes a job based on its type
func (d *ReminderDispatcher) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	switch job.Type {
	case queue.JobTypeReminder:
		return d.processReminder(ctx, msg, job)
	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			d.log.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (d *ReminderDispatcher) processReminder(ctx context.Context, msg queue.MessageInterface, job *queue.Job) error {
	var payload models.Reminder
	if err := job.DecodePayload(&payload); err != nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			d.log.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return err
	}

	if job.IsExpired() {
		d.log.Info("reminder_expired",
			zap.String("handle", payload.Handle),
			zap.Time("fire_at", payload.FireAt),
		)
		if err := notification.ReleaseReminder(ctx, d.registry, payload.Handle); err != nil {
			d.log.Warn("failed_to_release_reminder", zap.Error(err))
		}
		return msg.Ack()
	}

	reminder, live, err := notification.ClaimReminder(ctx, d.registry, payload.Handle)
	if err != nil {
		return d.retry(ctx, msg, job, err)
	}
	if !live {
		d.log.Debug("reminder_cancelled_skipping", zap.String("handle", payload.Handle))
		return msg.Ack()
	}

	if err := d.deliverer.Deliver(ctx, reminder); err != nil {
		// put the claim back so the retried job still finds it
		if regErr := notification.RegisterReminder(ctx, d.registry, reminder); regErr != nil {
			d.log.Warn("failed_to_reregister_reminder",
				zap.Error(regErr),
				zap.String("handle", reminder.Handle),
			)
		}
		return d.retry(ctx, msg, job, fmt.Errorf("failed to deliver reminder: %w", err))
	}

	d.log.Info("reminder_delivered",
		zap.String("handle", reminder.Handle),
		zap.String("task_id", reminder.TaskID),
	)
	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return nil
}

// retry re-enqueues a copy of job with backoff. Once retries are exhausted
// or the re-enqueue fails, the message is dead-lettered.
func (d *ReminderDispatcher) retry(ctx context.Context, msg queue.MessageInterface, job *queue.Job, cause error) error {
	if !job.CanRetry() {
		d.log.Warn("reminder_retries_exhausted",
			zap.Error(cause),
			zap.String("job_id", job.ID.String()),
			zap.Int("max_retries", job.MaxRetries),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			d.log.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (max retries): %w", cause)
	}

	delay := retryDelay(job.RetryCount)
	notBefore := time.Now().Add(delay)
	retried := *job
	retried.NotBefore = &notBefore
	retried.IncrementRetry()

	if err := d.jobQueue.Enqueue(ctx, &retried); err != nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			d.log.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return errors.Join(cause, fmt.Errorf("failed to re-enqueue: %w", err))
	}
	if err := msg.Ack(); err != nil {
		d.log.Warn("failed_to_ack_job", zap.Error(err))
	}

	d.log.Info("reminder_retry_scheduled",
		zap.String("job_id", job.ID.String()),
		zap.Int("attempt", retried.RetryCount),
		zap.Duration("delay", delay),
	)
	return fmt.Errorf("job failed (will retry): %w", cause)
}

// retryDelay doubles from baseRetryDelay per attempt, capped at maxRetryDelay
func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 10 {
		attempt = 10
	}
	delay := baseRetryDelay << uint(attempt) // #nosec G115 -- attempt is clamped to [0, 10]
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
