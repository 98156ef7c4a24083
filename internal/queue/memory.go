package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Close
var ErrQueueClosed = errors.New("queue closed")

// MemoryQueue is an in-process JobQueue used by tests and single-binary setups.
// Delayed jobs are held on timers until NotBefore.
type MemoryQueue struct {
	mu       sync.Mutex
	ready    []*Job
	inflight map[uint64]*Job
	dead     []*Job
	timers   map[*time.Timer]struct{}
	nextTag  uint64
	notify   chan struct{}
	closed   bool
}

// NewMemoryQueue creates an empty in-memory queue
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		inflight: make(map[uint64]*Job),
		timers:   make(map[*time.Timer]struct{}),
		notify:   make(chan struct{}, 1),
	}
}

// Enqueue adds a copy of job to the queue
func (q *MemoryQueue) Enqueue(_ context.Context, job *Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	var cp Job
	if err := json.Unmarshal(b, &cp); err != nil {
		return fmt.Errorf("failed to unmarshal job: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	if cp.NotBefore != nil {
		if delay := time.Until(*cp.NotBefore); delay > 0 {
			var timer *time.Timer
			timer = time.AfterFunc(delay, func() {
				q.mu.Lock()
				defer q.mu.Unlock()
				delete(q.timers, timer)
				if q.closed {
					return
				}
				q.pushLocked(&cp)
			})
			q.timers[timer] = struct{}{}
			return nil
		}
	}
	q.pushLocked(&cp)
	return nil
}

func (q *MemoryQueue) pushLocked(job *Job) {
	q.ready = append(q.ready, job)
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *MemoryQueue) pop() (*Job, uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.ready) > 0 {
		job := q.ready[0]
		q.ready = q.ready[1:]
		if job.IsExpired() {
			q.dead = append(q.dead, job)
			continue
		}
		q.nextTag++
		q.inflight[q.nextTag] = job
		return job, q.nextTag, true
	}
	return nil, 0, false
}

// Consume delivers ready jobs until ctx is cancelled
func (q *MemoryQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error) {
	if prefetchCount <= 0 {
		prefetchCount = 1
	}
	msgChan := make(chan *Message, prefetchCount)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)
		for {
			job, tag, ok := q.pop()
			if !ok {
				select {
				case <-ctx.Done():
					return
				case <-q.notify:
					continue
				}
			}
			select {
			case <-ctx.Done():
				_ = q.Nack(tag, false, true)
				return
			case msgChan <- &Message{Job: job, DeliveryTag: tag, Channel: q}:
			}
		}
	}()

	return msgChan, errChan, nil
}

// Ack removes an in-flight job
func (q *MemoryQueue) Ack(tag uint64, _ bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.inflight[tag]; !ok {
		return fmt.Errorf("unknown delivery tag %d", tag)
	}
	delete(q.inflight, tag)
	return nil
}

// Nack returns an in-flight job to the queue or dead-letters it
func (q *MemoryQueue) Nack(tag uint64, _ bool, requeue bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.inflight[tag]
	if !ok {
		return fmt.Errorf("unknown delivery tag %d", tag)
	}
	delete(q.inflight, tag)
	if requeue && !q.closed {
		q.pushLocked(job)
		return nil
	}
	q.dead = append(q.dead, job)
	return nil
}

// DeadLetters returns the jobs that were rejected without requeue or expired
func (q *MemoryQueue) DeadLetters() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Job(nil), q.dead...)
}

// PurgeOlderThan drops dead-lettered jobs created before the retention window
func (q *MemoryQueue) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-retention)
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.dead[:0]
	for _, job := range q.dead {
		if job.CreatedAt.After(cutoff) {
			kept = append(kept, job)
		}
	}
	purged := len(q.dead) - len(kept)
	q.dead = kept
	return purged, nil
}

// Pending reports jobs that are waiting on a timer or ready for delivery
func (q *MemoryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ready) + len(q.timers)
}

func (q *MemoryQueue) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	return nil
}

// Close stops pending timers; queued jobs are discarded
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	for t := range q.timers {
		t.Stop()
	}
	q.timers = nil
	q.ready = nil
	return nil
}
