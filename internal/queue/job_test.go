package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

type reminderPayload struct {
	Title string `json:"title"`
}

func TestNewJob(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeReminder, "alice", "task-1")

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeReminder {
		t.Errorf("Expected job type to be %s, got %s", JobTypeReminder, job.Type)
	}
	if job.Owner != "alice" {
		t.Errorf("Expected owner alice, got %s", job.Owner)
	}
	if job.TaskID != "task-1" {
		t.Errorf("Expected task ID task-1, got %s", job.TaskID)
	}
	if job.RetryCount != 0 {
		t.Errorf("Expected retry count to be 0, got %d", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("Expected max retries to be 3, got %d", job.MaxRetries)
	}
}

func TestJob_Payload(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeReminder, "alice", "task-1")

	var out reminderPayload
	if err := job.DecodePayload(&out); err == nil {
		t.Error("Expected error decoding an empty payload")
	}

	if err := job.SetPayload(reminderPayload{Title: "Stretch"}); err != nil {
		t.Fatalf("SetPayload: %v", err)
	}
	if err := job.DecodePayload(&out); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if out.Title != "Stretch" {
		t.Errorf("Expected title Stretch, got %q", out.Title)
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{"no time constraints", nil, nil, true},
		{"not before in past", timePtr(now.Add(-time.Hour)), nil, true},
		{"not before in future", timePtr(now.Add(time.Hour)), nil, false},
		{"not after in past", nil, timePtr(now.Add(-time.Hour)), false},
		{"not after in future", nil, timePtr(now.Add(time.Hour)), true},
		{"within time window", timePtr(now.Add(-time.Hour)), timePtr(now.Add(time.Hour)), true},
		{"outside time window - before", timePtr(now.Add(time.Hour)), timePtr(now.Add(2 * time.Hour)), false},
		{"outside time window - after", timePtr(now.Add(-2 * time.Hour)), timePtr(now.Add(-time.Hour)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{ID: uuid.New(), Type: JobTypeReminder, NotBefore: tt.notBefore, NotAfter: tt.notAfter}
			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name     string
		notAfter *time.Time
		want     bool
	}{
		{"no expiration", nil, false},
		{"expired", timePtr(now.Add(-time.Hour)), true},
		{"not expired", timePtr(now.Add(time.Hour)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{ID: uuid.New(), Type: JobTypeReminder, NotAfter: tt.notAfter}
			if got := job.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_Retry(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeReminder, "alice", "task-1")
	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("Expected retry to be allowed at count %d", job.RetryCount)
		}
		job.IncrementRetry()
	}
	if job.RetryCount != 3 {
		t.Errorf("Expected retry count 3, got %d", job.RetryCount)
	}
	if job.CanRetry() {
		t.Error("Expected retries to be exhausted")
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
