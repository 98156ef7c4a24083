package queue

import (
	"testing"
	"time"
)

func TestRabbitMQQueue_Publishing(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	tests := []struct {
		name           string
		delayed        bool
		notBefore      *time.Time
		wantExchange   string
		wantRoutingKey string
		wantExpiration string
		wantDelayMS    int64
	}{
		{"immediate", true, nil, DefaultExchangeName, jobsRoutingKey, "", 0},
		{"due", false, at(-time.Minute), DefaultExchangeName, jobsRoutingKey, "", 0},
		{"plugin delays the full span", true, at(3 * time.Hour), DefaultDelayedExchangeName, jobsRoutingKey, "", (3 * time.Hour).Milliseconds()},
		{"delay queue short hop", false, at(5 * time.Second), "", DefaultDelayQueueName, "5000", 0},
		{"delay queue hop is capped", false, at(3 * time.Hour), "", DefaultDelayQueueName, "30000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := &RabbitMQQueue{
				exchangeName:        DefaultExchangeName,
				delayedExchangeName: DefaultDelayedExchangeName,
				delayQueueName:      DefaultDelayQueueName,
				delayedAvailable:    tt.delayed,
			}
			job := NewJob(JobTypeReminder, "alice", "task-1")
			job.NotBefore = tt.notBefore

			exchange, routingKey, p, err := q.publishing(job, now)
			if err != nil {
				t.Fatalf("publishing: %v", err)
			}
			if exchange != tt.wantExchange || routingKey != tt.wantRoutingKey {
				t.Errorf("routed to %q/%q, want %q/%q", exchange, routingKey, tt.wantExchange, tt.wantRoutingKey)
			}
			if p.Expiration != tt.wantExpiration {
				t.Errorf("Expiration = %q, want %q", p.Expiration, tt.wantExpiration)
			}
			delay, _ := p.Headers["x-delay"].(int64)
			if delay != tt.wantDelayMS {
				t.Errorf("x-delay = %d, want %d", delay, tt.wantDelayMS)
			}
			if p.MessageId != job.ID.String() {
				t.Errorf("MessageId = %q, want %q", p.MessageId, job.ID.String())
			}
		})
	}
}
