package models

import (
	"time"
)

// Priority represents how urgent a task is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is one of the known priorities
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

const (
	// MaxTaskTitleLength is the maximum length for a task title
	MaxTaskTitleLength = 100
	// MaxTaskDescriptionLength is the maximum length for a task description
	MaxTaskDescriptionLength = 300
	// DefaultCategory is used when a task is created without a category
	DefaultCategory = "Personal"
)

// Task represents a timed to-do item.
// NotificationID is set only while the task is active and a reminder was
// successfully scheduled for its current Time.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Time           string     `json:"time"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Priority       Priority   `json:"priority"`
	Category       string     `json:"category"`
	CreatedAt      time.Time  `json:"created_at"`
	NotificationID string     `json:"notification_id,omitempty"`
}

// Settings holds per-owner planner preferences
type Settings struct {
	RemindersEnabled bool `json:"reminders_enabled"`
}

// DefaultSettings returns the settings used when none were stored yet
func DefaultSettings() Settings {
	return Settings{RemindersEnabled: true}
}
