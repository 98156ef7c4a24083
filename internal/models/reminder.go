package models

import "time"

// Reminder is the payload handed to a notification backend when a task
// reminder is scheduled. Handle is assigned by the backend.
type Reminder struct {
	Handle   string    `json:"handle"`
	Owner    string    `json:"owner"`
	TaskID   string    `json:"task_id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Priority Priority  `json:"priority"`
	FireAt   time.Time `json:"fire_at"`
}
