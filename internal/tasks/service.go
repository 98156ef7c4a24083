// Package tasks implements the task lifecycle: creation, edits, completion
// and deletion, keeping each task's reminder handle in step with its state.
package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/notification"
	"github.com/benvon/smart-planner/internal/tasktime"
	"github.com/benvon/smart-planner/internal/telemetry"
	"github.com/benvon/smart-planner/internal/validation"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CreateTaskInput carries the fields a caller may set on a new task.
// Time may be 12-hour or 24-hour; it is stored in 12-hour form.
type CreateTaskInput struct {
	Title       string          `json:"title" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=300"`
	Time        string          `json:"time" validate:"required,task_time"`
	Priority    models.Priority `json:"priority" validate:"required,task_priority"`
	Category    string          `json:"category" validate:"max=50"`
}

// UpdateTaskInput carries optional edits; nil fields are left unchanged
type UpdateTaskInput struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Time        *string          `json:"time,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

// Overview summarises an owner's tasks for suggestion generation
type Overview struct {
	Active         []models.Task `json:"active"`
	Completed      []models.Task `json:"completed"`
	CompletedToday int           `json:"completed_today"`
}

// Service composes the task store with the reminder binder
type Service struct {
	store  *Store
	binder *notification.Binder
	log    *zap.Logger
	now    func() time.Time
	tracer trace.Tracer
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the service clock
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a task service
func NewService(store *Store, binder *notification.Binder, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:  store,
		binder: binder,
		log:    log,
		now:    time.Now,
		tracer: telemetry.Tracer("tasks"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) start(ctx context.Context, name, owner string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("planner.owner", owner)))
}

// Create validates input, schedules a reminder when reminders are enabled and
// then appends the task to the active collection.
func (s *Service) Create(ctx context.Context, owner string, in CreateTaskInput) (task models.Task, err error) {
	ctx, span := s.start(ctx, "tasks.Create", owner)
	defer func() { telemetry.EndSpan(span, err) }()

	in, err = normalizeCreate(in)
	if err != nil {
		return models.Task{}, err
	}

	active, err := s.store.Active(ctx, owner)
	if err != nil {
		return models.Task{}, err
	}
	settings, err := s.store.Settings(ctx, owner)
	if err != nil {
		return models.Task{}, err
	}

	task = models.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Time:        in.Time,
		Priority:    in.Priority,
		Category:    in.Category,
		CreatedAt:   s.now(),
	}

	if settings.RemindersEnabled {
		if handle, ok := s.binder.Schedule(ctx, owner, task); ok {
			task.NotificationID = handle
		}
	}

	if err := s.store.SaveActive(ctx, owner, append(active, task)); err != nil {
		s.binder.Cancel(ctx, task.NotificationID)
		s.log.Error("failed_to_save_task",
			zap.Error(err),
			zap.String("owner", owner),
		)
		return models.Task{}, err
	}

	s.log.Debug("task_created",
		zap.String("owner", owner),
		zap.String("task_id", task.ID),
		zap.Bool("reminder", task.NotificationID != ""),
	)
	return task, nil
}

// Get returns an active or completed task by ID
func (s *Service) Get(ctx context.Context, owner, id string) (models.Task, error) {
	active, err := s.store.Active(ctx, owner)
	if err != nil {
		return models.Task{}, err
	}
	if i := indexOf(active, id); i >= 0 {
		return active[i], nil
	}
	completed, err := s.store.Completed(ctx, owner)
	if err != nil {
		return models.Task{}, err
	}
	if i := indexOf(completed, id); i >= 0 {
		return completed[i], nil
	}
	return models.Task{}, ErrNotFound
}

// List returns the owner's active tasks
func (s *Service) List(ctx context.Context, owner string) ([]models.Task, error) {
	return s.store.Active(ctx, owner)
}

// History returns the owner's completed tasks
func (s *Service) History(ctx context.Context, owner string) ([]models.Task, error) {
	return s.store.Completed(ctx, owner)
}

// Update applies edits to an active task. A time change replaces the reminder.
func (s *Service) Update(ctx context.Context, owner, id string, in UpdateTaskInput) (task models.Task, err error) {
	ctx, span := s.start(ctx, "tasks.Update", owner)
	defer func() { telemetry.EndSpan(span, err) }()

	active, err := s.store.Active(ctx, owner)
	if err != nil {
		return models.Task{}, err
	}
	i := indexOf(active, id)
	if i < 0 {
		return models.Task{}, s.missing(ctx, owner, id)
	}

	task = active[i]
	previousTime := task.Time
	if err := applyUpdate(&task, in); err != nil {
		return models.Task{}, err
	}

	// The old handle stays live until the new state is saved
	oldHandle := task.NotificationID
	newHandle := ""
	timeChanged := task.Time != previousTime
	if timeChanged {
		settings, err := s.store.Settings(ctx, owner)
		if err != nil {
			return models.Task{}, err
		}
		task.NotificationID = ""
		if settings.RemindersEnabled {
			if handle, ok := s.binder.Schedule(ctx, owner, task); ok {
				task.NotificationID = handle
				newHandle = handle
			}
		}
	}

	active[i] = task
	if err := s.store.SaveActive(ctx, owner, active); err != nil {
		s.binder.Cancel(ctx, newHandle)
		return models.Task{}, err
	}
	if timeChanged {
		s.binder.Cancel(ctx, oldHandle)
	}
	return task, nil
}

// Complete moves a task from the active to the completed collection and
// cancels its reminder. The completed blob is written first; if the active
// write then fails, the previous completed blob is restored and the reminder
// is left in place.
func (s *Service) Complete(ctx context.Context, owner, id string) (task models.Task, err error) {
	ctx, span := s.start(ctx, "tasks.Complete", owner)
	defer func() { telemetry.EndSpan(span, err) }()

	active, err := s.store.Active(ctx, owner)
	if err != nil {
		return models.Task{}, err
	}
	completed, err := s.store.Completed(ctx, owner)
	if err != nil {
		return models.Task{}, err
	}

	i := indexOf(active, id)
	if i < 0 {
		if indexOf(completed, id) >= 0 {
			return models.Task{}, ErrTaskCompleted
		}
		return models.Task{}, ErrNotFound
	}

	task = active[i]
	handle := task.NotificationID
	completedAt := s.now()
	task.Completed = true
	task.CompletedAt = &completedAt
	task.NotificationID = ""

	nextCompleted := make([]models.Task, 0, len(completed)+1)
	nextCompleted = append(nextCompleted, completed...)
	nextCompleted = append(nextCompleted, task)
	if err := s.store.SaveCompleted(ctx, owner, nextCompleted); err != nil {
		return models.Task{}, err
	}

	if err := s.store.SaveActive(ctx, owner, removeAt(active, i)); err != nil {
		if restoreErr := s.store.SaveCompleted(ctx, owner, completed); restoreErr != nil {
			s.log.Error("failed_to_restore_completed_tasks",
				zap.Error(restoreErr),
				zap.String("owner", owner),
				zap.String("task_id", id),
			)
		}
		return models.Task{}, err
	}
	s.binder.Cancel(ctx, handle)

	s.log.Debug("task_completed",
		zap.String("owner", owner),
		zap.String("task_id", id),
	)
	return task, nil
}

// Delete cancels the task's reminder and removes it from the active collection
func (s *Service) Delete(ctx context.Context, owner, id string) (err error) {
	ctx, span := s.start(ctx, "tasks.Delete", owner)
	defer func() { telemetry.EndSpan(span, err) }()

	active, err := s.store.Active(ctx, owner)
	if err != nil {
		return err
	}
	i := indexOf(active, id)
	if i < 0 {
		return s.missing(ctx, owner, id)
	}
	s.binder.Cancel(ctx, active[i].NotificationID)
	return s.store.SaveActive(ctx, owner, removeAt(active, i))
}

// Settings returns the owner's preferences
func (s *Service) Settings(ctx context.Context, owner string) (models.Settings, error) {
	return s.store.Settings(ctx, owner)
}

// SetRemindersEnabled stores the preference and brings every active task's
// handle in line with it.
func (s *Service) SetRemindersEnabled(ctx context.Context, owner string, enabled bool) (settings models.Settings, err error) {
	ctx, span := s.start(ctx, "tasks.SetRemindersEnabled", owner)
	defer func() { telemetry.EndSpan(span, err) }()

	settings, err = s.store.Settings(ctx, owner)
	if err != nil {
		return models.Settings{}, err
	}
	settings.RemindersEnabled = enabled
	if err := s.store.SaveSettings(ctx, owner, settings); err != nil {
		return models.Settings{}, err
	}

	active, err := s.store.Active(ctx, owner)
	if err != nil {
		return models.Settings{}, err
	}
	for i := range active {
		if enabled {
			if active[i].NotificationID == "" {
				if handle, ok := s.binder.Schedule(ctx, owner, active[i]); ok {
					active[i].NotificationID = handle
				}
			}
			continue
		}
		s.binder.Cancel(ctx, active[i].NotificationID)
		active[i].NotificationID = ""
	}
	if err := s.store.SaveActive(ctx, owner, active); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// RestoreReminders schedules a fresh reminder for every active task. It is
// used at start-up by backends whose handles do not outlive the process.
func (s *Service) RestoreReminders(ctx context.Context, owner string) (int, error) {
	settings, err := s.store.Settings(ctx, owner)
	if err != nil {
		return 0, err
	}
	active, err := s.store.Active(ctx, owner)
	if err != nil {
		return 0, err
	}

	restored := 0
	for i := range active {
		if !settings.RemindersEnabled {
			s.binder.Cancel(ctx, active[i].NotificationID)
			active[i].NotificationID = ""
			continue
		}
		handle, ok := s.binder.Reschedule(ctx, owner, active[i], active[i].Time)
		active[i].NotificationID = ""
		if ok {
			active[i].NotificationID = handle
			restored++
		}
	}
	if err := s.store.SaveActive(ctx, owner, active); err != nil {
		return 0, err
	}
	return restored, nil
}

// ClearReminders cancels every reminder the process tracks and clears the
// owner's stored handles.
func (s *Service) ClearReminders(ctx context.Context, owner string) error {
	s.binder.CancelAll(ctx)
	active, err := s.store.Active(ctx, owner)
	if err != nil {
		return err
	}
	for i := range active {
		active[i].NotificationID = ""
	}
	return s.store.SaveActive(ctx, owner, active)
}

// Scheduled lists reminders currently held by the notification backend
func (s *Service) Scheduled(ctx context.Context) ([]models.Reminder, error) {
	return s.binder.Scheduled(ctx)
}

// Overview returns both collections and the number of tasks completed today
func (s *Service) Overview(ctx context.Context, owner string) (Overview, error) {
	active, err := s.store.Active(ctx, owner)
	if err != nil {
		return Overview{}, err
	}
	completed, err := s.store.Completed(ctx, owner)
	if err != nil {
		return Overview{}, err
	}
	now := s.now()
	y, m, d := now.Date()
	today := 0
	for _, t := range completed {
		if t.CompletedAt == nil {
			continue
		}
		cy, cm, cd := t.CompletedAt.In(now.Location()).Date()
		if cy == y && cm == m && cd == d {
			today++
		}
	}
	return Overview{Active: active, Completed: completed, CompletedToday: today}, nil
}

// AcceptSuggestion copies a suggestion into a new task
func (s *Service) AcceptSuggestion(ctx context.Context, owner string, sg models.Suggestion) (models.Task, error) {
	return s.Create(ctx, owner, CreateTaskInput{
		Title:       sg.Title,
		Description: sg.Description,
		Time:        sg.SuggestedTime,
		Priority:    sg.Priority,
		Category:    sg.Category,
	})
}

// AcceptDraft creates a task from a chat draft
func (s *Service) AcceptDraft(ctx context.Context, owner string, d models.TaskDraft) (models.Task, error) {
	return s.Create(ctx, owner, CreateTaskInput{
		Title:       d.Title,
		Description: d.Description,
		Time:        d.Time,
		Priority:    d.Priority,
		Category:    d.Category,
	})
}

func (s *Service) missing(ctx context.Context, owner, id string) error {
	completed, err := s.store.Completed(ctx, owner)
	if err != nil {
		return err
	}
	if indexOf(completed, id) >= 0 {
		return ErrTaskCompleted
	}
	return ErrNotFound
}

func normalizeCreate(in CreateTaskInput) (CreateTaskInput, error) {
	in.Title = validation.SanitizeText(in.Title)
	in.Description = validation.SanitizeText(in.Description)
	in.Category = validation.SanitizeText(in.Category)
	if in.Category == "" {
		in.Category = models.DefaultCategory
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if in.Time != "" {
		t, err := tasktime.Normalize(in.Time)
		if err != nil {
			return in, validationError("time must look like 9:00 AM or 09:00")
		}
		in.Time = t
	}
	if err := validation.Validate.Struct(in); err != nil {
		return in, validationError(validation.Describe(err))
	}
	return in, nil
}

func applyUpdate(task *models.Task, in UpdateTaskInput) error {
	next := CreateTaskInput{
		Title:       task.Title,
		Description: task.Description,
		Time:        task.Time,
		Priority:    task.Priority,
		Category:    task.Category,
	}
	if in.Title != nil {
		next.Title = *in.Title
	}
	if in.Description != nil {
		next.Description = *in.Description
	}
	if in.Time != nil {
		next.Time = *in.Time
	}
	if in.Priority != nil {
		next.Priority = *in.Priority
		if next.Priority == "" {
			return validationError("priority must be low, medium or high")
		}
	}
	if in.Category != nil {
		next.Category = *in.Category
	}

	next, err := normalizeCreate(next)
	if err != nil {
		return err
	}
	task.Title = next.Title
	task.Description = next.Description
	task.Time = next.Time
	task.Priority = next.Priority
	task.Category = next.Category
	return nil
}

func indexOf(tasks []models.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func removeAt(tasks []models.Task, i int) []models.Task {
	out := make([]models.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

// IsClientError reports whether err stems from caller input rather than storage
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrTaskCompleted)
}

