package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/storage"
)

// Store reads and writes an owner's task collections as whole JSON blobs
type Store struct {
	kv storage.KV
}

// NewStore creates a store over kv
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

func activeKey(owner string) string    { return owner + "/tasks" }
func completedKey(owner string) string { return owner + "/completed_tasks" }
func settingsKey(owner string) string  { return owner + "/settings" }

// Active returns the owner's active tasks; an absent blob is an empty list
func (s *Store) Active(ctx context.Context, owner string) ([]models.Task, error) {
	return s.loadTasks(ctx, activeKey(owner))
}

// Completed returns the owner's completed tasks
func (s *Store) Completed(ctx context.Context, owner string) ([]models.Task, error) {
	return s.loadTasks(ctx, completedKey(owner))
}

// SaveActive replaces the owner's active collection
func (s *Store) SaveActive(ctx context.Context, owner string, tasks []models.Task) error {
	return s.saveTasks(ctx, activeKey(owner), tasks)
}

// SaveCompleted replaces the owner's completed collection
func (s *Store) SaveCompleted(ctx context.Context, owner string, tasks []models.Task) error {
	return s.saveTasks(ctx, completedKey(owner), tasks)
}

// Settings returns the owner's settings, or the defaults when none were saved
func (s *Store) Settings(ctx context.Context, owner string) (models.Settings, error) {
	blob, err := s.kv.Get(ctx, settingsKey(owner))
	if errors.Is(err, storage.ErrNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	settings := models.DefaultSettings()
	if err := json.Unmarshal(blob, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return settings, nil
}

// SaveSettings replaces the owner's settings
func (s *Store) SaveSettings(ctx context.Context, owner string, settings models.Settings) error {
	blob, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.kv.Set(ctx, settingsKey(owner), blob); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *Store) loadTasks(ctx context.Context, key string) ([]models.Task, error) {
	blob, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	var tasks []models.Task
	if err := json.Unmarshal(blob, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *Store) saveTasks(ctx context.Context, key string, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	blob, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, blob); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

