package ai

import (
	"context"
	"time"

	"github.com/benvon/smart-planner/internal/models"
)

// SuggestionContext is what a provider knows about the owner when asked for ideas
type SuggestionContext struct {
	Now            time.Time
	Active         []models.Task
	Completed      []models.Task
	CompletedToday int
}

// SuggestionProvider generates task suggestions from an external model
type SuggestionProvider interface {
	GenerateSuggestions(ctx context.Context, sc SuggestionContext) ([]models.Suggestion, error)
}

// ProviderFactory creates a suggestion provider from string configuration
type ProviderFactory func(config map[string]string) (SuggestionProvider, error)

// ProviderRegistry stores available suggestion providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (SuggestionProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
