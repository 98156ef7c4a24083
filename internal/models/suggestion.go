package models

const (
	// MaxSuggestionTitleLength is the maximum length for a suggestion title
	MaxSuggestionTitleLength = 50
	// MaxSuggestionDescriptionLength is the maximum length for a suggestion description
	MaxSuggestionDescriptionLength = 100
	// MaxSuggestionReasonLength is the maximum length for a suggestion rationale
	MaxSuggestionReasonLength = 120
)

// Suggestion is a proposed task. It is generated per request and never persisted;
// accepting it copies it into a new Task.
type Suggestion struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	SuggestedTime string   `json:"suggestedTime"`
	Category      string   `json:"category"`
	Priority      Priority `json:"priority"`
	Reason        string   `json:"reason"`
}

// SuggestionResult is what the suggestion engine hands back to callers.
// Error is a human-readable reason the external service was not used.
type SuggestionResult struct {
	Suggestions   []Suggestion `json:"suggestions"`
	UsingFallback bool         `json:"using_fallback"`
	Error         string       `json:"error,omitempty"`
}
