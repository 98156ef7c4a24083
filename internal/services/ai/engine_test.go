package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benvon/smart-planner/internal/models"
)

type fakeProvider struct {
	suggestions []models.Suggestion
	err         error
	calls       int
	lastNow     time.Time
}

func (f *fakeProvider) GenerateSuggestions(ctx context.Context, sc SuggestionContext) ([]models.Suggestion, error) {
	f.calls++
	f.lastNow = sc.Now
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline on the provider context")
	}
	return f.suggestions, f.err
}

func manySuggestions(n int) []models.Suggestion {
	out := make([]models.Suggestion, n)
	for i := range out {
		out[i] = models.Suggestion{ID: "s", Title: "Idea", SuggestedTime: "11:00 PM", Priority: models.PriorityLow}
	}
	return out
}

func TestSuggestionService(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tests := []struct {
		name         string
		provider     *fakeProvider
		credential   string
		wantFallback bool
		wantError    string
		wantCalls    int
		wantCount    int
	}{
		{
			name:         "no credential",
			provider:     &fakeProvider{},
			wantFallback: true,
		},
		{
			name:         "malformed credential",
			provider:     &fakeProvider{},
			credential:   "not-a-key",
			wantFallback: true,
			wantError:    "key is not valid",
		},
		{
			name:         "provider failure",
			provider:     &fakeProvider{err: &APIError{StatusCode: 429}},
			credential:   testKey,
			wantFallback: true,
			wantError:    "busy",
			wantCalls:    1,
		},
		{
			name:       "provider success capped",
			provider:   &fakeProvider{suggestions: manySuggestions(8)},
			credential: testKey,
			wantCalls:  1,
			wantCount:  MaxSuggestions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewSuggestionService(tt.provider, tt.credential, nil, WithSuggestionClock(clock), WithProviderTimeout(time.Second))
			got := svc.Suggest(context.Background(), SuggestionContext{})

			if got.UsingFallback != tt.wantFallback {
				t.Errorf("UsingFallback = %v, want %v", got.UsingFallback, tt.wantFallback)
			}
			if tt.wantError == "" && got.Error != "" {
				t.Errorf("unexpected Error %q", got.Error)
			}
			if tt.wantError != "" && !strings.Contains(got.Error, tt.wantError) {
				t.Errorf("Error = %q, want it to mention %q", got.Error, tt.wantError)
			}
			if tt.provider.calls != tt.wantCalls {
				t.Errorf("provider called %d times, want %d", tt.provider.calls, tt.wantCalls)
			}
			if len(got.Suggestions) == 0 {
				t.Error("expected suggestions in every case")
			}
			if tt.wantCount != 0 && len(got.Suggestions) != tt.wantCount {
				t.Errorf("got %d suggestions, want %d", len(got.Suggestions), tt.wantCount)
			}
			if tt.wantCalls > 0 && !tt.provider.lastNow.Equal(now) {
				t.Errorf("provider saw now=%v, want injected clock", tt.provider.lastNow)
			}
		})
	}
}

func TestSuggestionService_NilProviderWithCredential(t *testing.T) {
	t.Parallel()

	svc := NewSuggestionService(nil, testKey, nil)
	got := svc.Suggest(context.Background(), SuggestionContext{Now: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)})
	if !got.UsingFallback || got.Error == "" {
		t.Errorf("expected fallback with reason, got %+v", got)
	}
}
