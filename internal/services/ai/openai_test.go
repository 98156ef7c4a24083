package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benvon/smart-planner/internal/models"
)

const testKey = "sk-test-0123456789abcdef"

func TestValidCredential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want bool
	}{
		{testKey, true},
		{"", false},
		{"sk-short", false},
		{"pk-0123456789abcdefghij", false},
	}
	for _, tt := range tests {
		if got := ValidCredential(tt.key); got != tt.want {
			t.Errorf("ValidCredential(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestBuildSuggestionPrompt(t *testing.T) {
	t.Parallel()

	sc := SuggestionContext{
		Now: time.Date(2024, 3, 15, 21, 5, 0, 0, time.UTC), // Friday
		Active: []models.Task{
			{Title: "Read", Time: "9:30 PM", Category: "Learning"},
			{Title: "Stretch", Time: "10:00 PM", Category: "Health"},
		},
		Completed: []models.Task{
			{Category: "Health"},
			{Category: "Work"},
			{Category: "Social"},
		},
		CompletedToday: 2,
	}

	prompt := buildSuggestionPrompt(sc)
	for _, want := range []string{
		"Current time: 9:05 PM",
		"Day: Friday",
		"Tasks completed today: 2",
		"Preferred categories: Health, Learning, Work",
		"- 9:30 PM Read (Learning)",
		"- 10:00 PM Stretch (Health)",
		`"suggestions"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildSuggestionPrompt_EmptyHistory(t *testing.T) {
	t.Parallel()

	prompt := buildSuggestionPrompt(SuggestionContext{Now: time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC)})
	if !strings.Contains(prompt, "Preferred categories: none yet") {
		t.Error("expected placeholder for missing categories")
	}
	if !strings.Contains(prompt, "- nothing scheduled") {
		t.Error("expected placeholder for empty schedule")
	}
}

func TestParseSuggestionResponse(t *testing.T) {
	t.Parallel()

	valid := `{"title":"Walk","description":"Short walk","suggestedTime":"6:30 PM","category":"Health","priority":"medium","reason":"Fresh air"}`

	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{name: "bare array", content: "[" + valid + "]", want: 1},
		{name: "wrapped object", content: `{"suggestions":[` + valid + `,` + valid + `]}`, want: 2},
		{name: "other wrapper key", content: `{"items":[` + valid + `]}`, want: 1},
		{name: "24 hour time accepted", content: `[{"title":"Walk","description":"d","suggestedTime":"18:30","category":"Health","priority":"low","reason":"r"}]`, want: 1},
		{name: "bad priority dropped", content: `[{"title":"Walk","description":"d","suggestedTime":"6:30 PM","category":"Health","priority":"urgent","reason":"r"}, ` + valid + `]`, want: 1},
		{name: "bad time dropped", content: `[{"title":"Walk","description":"d","suggestedTime":"soon","category":"Health","priority":"low","reason":"r"}, ` + valid + `]`, want: 1},
		{name: "missing field dropped", content: `[{"title":"Walk","suggestedTime":"6:30 PM","category":"Health","priority":"low","reason":"r"}, ` + valid + `]`, want: 1},
		{name: "capped at six", content: "[" + strings.Repeat(valid+",", 7) + valid + "]", want: MaxSuggestions},
		{name: "not json", content: "sure, here you go", wantErr: true},
		{name: "no usable entries", content: `{"suggestions":[]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseSuggestionResponse(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d suggestions, want %d", len(got), tt.want)
			}
			for _, s := range got {
				if s.ID == "" {
					t.Error("expected generated id")
				}
				if !s.Priority.IsValid() {
					t.Errorf("invalid priority %q", s.Priority)
				}
			}
		})
	}
}

func TestParseSuggestionResponse_NormalizesAndTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200)
	content := fmt.Sprintf(`[{"id":"keep","title":%q,"description":%q,"suggestedTime":"18:30","category":"Health","priority":"HIGH","reason":%q}]`, long, long, long)

	got, err := parseSuggestionResponse(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := got[0]
	if s.ID != "keep" {
		t.Errorf("ID = %q, want keep", s.ID)
	}
	if s.SuggestedTime != "6:30 PM" {
		t.Errorf("SuggestedTime = %q, want 6:30 PM", s.SuggestedTime)
	}
	if s.Priority != models.PriorityHigh {
		t.Errorf("Priority = %q, want high", s.Priority)
	}
	if len(s.Title) != models.MaxSuggestionTitleLength {
		t.Errorf("title length = %d", len(s.Title))
	}
	if len(s.Description) != models.MaxSuggestionDescriptionLength {
		t.Errorf("description length = %d", len(s.Description))
	}
	if len(s.Reason) != models.MaxSuggestionReasonLength {
		t.Errorf("reason length = %d", len(s.Reason))
	}
}

func chatCompletionBody(content string) string {
	return fmt.Sprintf(`{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"gpt-4o-mini",`+
		`"choices":[{"index":0,"finish_reason":"stop","logprobs":null,"message":{"role":"assistant","content":%q,"refusal":null}}]}`, content)
}

func TestOpenAIProvider_GenerateSuggestions(t *testing.T) {
	t.Parallel()

	content := `{"suggestions":[{"title":"Evening stroll","description":"Walk around the block","suggestedTime":"9:30 PM","category":"Health","priority":"low","reason":"Helps you sleep"}]}`
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case auth <- r.Header.Get("Authorization"):
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, chatCompletionBody(content))
	}))
	defer srv.Close()

	p := NewOpenAIProviderWithLogger(testKey, srv.URL, "", nil, false)
	got, err := p.GenerateSuggestions(context.Background(), SuggestionContext{Now: time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("GenerateSuggestions: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Evening stroll" {
		t.Fatalf("unexpected suggestions: %+v", got)
	}
	if got := <-auth; got != "Bearer "+testKey {
		t.Errorf("Authorization = %q", got)
	}
}

func TestOpenAIProvider_RateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = fmt.Fprint(w, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`)
	}))
	defer srv.Close()

	p := NewOpenAIProviderWithLogger(testKey, srv.URL, "", nil, false)
	_, err := p.GenerateSuggestions(context.Background(), SuggestionContext{Now: time.Now()})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRateLimitError(err) {
		t.Errorf("expected rate limit error, got %v", err)
	}
}

func TestExtractAPIError_FromMessage(t *testing.T) {
	t.Parallel()

	err := errors.New(`POST "/chat/completions": 429 Too Many Requests {"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}`)
	apiErr := ExtractAPIError(err)
	if apiErr == nil {
		t.Fatal("expected APIError")
	}
	if !apiErr.IsPermanent {
		t.Error("expected quota error to be permanent")
	}
	if !IsQuotaError(apiErr) {
		t.Error("expected IsQuotaError")
	}
	if IsRateLimitError(apiErr) {
		t.Error("quota exhaustion must not be reported as a transient rate limit")
	}
	if ExtractAPIError(errors.New("connection refused")) != nil {
		t.Error("expected nil for unrelated error")
	}
}

func TestFallbackReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"none", nil, ""},
		{"credential", ErrInvalidCredential, "key is not valid"},
		{"rate limit", &APIError{StatusCode: http.StatusTooManyRequests}, "busy"},
		{"quota", &APIError{StatusCode: http.StatusTooManyRequests, IsPermanent: true}, "quota"},
		{"timeout", fmt.Errorf("call: %w", context.DeadlineExceeded), "too long"},
		{"malformed", fmt.Errorf("%w: bad", ErrMalformedResponse), "unexpected response"},
		{"other", errors.New("dial tcp: refused"), "could not be reached"},
	}
	for _, tt := range tests {
		got := FallbackReason(tt.err)
		if tt.want == "" {
			if got != "" {
				t.Errorf("%s: expected empty reason, got %q", tt.name, got)
			}
			continue
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s: FallbackReason = %q, want it to mention %q", tt.name, got, tt.want)
		}
	}
}
