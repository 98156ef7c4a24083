package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/tasktime"
	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxSuggestions caps every suggestion list, external or fallback
	MaxSuggestions = 6

	topCategoryCount = 3
	credentialPrefix = "sk-"
	credentialMinLen = 20
)

// ValidCredential reports whether key has the shape of an OpenAI API key
func ValidCredential(key string) bool {
	return strings.HasPrefix(key, credentialPrefix) && len(key) >= credentialMinLen
}

// OpenAIProvider implements SuggestionProvider using OpenAI's chat completions
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support.
// Failed calls are not retried; the caller falls back instead.
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// GenerateSuggestions asks the model for suggestions and validates what comes back
func (p *OpenAIProvider) GenerateSuggestions(ctx context.Context, sc SuggestionContext) ([]models.Suggestion, error) {
	prompt := buildSuggestionPrompt(sc)
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a personal planning assistant that proposes short, concrete tasks for the rest of the user's day. Respond with valid JSON only."),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	fields := []zap.Field{
		zap.String("operation", "generate_suggestions"),
		zap.String("model", p.model),
		zap.String("owner_hash", HashOwner(ExtractOwner(ctx))),
		zap.String("request_id", ExtractRequestID(ctx)),
	}
	p.debug("llm_api_request", append(fields,
		zap.Int("prompt_length", len(prompt)),
		zap.String("prompt_preview", SanitizePrompt(prompt, true)),
	)...)

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		p.debug("llm_api_error", append(fields, zap.Error(err), zap.Int64("latency_ms", latency.Milliseconds()))...)
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to generate suggestions: %w", apiErr)
		}
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoicesInResponse
	}

	content := resp.Choices[0].Message.Content
	p.debug("llm_api_response", append(fields,
		zap.Int("response_length", len(content)),
		zap.String("response_preview", SanitizeResponse(content, true)),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)...)

	return parseSuggestionResponse(content)
}

func (p *OpenAIProvider) debug(msg string, fields ...zap.Field) {
	if p.logger != nil && p.debugMode {
		p.logger.Debug(msg, fields...)
	}
}

// buildSuggestionPrompt describes the owner's day: clock, weekday, progress,
// favourite categories and what is already scheduled
func buildSuggestionPrompt(sc SuggestionContext) string {
	var b strings.Builder
	b.WriteString("Suggest tasks for the rest of my day.\n\n")
	fmt.Fprintf(&b, "Current time: %s\n", tasktime.Format(sc.Now.Hour(), sc.Now.Minute()))
	fmt.Fprintf(&b, "Day: %s\n", sc.Now.Weekday())
	fmt.Fprintf(&b, "Tasks completed today: %d\n", sc.CompletedToday)

	if cats := topCategories(sc, topCategoryCount); len(cats) > 0 {
		fmt.Fprintf(&b, "Preferred categories: %s\n", strings.Join(cats, ", "))
	} else {
		b.WriteString("Preferred categories: none yet\n")
	}

	b.WriteString("Existing schedule:\n")
	if len(sc.Active) == 0 {
		b.WriteString("- nothing scheduled\n")
	}
	for _, t := range sc.Active {
		fmt.Fprintf(&b, "- %s %s (%s)\n", t.Time, t.Title, t.Category)
	}

	fmt.Fprintf(&b, `
Return a JSON object of the form {"suggestions": [...]} with 4 to %d items.
Each item must have these string fields:
- "title": at most %d characters
- "description": at most %d characters
- "suggestedTime": a time later today formatted like "3:30 PM"
- "category": one of Work, Health, Learning, Social, Personal
- "priority": one of low, medium, high
- "reason": at most %d characters explaining why it fits now
Do not suggest anything already on the schedule.`,
		MaxSuggestions, models.MaxSuggestionTitleLength, models.MaxSuggestionDescriptionLength, models.MaxSuggestionReasonLength)
	return b.String()
}

// topCategories ranks categories by frequency across active and completed
// tasks. Ties keep first-seen order.
func topCategories(sc SuggestionContext, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, list := range [][]models.Task{sc.Active, sc.Completed} {
		for _, t := range list {
			if t.Category == "" {
				continue
			}
			if _, seen := counts[t.Category]; !seen {
				order = append(order, t.Category)
			}
			counts[t.Category]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

type rawSuggestion struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	SuggestedTime string `json:"suggestedTime"`
	Category      string `json:"category"`
	Priority      string `json:"priority"`
	Reason        string `json:"reason"`
}

// parseSuggestionResponse accepts either a bare JSON array or an object
// wrapping one. Entries missing a field, or with an unknown priority or an
// unparseable time, are dropped.
func parseSuggestionResponse(content string) ([]models.Suggestion, error) {
	raw, err := suggestionArray(strings.TrimSpace(content))
	if err != nil {
		return nil, err
	}

	out := make([]models.Suggestion, 0, MaxSuggestions)
	for _, r := range raw {
		s, ok := r.validate()
		if !ok {
			continue
		}
		out = append(out, s)
		if len(out) == MaxSuggestions {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable suggestions", ErrMalformedResponse)
	}
	return out, nil
}

func suggestionArray(content string) ([]rawSuggestion, error) {
	var arr []rawSuggestion
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return arr, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if v, ok := obj["suggestions"]; ok {
		if err := json.Unmarshal(v, &arr); err == nil {
			return arr, nil
		}
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := json.Unmarshal(obj[k], &arr); err == nil && len(arr) > 0 {
			return arr, nil
		}
	}
	return nil, fmt.Errorf("%w: no suggestion array found", ErrMalformedResponse)
}

func (r rawSuggestion) validate() (models.Suggestion, bool) {
	for _, f := range []string{r.Title, r.Description, r.SuggestedTime, r.Category, r.Priority, r.Reason} {
		if strings.TrimSpace(f) == "" {
			return models.Suggestion{}, false
		}
	}
	priority := models.Priority(strings.ToLower(strings.TrimSpace(r.Priority)))
	if !priority.IsValid() {
		return models.Suggestion{}, false
	}
	at, err := tasktime.Normalize(r.SuggestedTime)
	if err != nil {
		return models.Suggestion{}, false
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return models.Suggestion{
		ID:            id,
		Title:         truncateRunes(strings.TrimSpace(r.Title), models.MaxSuggestionTitleLength),
		Description:   truncateRunes(strings.TrimSpace(r.Description), models.MaxSuggestionDescriptionLength),
		SuggestedTime: at,
		Category:      strings.TrimSpace(r.Category),
		Priority:      priority,
		Reason:        truncateRunes(strings.TrimSpace(r.Reason), models.MaxSuggestionReasonLength),
	}, true
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry, logger *zap.Logger, debugMode bool) {
	registry.Register("openai", func(config map[string]string) (SuggestionProvider, error) {
		apiKey := config["api_key"]
		if !ValidCredential(apiKey) {
			return nil, ErrInvalidCredential
		}
		return NewOpenAIProviderWithLogger(apiKey, config["base_url"], config["model"], logger, debugMode), nil
	})
}
