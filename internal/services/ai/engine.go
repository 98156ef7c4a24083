package ai

import (
	"context"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SuggestionService picks between the external provider and the built-in
// tables. It never fails; provider problems surface as SuggestionResult.Error.
type SuggestionService struct {
	provider   SuggestionProvider
	credential string
	timeout    time.Duration
	log        *zap.Logger
	now        func() time.Time
	tracer     trace.Tracer
}

// SuggestionOption configures a SuggestionService
type SuggestionOption func(*SuggestionService)

// WithSuggestionClock overrides the clock used when the context has no time
func WithSuggestionClock(now func() time.Time) SuggestionOption {
	return func(s *SuggestionService) { s.now = now }
}

// WithProviderTimeout bounds each provider call
func WithProviderTimeout(d time.Duration) SuggestionOption {
	return func(s *SuggestionService) { s.timeout = d }
}

// NewSuggestionService creates a suggestion service. provider may be nil
// when no credential is configured.
func NewSuggestionService(provider SuggestionProvider, credential string, log *zap.Logger, opts ...SuggestionOption) *SuggestionService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SuggestionService{
		provider:   provider,
		credential: credential,
		timeout:    DefaultTimeout,
		log:        log,
		now:        time.Now,
		tracer:     telemetry.Tracer("ai"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest returns up to six suggestions for sc
func (s *SuggestionService) Suggest(ctx context.Context, sc SuggestionContext) models.SuggestionResult {
	if sc.Now.IsZero() {
		sc.Now = s.now()
	}
	ctx, span := s.tracer.Start(ctx, "ai.Suggest")
	defer span.End()

	result := s.suggest(ctx, sc)
	span.SetAttributes(
		attribute.Bool("suggestions.fallback", result.UsingFallback),
		attribute.Int("suggestions.count", len(result.Suggestions)),
	)
	return result
}

func (s *SuggestionService) suggest(ctx context.Context, sc SuggestionContext) models.SuggestionResult {
	if s.credential == "" {
		return fallbackResult(sc, nil)
	}
	if !ValidCredential(s.credential) || s.provider == nil {
		s.log.Warn("ai_credential_invalid_using_fallback",
			zap.String("credential", SanitizeAPIKey(s.credential)),
		)
		return fallbackResult(sc, ErrInvalidCredential)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	suggestions, err := s.provider.GenerateSuggestions(callCtx, sc)
	if err != nil {
		s.log.Warn("ai_suggestions_failed_using_fallback",
			zap.Error(err),
			zap.Bool("rate_limited", IsRateLimitError(err)),
			zap.Bool("quota_exceeded", IsQuotaError(err)),
		)
		return fallbackResult(sc, err)
	}
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return models.SuggestionResult{Suggestions: suggestions}
}

func fallbackResult(sc SuggestionContext, err error) models.SuggestionResult {
	return models.SuggestionResult{
		Suggestions:   FallbackSuggestions(sc),
		UsingFallback: true,
		Error:         FallbackReason(err),
	}
}
