package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taskpilot/taskpilot/internal/models"
	"github.com/taskpilot/taskpilot/internal/planner"
)

const (
	// CategorizeConfidence is the confidence score for a successful categorization
	CategorizeConfidence = 85
	// PriorityConfidence is the confidence score for a successful priority suggestion
	PriorityConfidence = 80
	// FallbackConfidence is the confidence score when the provider is unavailable
	FallbackConfidence = 0

	priorityReasoning         = "Based on urgency keywords, due date, and AI analysis"
	priorityFallbackReasoning = "Default priority due to error"
)

// Service combines an AI provider with deterministic heuristics. Every method
// degrades to a heuristic or default result when the provider fails; callers
// never see a provider error, only a zero confidence score and a diagnostic.
type Service struct {
	provider Provider
	logger   *zap.Logger
}

// NewService creates a new AI service backed by the given provider. A nil
// provider is allowed; every request then takes the heuristic path.
func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// ErrNoProvider is reported as the diagnostic when no provider is configured.
var ErrNoProvider = errors.New("ai provider not configured")

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	if s.provider == nil {
		return "", ErrNoProvider
	}
	return s.provider.Complete(ctx, prompt)
}

// CategorizationResult is the outcome of a categorization request.
type CategorizationResult struct {
	Category          models.Category `json:"category"`
	SuggestedCategory models.Category `json:"suggested_category"`
	ConfidenceScore   int             `json:"confidence_score"`
	Diagnostic        string          `json:"error,omitempty"`
}

// PriorityResult is the outcome of a priority suggestion request.
type PriorityResult struct {
	Priority        int    `json:"priority"`
	ConfidenceScore int    `json:"confidence_score"`
	Reasoning       string `json:"reasoning"`
	Diagnostic      string `json:"error,omitempty"`
}

// ParseResult is the outcome of a natural language parse request.
type ParseResult struct {
	planner.ParsedTask
	Diagnostic string `json:"error,omitempty"`
}

// DurationResult is the outcome of a duration estimation request.
type DurationResult struct {
	Minutes    int    `json:"estimated_duration"`
	Diagnostic string `json:"error,omitempty"`
}

// CategorizeTask asks the provider to pick one of the known categories for a
// task. Unrecognized responses and provider failures both resolve to the
// personal category; only provider failures zero the confidence score.
func (s *Service) CategorizeTask(ctx context.Context, title, description string) CategorizationResult {
	prompt := buildCategorizePrompt(title, description)

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		s.logWarn("ai_categorize_fallback", err)
		return CategorizationResult{
			Category:          models.CategoryPersonal,
			SuggestedCategory: models.CategoryPersonal,
			ConfidenceScore:   FallbackConfidence,
			Diagnostic:        err.Error(),
		}
	}

	outcome := planner.InterpretCategory(raw)
	if outcome.Fallback && s.logger != nil {
		s.logger.Debug("ai_categorize_interpreted",
			zap.String("reason", outcome.Reason),
			zap.String("response_preview", SanitizeResponse(raw, false)),
		)
	}

	return CategorizationResult{
		Category:          outcome.Category,
		SuggestedCategory: outcome.Category,
		ConfidenceScore:   CategorizeConfidence,
	}
}

// SuggestPriority combines the deterministic priority heuristics with an AI
// suggestion, keeping whichever is higher. When the provider fails the
// heuristic estimate stands alone with a zero confidence score.
func (s *Service) SuggestPriority(ctx context.Context, title, description string, dueDate *time.Time, now time.Time) PriorityResult {
	heuristic, _ := planner.EstimatePriority(title, description, dueDate, now)

	prompt := buildPriorityPrompt(title, description, dueDate)

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		s.logWarn("ai_priority_fallback", err)
		return PriorityResult{
			Priority:        heuristic,
			ConfidenceScore: FallbackConfidence,
			Reasoning:       priorityFallbackReasoning,
			Diagnostic:      err.Error(),
		}
	}

	outcome := planner.InterpretPriority(raw)
	final := heuristic
	if outcome.Priority > final {
		final = outcome.Priority
	}

	return PriorityResult{
		Priority:        final,
		ConfidenceScore: PriorityConfidence,
		Reasoning:       priorityReasoning,
	}
}

// ParseNaturalLanguage extracts structured task fields from free-form input.
// The original text always survives as the title when extraction fails.
func (s *Service) ParseNaturalLanguage(ctx context.Context, text string) ParseResult {
	prompt := buildParsePrompt(text)

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		s.logWarn("ai_parse_fallback", err)
		return ParseResult{
			ParsedTask: planner.ParsedTask{
				Title:         text,
				Priority:      models.DefaultPriority,
				Category:      models.CategoryPersonal,
				MissingFields: []string{"title", "description", "due_date", "priority", "category"},
			},
			Diagnostic: err.Error(),
		}
	}

	parsed := planner.InterpretTaskFields(raw, text)
	if len(parsed.MissingFields) > 0 && s.logger != nil {
		s.logger.Debug("ai_parse_partial",
			zap.Strings("missing_fields", parsed.MissingFields),
			zap.String("response_preview", SanitizeResponse(raw, false)),
		)
	}

	return ParseResult{ParsedTask: parsed}
}

// EstimateDuration asks the provider for a duration in minutes, clamped to
// the supported range. Provider failures fall back to the default duration.
func (s *Service) EstimateDuration(ctx context.Context, title, description string) DurationResult {
	prompt := buildDurationPrompt(title, description)

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		s.logWarn("ai_duration_fallback", err)
		return DurationResult{
			Minutes:    models.DefaultDurationMinutes,
			Diagnostic: err.Error(),
		}
	}

	outcome := planner.InterpretDuration(raw)
	return DurationResult{Minutes: outcome.Minutes}
}

func (s *Service) logWarn(event string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(event, zap.Error(err))
}

func buildCategorizePrompt(title, description string) string {
	return fmt.Sprintf(`Categorize the following task into one of these categories:
- personal: Personal tasks, hobbies, self-care
- work: Work-related tasks, professional development
- health: Health, fitness, medical appointments
- shopping: Shopping, errands, purchases
- finance: Financial tasks, bills, budgeting
- education: Learning, studying, courses
- travel: Travel planning, trips, transportation
- home: Home maintenance, cleaning, repairs

Task: %s
Description: %s

Return only the category name (e.g., "personal", "work", etc.)`, title, description)
}

func buildPriorityPrompt(title, description string, dueDate *time.Time) string {
	due := "No due date"
	if dueDate != nil {
		due = dueDate.Format("2006-01-02")
	}

	return fmt.Sprintf(`Suggest a priority level (1-5) for this task:
- 1: Very low priority, can be done anytime
- 2: Low priority, not urgent
- 3: Medium priority, normal importance
- 4: High priority, should be done soon
- 5: Very high priority, urgent/critical

Task: %s
Description: %s
Due Date: %s

Return only the number (1-5).`, title, description, due)
}

func buildParsePrompt(text string) string {
	return fmt.Sprintf(`Parse the following natural language task input and extract:
1. Task title
2. Description (if any)
3. Due date (if mentioned)
4. Priority level (1-5)
5. Category

Input: "%s"

Return a JSON object with these fields:
{
    "title": "extracted title",
    "description": "extracted description or empty string",
    "due_date": "YYYY-MM-DD HH:MM or null",
    "priority": number 1-5,
    "category": "personal/work/health/shopping/finance/education/travel/home"
}`, text)
}

func buildDurationPrompt(title, description string) string {
	return fmt.Sprintf(`Estimate the duration of this task in minutes:
Task: %s
Description: %s

Consider:
- Simple tasks: 15-30 minutes
- Medium tasks: 30-120 minutes
- Complex tasks: 2-8 hours
- Very complex tasks: 8+ hours

Return only the number of minutes.`, title, description)
}
