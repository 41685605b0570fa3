package planner

import (
	"github.com/taskpilot/taskpilot/internal/models"
)

const (
	// SuggestionConfidence is the confidence score attached to template
	// suggestions.
	SuggestionConfidence = 70
	// MaxSuggestions caps the number of suggestions returned per request.
	MaxSuggestions = 5
)

// Suggestion is a proposed task derived from a user's history.
type Suggestion struct {
	Title             string          `json:"title"`
	Category          models.Category `json:"category"`
	Priority          int             `json:"priority"`
	EstimatedDuration int             `json:"estimated_duration"`
	ConfidenceScore   int             `json:"confidence_score"`
}

// categoryTemplates maps each category to its suggestion templates.
var categoryTemplates = map[models.Category][]string{
	models.CategoryPersonal:  {"Review personal goals", "Plan weekend activities", "Organize personal space"},
	models.CategoryWork:      {"Review weekly progress", "Plan next week", "Update professional skills"},
	models.CategoryHealth:    {"Schedule workout", "Plan healthy meals", "Book medical checkup"},
	models.CategoryShopping:  {"Create shopping list", "Research product reviews", "Compare prices"},
	models.CategoryFinance:   {"Review monthly budget", "Pay bills", "Update financial records"},
	models.CategoryEducation: {"Read educational material", "Practice new skills", "Enroll in course"},
	models.CategoryTravel:    {"Research destinations", "Plan trip itinerary", "Book accommodations"},
	models.CategoryHome:      {"Home maintenance check", "Organize living space", "Plan home improvements"},
}

// TaskSuggestions proposes new tasks based on the most frequent category in
// the user's history. An empty history yields no suggestions. The function is
// fail-soft: any panic degrades to an empty result.
func TaskSuggestions(tasks []models.Task) (suggestions []Suggestion) {
	defer func() {
		if r := recover(); r != nil {
			suggestions = []Suggestion{}
		}
	}()

	suggestions = []Suggestion{}
	if len(tasks) == 0 {
		return suggestions
	}

	modal := modalCategory(tasks)
	for _, title := range categoryTemplates[modal] {
		suggestions = append(suggestions, Suggestion{
			Title:             title,
			Category:          modal,
			Priority:          models.DefaultPriority,
			EstimatedDuration: models.DefaultDurationMinutes,
			ConfidenceScore:   SuggestionConfidence,
		})
		if len(suggestions) == MaxSuggestions {
			break
		}
	}

	return suggestions
}
