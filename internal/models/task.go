package models

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a task into one of the known buckets
type Category string

const (
	CategoryPersonal  Category = "personal"
	CategoryWork      Category = "work"
	CategoryHealth    Category = "health"
	CategoryShopping  Category = "shopping"
	CategoryFinance   Category = "finance"
	CategoryEducation Category = "education"
	CategoryTravel    Category = "travel"
	CategoryHome      Category = "home"
	// CategoryUncategorized is the analytics bucket for tasks without a recognized category
	CategoryUncategorized Category = "uncategorized"
)

// KnownCategories lists the categories a task may be assigned to.
// CategoryUncategorized is intentionally excluded: it is a reporting bucket,
// not an assignable value.
var KnownCategories = []Category{
	CategoryPersonal,
	CategoryWork,
	CategoryHealth,
	CategoryShopping,
	CategoryFinance,
	CategoryEducation,
	CategoryTravel,
	CategoryHome,
}

// IsKnownCategory reports whether c is one of the assignable categories
func IsKnownCategory(c Category) bool {
	for _, known := range KnownCategories {
		if c == known {
			return true
		}
	}
	return false
}

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

const (
	// MinPriority is the lowest task priority
	MinPriority = 1
	// MaxPriority is the highest task priority
	MaxPriority = 5
	// DefaultPriority is the priority assigned when no signal is available
	DefaultPriority = 3

	// DefaultDurationMinutes is the duration assumed when no estimate exists
	DefaultDurationMinutes = 30
	// MinDurationMinutes is the smallest accepted duration estimate
	MinDurationMinutes = 15
	// MaxDurationMinutes is the largest accepted duration estimate (8 hours)
	MaxDurationMinutes = 480
)

// Task represents a task item
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    Category   `json:"category"`
	Priority    int        `json:"priority"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	// EstimatedDuration is in minutes
	EstimatedDuration int      `json:"estimated_duration"`
	Tags              []string `json:"tags,omitempty"`

	// AI enrichment fields
	ConfidenceScore   int      `json:"confidence_score"`
	SuggestedCategory Category `json:"suggested_category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOverdue reports whether the task's due date has passed without completion
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusCompleted {
		return false
	}
	return now.After(*t.DueDate)
}

// DaysUntilDue returns the number of whole days until the due date, or nil
// when the task has no due date. Negative values mean the task is overdue.
func (t *Task) DaysUntilDue(now time.Time) *int {
	if t.DueDate == nil {
		return nil
	}
	days := int(t.DueDate.Sub(now).Hours() / 24)
	return &days
}

// EffectiveCategory returns the analytics bucket for the task's category:
// unrecognized or missing categories count as uncategorized.
func (t *Task) EffectiveCategory() Category {
	if IsKnownCategory(t.Category) {
		return t.Category
	}
	return CategoryUncategorized
}
