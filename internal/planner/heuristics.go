package planner

import (
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/internal/models"
)

const (
	// HeuristicConfidence is the confidence score reported for rule-based
	// priority estimates.
	HeuristicConfidence = 80
)

// urgencyKeywords force maximum priority when present in a task's text.
// The scan stops at the first match; order carries no meaning since every
// keyword maps to the same priority.
var urgencyKeywords = []string{"urgent", "asap", "immediately", "critical", "emergency", "deadline"}

// EstimatePriority infers a task priority from its text and due date without
// consulting an AI model. The estimate starts at the default priority; urgency
// keywords raise it to the maximum, and an approaching due date raises it on a
// ladder. Each rule only ever raises the estimate.
func EstimatePriority(title, description string, dueDate *time.Time, now time.Time) (priority, confidence int) {
	priority = models.DefaultPriority

	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(description)
	for _, keyword := range urgencyKeywords {
		if strings.Contains(titleLower, keyword) || strings.Contains(descLower, keyword) {
			priority = models.MaxPriority
			break
		}
	}

	if dueDate != nil {
		days := int(dueDate.Sub(now).Hours() / 24)
		switch {
		case dueDate.Before(now):
			priority = models.MaxPriority
		case days <= 1:
			priority = maxInt(priority, 4)
		case days <= 3:
			priority = maxInt(priority, 3)
		case days <= 7:
			priority = maxInt(priority, 2)
		}
	}

	return priority, HeuristicConfidence
}

// ClampDuration clamps a duration estimate in minutes to the accepted range.
func ClampDuration(minutes int) int {
	return clampInt(minutes, models.MinDurationMinutes, models.MaxDurationMinutes)
}

// ClampPriority clamps a priority to the valid range.
func ClampPriority(priority int) int {
	return clampInt(priority, models.MinPriority, models.MaxPriority)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
