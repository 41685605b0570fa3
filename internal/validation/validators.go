package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/taskpilot/taskpilot/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("task_category", validateTaskCategory); err != nil {
		panic(fmt.Sprintf("failed to register task_category validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
}

// validateTaskCategory validates that a string is a known Category enum value
func validateTaskCategory(fl validator.FieldLevel) bool {
	return models.IsKnownCategory(models.Category(fl.Field().String()))
}

// validateTaskStatus validates that a string is a valid TaskStatus enum value
func validateTaskStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.TaskStatus(value) {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateCategory validates a Category string value
func ValidateCategory(value string) error {
	if !models.IsKnownCategory(models.Category(value)) {
		return fmt.Errorf("invalid category: %s", value)
	}
	return nil
}

// ValidateTaskStatus validates a TaskStatus string value
func ValidateTaskStatus(value string) error {
	status := models.TaskStatus(value)
	switch status {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'in_progress', or 'completed')", value)
	}
}

// ValidatePriority validates a priority value is within the supported range
func ValidatePriority(value int) error {
	if value < models.MinPriority || value > models.MaxPriority {
		return fmt.Errorf("invalid priority: %d (must be between %d and %d)", value, models.MinPriority, models.MaxPriority)
	}
	return nil
}
