package planner

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/internal/models"
)

// Fallback reasons reported by the interpreters when a model response could
// not be used as-is.
const (
	ReasonEmptyResponse   = "empty_response"
	ReasonUnknownCategory = "unknown_category"
	ReasonNotAnInteger    = "not_an_integer"
	ReasonOutOfRange      = "out_of_range"
)

// CategoryOutcome is the result of interpreting a category response.
// When Fallback is true, Category holds the safe default and Reason explains
// why the raw response was rejected.
type CategoryOutcome struct {
	Category models.Category `json:"category"`
	Fallback bool            `json:"fallback,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}

// PriorityOutcome is the result of interpreting a priority response.
type PriorityOutcome struct {
	Priority int    `json:"priority"`
	Fallback bool   `json:"fallback,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// DurationOutcome is the result of interpreting a duration response.
type DurationOutcome struct {
	Minutes  int    `json:"minutes"`
	Fallback bool   `json:"fallback,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// InterpretCategory normalizes a raw model response to a known category.
// Anything that is not an exact match for one of the known categories after
// lowercasing and trimming falls back to personal.
func InterpretCategory(raw string) CategoryOutcome {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CategoryOutcome{Category: models.CategoryPersonal, Fallback: true, Reason: ReasonEmptyResponse}
	}
	category := models.Category(strings.ToLower(trimmed))
	if models.IsKnownCategory(category) {
		return CategoryOutcome{Category: category}
	}
	return CategoryOutcome{Category: models.CategoryPersonal, Fallback: true, Reason: ReasonUnknownCategory}
}

// InterpretPriority parses a raw model response as a priority. Non-integer
// input falls back to the default; out-of-range integers are clamped.
func InterpretPriority(raw string) PriorityOutcome {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return PriorityOutcome{Priority: models.DefaultPriority, Fallback: true, Reason: ReasonNotAnInteger}
	}
	clamped := ClampPriority(n)
	if clamped != n {
		return PriorityOutcome{Priority: clamped, Fallback: true, Reason: ReasonOutOfRange}
	}
	return PriorityOutcome{Priority: clamped}
}

// InterpretDuration parses a raw model response as a duration in minutes.
// Non-integer input falls back to the default; out-of-range values are
// clamped into the accepted range.
func InterpretDuration(raw string) DurationOutcome {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DurationOutcome{Minutes: models.DefaultDurationMinutes, Fallback: true, Reason: ReasonNotAnInteger}
	}
	clamped := ClampDuration(n)
	if clamped != n {
		return DurationOutcome{Minutes: clamped, Fallback: true, Reason: ReasonOutOfRange}
	}
	return DurationOutcome{Minutes: clamped}
}

// ParsedTask holds the fields extracted from a natural-language parse
// response. Every field is independently optional: a missing field gets its
// documented default and is recorded in MissingFields.
type ParsedTask struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Priority    int             `json:"priority"`
	Category    models.Category `json:"category"`
	// MissingFields lists fields that could not be extracted from the response.
	MissingFields []string `json:"missing_fields,omitempty"`
}

// Field extraction patterns for loosely structured key/value responses. The
// model is asked for JSON but frequently wraps it in prose or truncates it,
// so each field is pulled out independently instead of unmarshalling the
// whole document.
var (
	titledPattern      = regexp.MustCompile(`"title"\s*:\s*"([^"]+)"`)
	descriptionPattern = regexp.MustCompile(`"description"\s*:\s*"([^"]*)"`)
	dueDatePattern     = regexp.MustCompile(`"due_date"\s*:\s*"([^"]*)"`)
	priorityPattern    = regexp.MustCompile(`"priority"\s*:\s*(-?\d+)`)
	categoryPattern    = regexp.MustCompile(`"category"\s*:\s*"([^"]+)"`)
)

// dueDateLayouts are tried in order when parsing an extracted due date.
var dueDateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// InterpretTaskFields extracts task fields from a natural-language parse
// response. input is the user's original text; it becomes the title when no
// title can be extracted. A due date of the literal string "null" is treated
// as absent.
func InterpretTaskFields(raw, input string) ParsedTask {
	parsed := ParsedTask{
		Title:    input,
		Priority: models.DefaultPriority,
		Category: models.CategoryPersonal,
	}

	if m := titledPattern.FindStringSubmatch(raw); m != nil {
		parsed.Title = m[1]
	} else {
		parsed.MissingFields = append(parsed.MissingFields, "title")
	}

	if m := descriptionPattern.FindStringSubmatch(raw); m != nil {
		parsed.Description = m[1]
	} else {
		parsed.MissingFields = append(parsed.MissingFields, "description")
	}

	if m := dueDatePattern.FindStringSubmatch(raw); m != nil && m[1] != "" && m[1] != "null" {
		if due, ok := parseDueDate(m[1]); ok {
			parsed.DueDate = &due
		} else {
			parsed.MissingFields = append(parsed.MissingFields, "due_date")
		}
	} else {
		parsed.MissingFields = append(parsed.MissingFields, "due_date")
	}

	if m := priorityPattern.FindStringSubmatch(raw); m != nil {
		parsed.Priority = InterpretPriority(m[1]).Priority
	} else {
		parsed.MissingFields = append(parsed.MissingFields, "priority")
	}

	if m := categoryPattern.FindStringSubmatch(raw); m != nil {
		parsed.Category = InterpretCategory(m[1]).Category
	} else {
		parsed.MissingFields = append(parsed.MissingFields, "category")
	}

	return parsed
}

func parseDueDate(value string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
