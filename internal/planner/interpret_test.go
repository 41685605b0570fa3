package planner

import (
	"testing"
	"time"

	"github.com/taskpilot/taskpilot/internal/models"
)

func TestInterpretCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		raw          string
		want         models.Category
		wantFallback bool
		wantReason   string
	}{
		{"exact match", "work", models.CategoryWork, false, ""},
		{"uppercase is normalized", "HEALTH", models.CategoryHealth, false, ""},
		{"surrounding whitespace is trimmed", "  finance \n", models.CategoryFinance, false, ""},
		{"hallucinated value", "banana", models.CategoryPersonal, true, ReasonUnknownCategory},
		{"multi-word response", "probably work related", models.CategoryPersonal, true, ReasonUnknownCategory},
		{"empty response", "", models.CategoryPersonal, true, ReasonEmptyResponse},
		{"whitespace only", "   ", models.CategoryPersonal, true, ReasonEmptyResponse},
		{"uncategorized is not assignable", "uncategorized", models.CategoryPersonal, true, ReasonUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := InterpretCategory(tt.raw)
			if got.Category != tt.want {
				t.Errorf("InterpretCategory(%q).Category = %q, want %q", tt.raw, got.Category, tt.want)
			}
			if got.Fallback != tt.wantFallback {
				t.Errorf("InterpretCategory(%q).Fallback = %v, want %v", tt.raw, got.Fallback, tt.wantFallback)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("InterpretCategory(%q).Reason = %q, want %q", tt.raw, got.Reason, tt.wantReason)
			}
		})
	}
}

func TestInterpretPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		raw          string
		want         int
		wantFallback bool
	}{
		{"valid priority", "4", 4, false},
		{"whitespace tolerated", " 2 ", 2, false},
		{"above range is clamped", "7", 5, true},
		{"below range is clamped", "0", 1, true},
		{"negative is clamped", "-3", 1, true},
		{"non-numeric falls back", "high", 3, true},
		{"empty falls back", "", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := InterpretPriority(tt.raw)
			if got.Priority != tt.want {
				t.Errorf("InterpretPriority(%q).Priority = %d, want %d", tt.raw, got.Priority, tt.want)
			}
			if got.Fallback != tt.wantFallback {
				t.Errorf("InterpretPriority(%q).Fallback = %v, want %v", tt.raw, got.Fallback, tt.wantFallback)
			}
		})
	}
}

func TestInterpretDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		raw          string
		want         int
		wantFallback bool
	}{
		{"valid duration", "45", 45, false},
		{"minimum boundary", "15", 15, false},
		{"maximum boundary", "480", 480, false},
		{"below minimum is clamped", "5", 15, true},
		{"negative is clamped", "-30", 15, true},
		{"huge value is clamped", "99999", 480, true},
		{"non-numeric falls back to default", "about an hour", 30, true},
		{"empty falls back to default", "", 30, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := InterpretDuration(tt.raw)
			if got.Minutes != tt.want {
				t.Errorf("InterpretDuration(%q).Minutes = %d, want %d", tt.raw, got.Minutes, tt.want)
			}
			if got.Fallback != tt.wantFallback {
				t.Errorf("InterpretDuration(%q).Fallback = %v, want %v", tt.raw, got.Fallback, tt.wantFallback)
			}
		})
	}
}

func TestInterpretTaskFields(t *testing.T) {
	t.Parallel()

	t.Run("well formed response", func(t *testing.T) {
		t.Parallel()
		raw := `{"title": "Buy groceries", "description": "milk and eggs", "due_date": "2024-06-15 18:00", "priority": 2, "category": "shopping"}`
		got := InterpretTaskFields(raw, "buy groceries tomorrow evening")

		if got.Title != "Buy groceries" {
			t.Errorf("Title = %q", got.Title)
		}
		if got.Description != "milk and eggs" {
			t.Errorf("Description = %q", got.Description)
		}
		if got.Priority != 2 {
			t.Errorf("Priority = %d, want 2", got.Priority)
		}
		if got.Category != models.CategoryShopping {
			t.Errorf("Category = %q, want shopping", got.Category)
		}
		want := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
		if got.DueDate == nil || !got.DueDate.Equal(want) {
			t.Errorf("DueDate = %v, want %v", got.DueDate, want)
		}
		if len(got.MissingFields) != 0 {
			t.Errorf("MissingFields = %v, want none", got.MissingFields)
		}
	})

	t.Run("response wrapped in prose", func(t *testing.T) {
		t.Parallel()
		raw := "Sure! Here is the parsed task:\n```json\n{\"title\": \"Call dentist\", \"priority\": 4}\n```"
		got := InterpretTaskFields(raw, "call the dentist")

		if got.Title != "Call dentist" {
			t.Errorf("Title = %q, want extracted title", got.Title)
		}
		if got.Priority != 4 {
			t.Errorf("Priority = %d, want 4", got.Priority)
		}
	})

	t.Run("garbage response falls back everywhere", func(t *testing.T) {
		t.Parallel()
		got := InterpretTaskFields("I could not parse that.", "pick up dry cleaning")

		if got.Title != "pick up dry cleaning" {
			t.Errorf("Title = %q, want original input", got.Title)
		}
		if got.Description != "" {
			t.Errorf("Description = %q, want empty", got.Description)
		}
		if got.DueDate != nil {
			t.Errorf("DueDate = %v, want nil", got.DueDate)
		}
		if got.Priority != 3 {
			t.Errorf("Priority = %d, want 3", got.Priority)
		}
		if got.Category != models.CategoryPersonal {
			t.Errorf("Category = %q, want personal", got.Category)
		}
		if len(got.MissingFields) != 5 {
			t.Errorf("MissingFields = %v, want all five fields", got.MissingFields)
		}
	})

	t.Run("literal null due date is absent", func(t *testing.T) {
		t.Parallel()
		raw := `{"title": "Read book", "due_date": "null", "priority": 1, "category": "education"}`
		got := InterpretTaskFields(raw, "read a book sometime")

		if got.DueDate != nil {
			t.Errorf("DueDate = %v, want nil for literal null", got.DueDate)
		}
	})

	t.Run("out of range priority is clamped", func(t *testing.T) {
		t.Parallel()
		raw := `{"priority": 7}`
		got := InterpretTaskFields(raw, "something important")

		if got.Priority != 5 {
			t.Errorf("Priority = %d, want 5 (clamped)", got.Priority)
		}
	})

	t.Run("partial extraction keeps independent fields", func(t *testing.T) {
		t.Parallel()
		raw := `{"category": "travel", "due_date": "2024-07-01"}`
		got := InterpretTaskFields(raw, "book the trip")

		if got.Category != models.CategoryTravel {
			t.Errorf("Category = %q, want travel", got.Category)
		}
		if got.DueDate == nil {
			t.Fatal("DueDate = nil, want parsed date-only value")
		}
		if got.Title != "book the trip" {
			t.Errorf("Title = %q, want original input", got.Title)
		}
	})
}
