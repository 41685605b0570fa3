package planner

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/taskpilot/taskpilot/internal/models"
)

// MetricsSnapshot holds productivity metrics derived from a task history.
// It is recomputed per request and never persisted.
type MetricsSnapshot struct {
	TotalTasks        int            `json:"total_tasks"`
	CompletedTasks    int            `json:"completed_tasks"`
	PendingTasks      int            `json:"pending_tasks"`
	InProgressTasks   int            `json:"in_progress_tasks"`
	CompletionRate    float64        `json:"completion_rate"`
	AvgCompletionTime float64        `json:"avg_completion_time"`
	PriorityBreakdown map[string]int `json:"priority_breakdown"`
	CategoryBreakdown map[string]int `json:"category_breakdown"`
}

// HourCount is an (hour of day, task count) pair.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// UsagePatterns holds temporal usage statistics derived from a task history.
type UsagePatterns struct {
	DayOfWeekPattern    map[string]int `json:"day_of_week_pattern"`
	HourOfDayPattern    map[int]int    `json:"hour_of_day_pattern"`
	MostProductiveHours []HourCount    `json:"most_productive_hours"`
}

// ComputeMetrics aggregates a task history into a metrics snapshot. The input
// is read-only; an empty history yields zero rates and empty breakdowns.
func ComputeMetrics(tasks []models.Task) MetricsSnapshot {
	snapshot := MetricsSnapshot{
		PriorityBreakdown: make(map[string]int),
		CategoryBreakdown: make(map[string]int),
	}

	var completedDurationTotal, completedWithDuration int
	for i := range tasks {
		t := &tasks[i]
		snapshot.TotalTasks++
		switch t.Status {
		case models.TaskStatusCompleted:
			snapshot.CompletedTasks++
			if t.EstimatedDuration > 0 {
				completedDurationTotal += t.EstimatedDuration
				completedWithDuration++
			}
		case models.TaskStatusInProgress:
			snapshot.InProgressTasks++
		default:
			snapshot.PendingTasks++
		}
		snapshot.CategoryBreakdown[string(t.EffectiveCategory())]++
	}

	// Priority buckets are always present so charts render a full axis.
	for p := models.MinPriority; p <= models.MaxPriority; p++ {
		key := fmt.Sprintf("priority_%d", p)
		snapshot.PriorityBreakdown[key] = 0
	}
	for i := range tasks {
		p := tasks[i].Priority
		if p >= models.MinPriority && p <= models.MaxPriority {
			snapshot.PriorityBreakdown[fmt.Sprintf("priority_%d", p)]++
		}
	}

	if snapshot.TotalTasks > 0 {
		rate := float64(snapshot.CompletedTasks) / float64(snapshot.TotalTasks) * 100
		snapshot.CompletionRate = round2(rate)
	}
	if completedWithDuration > 0 {
		avg := float64(completedDurationTotal) / float64(completedWithDuration)
		snapshot.AvgCompletionTime = round2(avg)
	}

	return snapshot
}

// ComputeUsagePatterns derives temporal usage statistics: the weekday each
// task was created, and the hour of day completed tasks were last updated.
// Most productive hours are the top three by count; ties break toward the
// earlier hour so the result is deterministic.
func ComputeUsagePatterns(tasks []models.Task) UsagePatterns {
	patterns := UsagePatterns{
		DayOfWeekPattern:    make(map[string]int),
		HourOfDayPattern:    make(map[int]int),
		MostProductiveHours: []HourCount{},
	}

	for i := range tasks {
		t := &tasks[i]
		patterns.DayOfWeekPattern[t.CreatedAt.Weekday().String()]++
		if t.Status == models.TaskStatusCompleted {
			patterns.HourOfDayPattern[t.UpdatedAt.Hour()]++
		}
	}

	hours := make([]HourCount, 0, len(patterns.HourOfDayPattern))
	for hour, count := range patterns.HourOfDayPattern {
		hours = append(hours, HourCount{Hour: hour, Count: count})
	}
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].Count != hours[j].Count {
			return hours[i].Count > hours[j].Count
		}
		return hours[i].Hour < hours[j].Hour
	})
	if len(hours) > 3 {
		hours = hours[:3]
	}
	patterns.MostProductiveHours = hours

	return patterns
}

// GenerateInsights turns threshold rules over a task history into
// human-readable observations. All applicable insights are emitted; the rules
// are not mutually exclusive.
func GenerateInsights(tasks []models.Task, now time.Time) []string {
	insights := []string{}

	var completedCount, completedPriorityTotal int
	for i := range tasks {
		if tasks[i].Status == models.TaskStatusCompleted {
			completedCount++
			completedPriorityTotal += tasks[i].Priority
		}
	}
	if completedCount > 0 {
		avgPriority := float64(completedPriorityTotal) / float64(completedCount)
		if avgPriority > 4 {
			insights = append(insights, "You tend to complete high-priority tasks effectively. Consider focusing on medium-priority tasks to improve overall productivity.")
		} else if avgPriority < 2 {
			insights = append(insights, "You often complete low-priority tasks. Try to prioritize important tasks to maximize your productivity.")
		}
	}

	overdueCount := 0
	for i := range tasks {
		if tasks[i].IsOverdue(now) {
			overdueCount++
		}
	}
	if overdueCount > 0 {
		insights = append(insights, fmt.Sprintf("You have %d overdue tasks. Consider reviewing and reprioritizing them.", overdueCount))
	}

	if len(tasks) > 0 {
		mostCommon := modalCategory(tasks)
		insights = append(insights, fmt.Sprintf("Your most common task category is '%s'. Consider diversifying your task types for better work-life balance.", mostCommon))
	}

	var durationTotal, withDuration int
	for i := range tasks {
		if tasks[i].EstimatedDuration > 0 {
			durationTotal += tasks[i].EstimatedDuration
			withDuration++
		}
	}
	if withDuration > 0 {
		avgDuration := float64(durationTotal) / float64(withDuration)
		if avgDuration > 120 {
			insights = append(insights, "Your tasks tend to be long-duration. Consider breaking them down into smaller, more manageable tasks.")
		} else if avgDuration < 30 {
			insights = append(insights, "Your tasks are typically short. Consider batching similar tasks together for better efficiency.")
		}
	}

	return insights
}

// modalCategory returns the most frequent category in the history. Ties break
// alphabetically so repeated calls over the same history agree.
func modalCategory(tasks []models.Task) models.Category {
	counts := make(map[models.Category]int)
	for i := range tasks {
		counts[normalizedCategory(tasks[i].Category)]++
	}

	var modal models.Category
	modalCount := -1
	for category, count := range counts {
		if count > modalCount || (count == modalCount && category < modal) {
			modal = category
			modalCount = count
		}
	}
	return modal
}

// normalizedCategory maps unrecognized or missing categories to personal, the
// documented default for assignable categories.
func normalizedCategory(c models.Category) models.Category {
	if models.IsKnownCategory(c) {
		return c
	}
	return models.CategoryPersonal
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
