package planner

import (
	"sort"
	"time"

	"github.com/taskpilot/taskpilot/internal/models"
)

// SlotWidth is the fixed spacing between suggested start times. It is
// deliberately independent of task durations: the schedule is a suggested
// working order, not a packed calendar.
const SlotWidth = 30 * time.Minute

// ScheduledTask is a task annotated with its position in an optimized
// schedule.
type ScheduledTask struct {
	models.Task
	SuggestedOrder          int       `json:"suggested_order"`
	EstimatedStartTime      time.Time `json:"estimated_start_time"`
	EstimatedCompletionTime time.Time `json:"estimated_completion_time"`
}

// OptimizeSchedule orders tasks by priority (descending) and due date
// (ascending, missing due dates last) and assigns each a start slot offset
// from now. The sort is stable: tasks equal on both keys keep their input
// order. The input slice is never modified.
//
// The function is fail-soft: if anything panics during ordering, the tasks
// are returned in their original order without schedule annotations.
func OptimizeSchedule(tasks []models.Task, now time.Time) (scheduled []ScheduledTask) {
	defer func() {
		if r := recover(); r != nil {
			scheduled = make([]ScheduledTask, len(tasks))
			for i, t := range tasks {
				scheduled[i] = ScheduledTask{Task: t}
			}
		}
	}()

	scheduled = make([]ScheduledTask, len(tasks))
	for i, t := range tasks {
		scheduled[i] = ScheduledTask{Task: t}
	}

	sort.SliceStable(scheduled, func(i, j int) bool {
		a, b := &scheduled[i], &scheduled[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return dueBefore(a.DueDate, b.DueDate)
	})

	for i := range scheduled {
		scheduled[i].SuggestedOrder = i + 1
		start := now.Add(time.Duration(i) * SlotWidth)
		scheduled[i].EstimatedStartTime = start

		duration := scheduled[i].EstimatedDuration
		if duration <= 0 {
			duration = models.DefaultDurationMinutes
		}
		scheduled[i].EstimatedCompletionTime = start.Add(time.Duration(duration) * time.Minute)
	}

	return scheduled
}

// dueBefore orders due dates ascending with nil (no due date) sorting after
// every dated task.
func dueBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
