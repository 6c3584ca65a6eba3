// Package stats derives dashboard summaries and analytics breakdowns from a
// snapshot of a user's tasks. All functions are pure: they perform no I/O,
// never mutate their input and are deterministic given the same snapshot and
// reference time.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/planora/planora-api/internal/domain"
)

// Summary holds the aggregate counts and completion rate for a user's
// current task snapshot, as rendered on the dashboard.
type Summary struct {
	TotalTasks          int `json:"totalTasks"`
	CompletedTasks      int `json:"completedTasks"`
	PendingTasks        int `json:"pendingTasks"`
	DueTodayTasks       int `json:"dueTodayTasks"`
	OverdueTasks        int `json:"overdueTasks"`
	HighPriorityTasks   int `json:"highPriorityTasks"`
	MediumPriorityTasks int `json:"mediumPriorityTasks"`
	LowPriorityTasks    int `json:"lowPriorityTasks"`
	CompletionRate      int `json:"completionRate"`
}

// UncategorizedLabel is the bucket name for tasks without a category.
const UncategorizedLabel = "Uncategorized"

// DayBucket is one day's worth of task-creation activity.
type DayBucket struct {
	Date      time.Time `json:"date"`
	Created   int       `json:"created"`
	Completed int       `json:"completed"`
}

// startOfDay truncates t to midnight in t's location.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ComputeSummary derives the dashboard summary from the task snapshot using
// now as the reference time. Due-today counts incomplete tasks with a
// deadline inside [start-of-day(now), start-of-day(now)+24h); overdue counts
// incomplete tasks with a deadline strictly before start-of-day(now).
// Priority counts cover incomplete tasks only.
func ComputeSummary(tasks []*domain.Task, now time.Time) Summary {
	var s Summary
	s.TotalTasks = len(tasks)

	dayStart := startOfDay(now)
	dayEnd := dayStart.Add(24 * time.Hour)

	for _, task := range tasks {
		if task.Completed {
			s.CompletedTasks++
			continue
		}

		if !task.Deadline.Before(dayStart) && task.Deadline.Before(dayEnd) {
			s.DueTodayTasks++
		}
		if task.Deadline.Before(dayStart) {
			s.OverdueTasks++
		}

		switch task.Priority {
		case domain.PriorityHigh:
			s.HighPriorityTasks++
		case domain.PriorityMedium:
			s.MediumPriorityTasks++
		case domain.PriorityLow:
			s.LowPriorityTasks++
		}
	}

	s.PendingTasks = s.TotalTasks - s.CompletedTasks

	if s.TotalTasks > 0 {
		s.CompletionRate = int(math.Round(100 * float64(s.CompletedTasks) / float64(s.TotalTasks)))
	}

	return s
}

// GroupByCategory counts tasks per category label. Tasks without a category
// are bucketed under UncategorizedLabel.
func GroupByCategory(tasks []*domain.Task) map[string]int {
	counts := make(map[string]int)
	for _, task := range tasks {
		category := task.Category
		if category == "" {
			category = UncategorizedLabel
		}
		counts[category]++
	}
	return counts
}

// BucketByCreationDate groups tasks by the calendar day of their creation
// timestamp, producing one bucket per distinct day holding the number of
// tasks created that day and how many of those are already completed.
// Buckets are ordered by date ascending.
func BucketByCreationDate(tasks []*domain.Task) []DayBucket {
	byDay := make(map[time.Time]*DayBucket)
	for _, task := range tasks {
		day := startOfDay(task.CreatedAt)
		bucket, ok := byDay[day]
		if !ok {
			bucket = &DayBucket{Date: day}
			byDay[day] = bucket
		}
		bucket.Created++
		if task.Completed {
			bucket.Completed++
		}
	}

	buckets := make([]DayBucket, 0, len(byDay))
	for _, bucket := range byDay {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})
	return buckets
}

// FilterByWindow returns the tasks whose creation timestamp falls within
// the half-open interval [start, end). The input slice is not modified.
func FilterByWindow(tasks []*domain.Task, start, end time.Time) []*domain.Task {
	filtered := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if !task.CreatedAt.Before(start) && task.CreatedAt.Before(end) {
			filtered = append(filtered, task)
		}
	}
	return filtered
}

// Window is a caller-selected creation-date range used to scope the
// analytics breakdowns.
type Window string

// Supported analytics windows.
const (
	WindowLast7Days  Window = "7d"
	WindowLast30Days Window = "30d"
	WindowAllTime    Window = "all"
)

// IsValid reports whether w is one of the supported windows.
func (w Window) IsValid() bool {
	switch w {
	case WindowLast7Days, WindowLast30Days, WindowAllTime:
		return true
	}
	return false
}

// Bounds resolves the window against a reference time, returning the
// half-open [start, end) interval it covers. The all-time window starts at
// the zero time.
func (w Window) Bounds(now time.Time) (time.Time, time.Time) {
	switch w {
	case WindowLast7Days:
		return now.AddDate(0, 0, -7), now
	case WindowLast30Days:
		return now.AddDate(0, 0, -30), now
	default:
		return time.Time{}, now
	}
}
