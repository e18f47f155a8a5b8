// Package reports builds daily and weekly progress reports from tracker
// items.
package reports

import (
	"time"

	"zenflow/internal/tracker"
)

// DailyReport is the agenda of one date with its progress.
type DailyReport struct {
	Date           tracker.Date `json:"date"`
	Items          []ItemStatus `json:"items"`
	CompletedCount int          `json:"completed_count"`
	TotalCount     int          `json:"total_count"`
	CompletionRate float64      `json:"completion_rate"`
	GeneratedAt    time.Time    `json:"generated_at"`
}

// ItemStatus is one agenda entry of a DailyReport.
type ItemStatus struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Kind        tracker.Kind `json:"kind"`
	Icon        tracker.Icon `json:"icon"`
	Category    string       `json:"category"`
	Done        bool         `json:"done"`
	Repetitions int          `json:"repetitions"`
	Target      int          `json:"target"`
	Streak      int          `json:"streak"`
}

// WeeklyReport covers the Sunday-aligned week containing a date.
type WeeklyReport struct {
	StartDate      tracker.Date       `json:"start_date"`
	EndDate        tracker.Date       `json:"end_date"`
	ByDay          []DaySummary       `json:"by_day"`
	Items          []WeeklyItemStatus `json:"items"`
	TotalDue       int                `json:"total_due"`
	TotalCompleted int                `json:"total_completed"`
	OverallRate    float64            `json:"overall_rate"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// DaySummary counts due and completed items on one day of the week.
type DaySummary struct {
	Date      tracker.Date `json:"date"`
	DayOfWeek string       `json:"day_of_week"`
	Due       int          `json:"due"`
	Completed int          `json:"completed"`
}

// WeeklyItemStatus is an item's week, Sunday first.
type WeeklyItemStatus struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Icon           tracker.Icon `json:"icon"`
	DaysDue        []bool       `json:"days_due"`
	DaysCompleted  []bool       `json:"days_completed"`
	DueCount       int          `json:"due_count"`
	CompletedCount int          `json:"completed_count"`
	CompletionRate float64      `json:"completion_rate"`
	Streak         int          `json:"streak"`
}
