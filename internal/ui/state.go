package ui

import (
	"time"

	"zenflow/internal/tracker"
)

// Tab identifies a top-level screen.
type Tab string

const (
	TabToday    Tab = "today"
	TabRegistry Tab = "registry"
	TabDemands  Tab = "demands"
)

// ViewState is the presentation state that survives restarts. It carries no
// item data.
type ViewState struct {
	ActiveTab        Tab          `json:"active_tab"`
	CalendarExpanded bool         `json:"calendar_expanded"`
	FormOpen         bool         `json:"form_open"`
	SelectedDate     tracker.Date `json:"selected_date"`
	ViewMonth        string       `json:"view_month"` // YYYY-MM
}

// StateStore persists ViewState. *storage.Storage satisfies it.
type StateStore interface {
	LoadUIState(v any) error
	SaveUIState(v any) error
}

const monthLayout = "2006-01"

// DefaultViewState opens on today's agenda.
func DefaultViewState(today tracker.Date, calendarExpanded bool) ViewState {
	return ViewState{
		ActiveTab:        TabToday,
		CalendarExpanded: calendarExpanded,
		SelectedDate:     today,
		ViewMonth:        monthOf(today),
	}
}

// normalize repairs fields a hand-edited or stale state file may carry.
// A form is never reopened on start.
func (v ViewState) normalize(today tracker.Date, demandsEnabled bool) ViewState {
	switch v.ActiveTab {
	case TabToday, TabRegistry:
	case TabDemands:
		if !demandsEnabled {
			v.ActiveTab = TabToday
		}
	default:
		v.ActiveTab = TabToday
	}
	if !v.SelectedDate.Valid() {
		v.SelectedDate = today
	}
	if _, err := time.Parse(monthLayout, v.ViewMonth); err != nil {
		v.ViewMonth = monthOf(v.SelectedDate)
	}
	v.FormOpen = false
	return v
}

func monthOf(d tracker.Date) string {
	if !d.Valid() {
		return ""
	}
	return d.Time().Format(monthLayout)
}

// shiftDateMonth moves d by n months, clamping the day to the target
// month's length.
func shiftDateMonth(d tracker.Date, n int) tracker.Date {
	t := d.Time()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	return tracker.DateOf(first.AddDate(0, 0, min(t.Day(), last)-1))
}
