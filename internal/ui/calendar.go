package ui

import (
	"strings"
	"time"

	"zenflow/internal/tracker"
)

const dueMarker = "•"

// monthGrid lays out month (YYYY-MM) as weeks starting on Sunday. Cells
// before the 1st and after the last day are empty.
func monthGrid(month string) [][]tracker.Date {
	first, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil
	}
	days := first.AddDate(0, 1, -1).Day()

	var weeks [][]tracker.Date
	week := make([]tracker.Date, int(first.Weekday()))
	for d := 1; d <= days; d++ {
		week = append(week, tracker.DateOf(first.AddDate(0, 0, d-1)))
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, "")
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// dueDates returns the dates of month on which at least one item is due.
func dueDates(items []tracker.Item, month string) map[tracker.Date]bool {
	due := make(map[tracker.Date]bool)
	for _, week := range monthGrid(month) {
		for _, d := range week {
			if d == "" {
				continue
			}
			for _, it := range items {
				if tracker.IsDueOn(it, d) {
					due[d] = true
					break
				}
			}
		}
	}
	return due
}

// renderCalendar draws month with the selected date highlighted and due
// dates marked.
func renderCalendar(s *Styles, month string, selected, today tracker.Date, due map[tracker.Date]bool) string {
	first, err := time.Parse(monthLayout, month)
	if err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.PaneTitleStyle.Render(first.Format("January 2006")))
	b.WriteString("\n")

	headers := make([]string, 7)
	for i, name := range tracker.WeekdayNames {
		headers[i] = string([]rune(name)[:2]) + " "
	}
	b.WriteString(s.CalendarHeaderStyle.Render(strings.Join(headers, "")))
	b.WriteString("\n")

	for _, week := range monthGrid(month) {
		for _, d := range week {
			if d == "" {
				b.WriteString("   ")
				continue
			}
			cell := strings.TrimPrefix(string(d)[8:], "0")
			if len(cell) == 1 {
				cell = " " + cell
			}
			marker := " "
			if due[d] {
				marker = dueMarker
			}

			style := s.CalendarDayStyle
			switch {
			case d == selected:
				style = s.CalendarSelectedStyle
			case d == today:
				style = s.CalendarTodayStyle
			case due[d]:
				style = s.CalendarDueStyle
			}
			b.WriteString(style.Render(cell) + marker)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
