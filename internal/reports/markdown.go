package reports

import (
	"fmt"
	"strings"

	"zenflow/internal/tracker"
)

// FormatDailyMarkdown formats a daily report as Markdown.
func FormatDailyMarkdown(r *DailyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Report: %s (%s)\n\n", r.Date, weekdayOf(r))
	fmt.Fprintf(&b, "**Completed:** %d of %d (%.0f%%)\n\n", r.CompletedCount, r.TotalCount, r.CompletionRate)

	if len(r.Items) == 0 {
		b.WriteString("_Nothing scheduled._\n")
		return b.String()
	}

	b.WriteString("| | Item | Progress | Streak |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, it := range r.Items {
		mark := " "
		if it.Done {
			mark = "x"
		}
		progress := "-"
		if it.Target > 1 {
			progress = fmt.Sprintf("%d/%d", it.Repetitions, it.Target)
		}
		streak := "-"
		if it.Streak > 0 {
			streak = fmt.Sprintf("%d", it.Streak)
		}
		fmt.Fprintf(&b, "| [%s] | %s | %s | %s |\n", mark, escapeCell(it.Title), progress, streak)
	}
	return b.String()
}

// FormatWeeklyMarkdown formats a weekly report as Markdown.
func FormatWeeklyMarkdown(r *WeeklyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Weekly Report: %s to %s\n\n", r.StartDate, r.EndDate)
	fmt.Fprintf(&b, "**Completed:** %d of %d due (%.0f%%)\n\n", r.TotalCompleted, r.TotalDue, r.OverallRate)

	b.WriteString("## By day\n\n")
	b.WriteString("| Day | Date | Done |\n")
	b.WriteString("|---|---|---|\n")
	for _, d := range r.ByDay {
		fmt.Fprintf(&b, "| %s | %s | %d/%d |\n", d.DayOfWeek, d.Date, d.Completed, d.Due)
	}

	if len(r.Items) == 0 {
		return b.String()
	}

	b.WriteString("\n## By item\n\n")
	b.WriteString("| Item | Week | Rate | Streak |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, it := range r.Items {
		fmt.Fprintf(&b, "| %s | %s | %.0f%% | %d |\n", escapeCell(it.Title), weekStrip(it), it.CompletionRate, it.Streak)
	}
	return b.String()
}

// weekStrip renders one cell per day: ✓ done, · missed, blank when not due.
func weekStrip(it WeeklyItemStatus) string {
	var b strings.Builder
	for i := range it.DaysDue {
		switch {
		case it.DaysCompleted[i]:
			b.WriteString("✓")
		case it.DaysDue[i]:
			b.WriteString("·")
		default:
			b.WriteString(" ")
		}
	}
	return "`" + b.String() + "`"
}

func weekdayOf(r *DailyReport) string {
	if !r.Date.Valid() {
		return "?"
	}
	return tracker.WeekdayName(r.Date.Weekday())
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
