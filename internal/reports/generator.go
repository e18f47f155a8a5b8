package reports

import (
	"time"

	"zenflow/internal/tracker"
)

// Source supplies the items and the clock. *tracker.Service satisfies it.
type Source interface {
	Items() []tracker.Item
	Now() time.Time
}

// Generator creates reports from a Source.
type Generator struct {
	src Source
}

// NewGenerator creates a new report generator.
func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// GenerateDaily reports on the agenda of date.
func (g *Generator) GenerateDaily(date tracker.Date) *DailyReport {
	agenda := tracker.AgendaFor(g.src.Items(), date)

	report := &DailyReport{
		Date:        date,
		Items:       make([]ItemStatus, 0, len(agenda)),
		TotalCount:  len(agenda),
		GeneratedAt: g.src.Now(),
	}
	for _, it := range agenda {
		day := it.Day(date)
		done := it.CompletedOn(date)
		if done {
			report.CompletedCount++
		}
		report.Items = append(report.Items, ItemStatus{
			ID:          it.ID,
			Title:       it.Title,
			Kind:        it.Kind,
			Icon:        it.Icon,
			Category:    string(it.Category),
			Done:        done,
			Repetitions: day.RepetitionsDone,
			Target:      it.TargetRepetitions,
			Streak:      Streak(it, date),
		})
	}
	report.CompletionRate = rate(report.CompletedCount, report.TotalCount)
	return report
}

// GenerateWeekly reports on the Sunday-aligned week containing date.
func (g *Generator) GenerateWeekly(date tracker.Date) *WeeklyReport {
	start := startOfWeek(date)
	end := start.AddDays(6)

	report := &WeeklyReport{
		StartDate:   start,
		EndDate:     end,
		ByDay:       make([]DaySummary, 7),
		GeneratedAt: g.src.Now(),
	}
	for i := range report.ByDay {
		d := start.AddDays(i)
		report.ByDay[i] = DaySummary{Date: d, DayOfWeek: tracker.WeekdayName(d.Weekday())}
	}

	for _, it := range tracker.Registry(g.src.Items()) {
		status := WeeklyItemStatus{
			ID:            it.ID,
			Title:         it.Title,
			Icon:          it.Icon,
			DaysDue:       make([]bool, 7),
			DaysCompleted: make([]bool, 7),
		}
		for i := 0; i < 7; i++ {
			d := start.AddDays(i)
			if !tracker.IsDueOn(it, d) {
				continue
			}
			status.DaysDue[i] = true
			status.DueCount++
			report.ByDay[i].Due++
			if it.CompletedOn(d) {
				status.DaysCompleted[i] = true
				status.CompletedCount++
				report.ByDay[i].Completed++
			}
		}
		if status.DueCount == 0 {
			continue
		}
		status.CompletionRate = rate(status.CompletedCount, status.DueCount)
		status.Streak = Streak(it, end)
		report.TotalDue += status.DueCount
		report.TotalCompleted += status.CompletedCount
		report.Items = append(report.Items, status)
	}
	report.OverallRate = rate(report.TotalCompleted, report.TotalDue)
	return report
}

// Streak counts consecutive due dates of a recurring item that were
// completed, walking back from date. An incomplete date itself does not
// break the streak. One-off items have no streak.
func Streak(it tracker.Item, date tracker.Date) int {
	if !it.Kind.Recurring() || !it.StartDate.Valid() || !date.Valid() || date < it.StartDate {
		return 0
	}

	streak := 0
	for d := date; d >= it.StartDate; d = d.AddDays(-1) {
		if !tracker.IsDueOn(it, d) {
			continue
		}
		if it.CompletedOn(d) {
			streak++
		} else if d != date {
			break
		}
	}
	return streak
}

func startOfWeek(d tracker.Date) tracker.Date {
	return d.AddDays(-int(d.Weekday()))
}

func rate(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}
