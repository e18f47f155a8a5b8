package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"zenflow/internal/tracker"

	"github.com/tidwall/gjson"
)

// LegacyImporter reads the web app's "zenflow_tasks" localStorage value.
// The input is either the bare task array, or an object holding it under
// "zenflow_tasks" (as an array or as the JSON string localStorage stores).
type LegacyImporter struct{}

// Name returns the importer name.
func (l *LegacyImporter) Name() string { return "zenflow" }

// Preview parses the export without importing.
func (l *LegacyImporter) Preview(r io.Reader, today tracker.Date) ([]tracker.Item, error) {
	items, _, err := l.parse(r, today)
	return items, err
}

// Import restores every parsed item under its original id. Items whose id
// already exists are skipped.
func (l *LegacyImporter) Import(ctx context.Context, r io.Reader, dst Target) (*Result, error) {
	items, problems, err := l.parse(r, dst.Today())
	if err != nil {
		return nil, err
	}

	result := &Result{Skipped: len(problems), Errors: problems}
	for _, it := range items {
		if _, err := dst.Get(it.ID); err == nil {
			result.Skipped++
			continue
		}
		if _, err := dst.Restore(ctx, it); err != nil {
			if tracker.IsPersistence(err) {
				return result, err
			}
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", it.Title, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (l *LegacyImporter) parse(r io.Reader, today tracker.Date) ([]tracker.Item, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, nil, errors.New("not a valid JSON document")
	}

	root := gjson.ParseBytes(data)
	if root.IsObject() {
		root = root.Get("zenflow_tasks")
		if root.Type == gjson.String {
			root = gjson.Parse(root.String())
		}
	}
	if !root.IsArray() {
		return nil, nil, errors.New(`expected a task array or an object with "zenflow_tasks"`)
	}

	var (
		items    []tracker.Item
		problems []string
	)
	root.ForEach(func(_, row gjson.Result) bool {
		it, err := legacyItem(row, today)
		if err != nil {
			problems = append(problems, err.Error())
			return true
		}
		items = append(items, it)
		return true
	})
	return items, problems, nil
}

func legacyItem(row gjson.Result, today tracker.Date) (tracker.Item, error) {
	id := strings.TrimSpace(row.Get("id").String())
	title := strings.TrimSpace(row.Get("title").String())
	if id == "" || title == "" {
		return tracker.Item{}, fmt.Errorf("entry %s: missing id or title", truncate(row.Raw, 40))
	}

	var days []string
	for _, d := range row.Get("days").Array() {
		days = append(days, d.String())
	}
	days, err := tracker.NormalizeWeekdays(days)
	if err != nil {
		return tracker.Item{}, fmt.Errorf("%s: %w", title, err)
	}

	kind, err := legacyKind(row.Get("type").String(), len(days) > 0)
	if err != nil {
		return tracker.Item{}, fmt.Errorf("%s: %w", title, err)
	}
	if kind == tracker.KindOneOff {
		days = nil
	}

	target := int(row.Get("targetReps").Int())
	if target < 1 {
		target = 1
	}

	it := tracker.Item{
		ID:                id,
		Title:             title,
		Kind:              kind,
		StartDate:         legacyDate(row.Get("dueDate").String(), row.Get("createdAt").String(), today),
		RecurrenceDays:    days,
		TargetRepetitions: target,
		GlobalStatus:      tracker.StatusPending,
		History:           map[tracker.Date]tracker.DayState{},
		CreatedAt:         legacyTime(row.Get("createdAt").String()),
		IconColor:         strings.ToLower(row.Get("iconColor").String()),
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = it.StartDate.Time()
	}
	it.Category = tracker.Categories[0]
	if cat, err := tracker.ParseCategory(row.Get("category").String()); err == nil {
		it.Category = cat
	}
	it.Icon = tracker.IconList
	if icon, err := tracker.ParseIcon(row.Get("icon").String()); err == nil {
		it.Icon = icon
	}
	if !isHex(it.IconColor) {
		it.IconColor = ""
	}

	row.Get("history").ForEach(func(key, value gjson.Result) bool {
		d := tracker.Date(key.String())
		if d.Valid() {
			it.History[d] = legacyDay(value.Get("currentReps").Int(), value.Get("status").String(), target)
		}
		return true
	})
	if len(it.History) == 0 {
		reps, status := row.Get("currentReps").Int(), row.Get("status").String()
		if reps > 0 || legacyCompleted(status) {
			it.History[it.StartDate] = legacyDay(reps, status, target)
		}
	}

	if kind == tracker.KindOneOff {
		for _, st := range it.History {
			if st.DayStatus == tracker.StatusCompleted {
				it.GlobalStatus = tracker.StatusCompleted
			}
		}
	}
	return it, nil
}

// legacyKind maps the web app's type; a missing type means a habit when
// days are set and a one-off otherwise.
func legacyKind(raw string, hasDays bool) (tracker.Kind, error) {
	if strings.TrimSpace(raw) == "" {
		if hasDays {
			return tracker.KindHabit, nil
		}
		return tracker.KindOneOff, nil
	}
	return tracker.ParseKind(raw)
}

func legacyCompleted(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), "Concluída") ||
		strings.EqualFold(strings.TrimSpace(status), "Concluida")
}

// legacyDay clamps reps to target. A "Concluída" entry counts as all
// repetitions done.
func legacyDay(reps int64, status string, target int) tracker.DayState {
	n := int(reps)
	if legacyCompleted(status) {
		n = target
	}
	if n < 0 {
		n = 0
	}
	if n > target {
		n = target
	}
	st := tracker.StatusPending
	if n == target {
		st = tracker.StatusCompleted
	}
	return tracker.DayState{RepetitionsDone: n, DayStatus: st}
}

func legacyDate(due, created string, today tracker.Date) tracker.Date {
	if d := tracker.Date(due); d.Valid() {
		return d
	}
	if t := legacyTime(created); !t.IsZero() {
		return tracker.DateOf(t)
	}
	return today
}

func legacyTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func isHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
