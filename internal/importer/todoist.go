package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"zenflow/internal/tracker"
)

// TodoistImporter handles importing from Todoist CSV exports. Tasks become
// one-off items; priority 1 maps to the Urgente category.
type TodoistImporter struct{}

// Name returns the importer name.
func (t *TodoistImporter) Name() string {
	return "todoist"
}

// Import registers every task row as a new one-off item.
func (t *TodoistImporter) Import(ctx context.Context, r io.Reader, dst Target) (*Result, error) {
	forms, err := t.parseForms(r)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, f := range forms {
		if _, err := dst.Register(ctx, f); err != nil {
			if tracker.IsPersistence(err) {
				return result, err
			}
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", f.Title, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

// Preview returns the items that would be registered, without ids.
func (t *TodoistImporter) Preview(r io.Reader, today tracker.Date) ([]tracker.Item, error) {
	forms, err := t.parseForms(r)
	if err != nil {
		return nil, err
	}
	items := make([]tracker.Item, 0, len(forms))
	for _, f := range forms {
		start := f.StartDate
		if start == "" {
			start = today
		}
		items = append(items, tracker.Item{
			Title:             f.Title,
			Kind:              tracker.KindOneOff,
			StartDate:         start,
			TargetRepetitions: 1,
			GlobalStatus:      tracker.StatusPending,
			Category:          tracker.Category(f.Category),
		})
	}
	return items, nil
}

func (t *TodoistImporter) parseForms(r io.Reader) ([]tracker.Form, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	colIndex := make(map[string]int)
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		colIndex[strings.ToUpper(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"TYPE", "CONTENT"} {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	field := func(record []string, col string) string {
		if idx, ok := colIndex[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var forms []tracker.Form
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if !strings.EqualFold(field(record, "TYPE"), "task") {
			continue
		}
		title := field(record, "CONTENT")
		if title == "" {
			continue
		}

		f := tracker.Form{
			Title:             title,
			Kind:              tracker.KindOneOff,
			TargetRepetitions: 1,
			Category:          mapTodoistCategory(field(record, "PRIORITY"), field(record, "PROJECT")),
		}
		if d := parseTodoistDate(field(record, "DATE")); d != "" {
			f.StartDate = d
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// mapTodoistCategory picks Urgente for Todoist priority 1, otherwise the
// project name when it matches a category, otherwise the default.
func mapTodoistCategory(priority, project string) string {
	if strings.TrimSpace(priority) == "1" {
		return "Urgente"
	}
	if cat, err := tracker.ParseCategory(project); err == nil {
		return string(cat)
	}
	return string(tracker.Categories[0])
}

// parseTodoistDate parses the date formats Todoist exports use.
func parseTodoistDate(s string) tracker.Date {
	if s == "" {
		return ""
	}
	for _, layout := range []string{
		"2006-01-02",
		"Jan 2 2006",
		"Jan 2, 2006",
		"2 Jan 2006",
		"January 2, 2006",
		"01/02/2006",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return tracker.DateOf(t)
		}
	}
	return ""
}
