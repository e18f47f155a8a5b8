package reports

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"zenflow/internal/tracker"
)

type fakeSource struct {
	items []tracker.Item
	now   time.Time
}

func (f fakeSource) Items() []tracker.Item { return f.items }
func (f fakeSource) Now() time.Time        { return f.now }

func done(reps int) tracker.DayState {
	return tracker.DayState{RepetitionsDone: reps, DayStatus: tracker.StatusCompleted}
}

func testSource() fakeSource {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return fakeSource{
		now: time.Date(2024, 3, 13, 20, 0, 0, 0, time.UTC),
		items: []tracker.Item{
			{
				ID: "stretch", Title: "Stretch", Kind: tracker.KindHabit,
				StartDate: "2024-03-04", RecurrenceDays: []string{"Seg", "Qua"},
				TargetRepetitions: 1, GlobalStatus: tracker.StatusPending,
				History: map[tracker.Date]tracker.DayState{
					"2024-03-04": done(1), "2024-03-06": done(1), "2024-03-11": done(1),
				},
				CreatedAt: base,
			},
			{
				ID: "rent", Title: "Pay | rent", Kind: tracker.KindOneOff,
				StartDate: "2024-03-08", TargetRepetitions: 1, GlobalStatus: tracker.StatusCompleted,
				History:   map[tracker.Date]tracker.DayState{"2024-03-12": done(1)},
				CreatedAt: base.Add(time.Hour),
			},
			{
				ID: "taxes", Title: "Taxes", Kind: tracker.KindOneOff,
				StartDate: "2024-03-01", TargetRepetitions: 1, GlobalStatus: tracker.StatusPending,
				History:   map[tracker.Date]tracker.DayState{},
				CreatedAt: base.Add(2 * time.Hour),
			},
		},
	}
}

func TestStreak(t *testing.T) {
	items := testSource().items
	stretch := items[0]

	tests := []struct {
		date tracker.Date
		want int
	}{
		{"2024-03-13", 3}, // today not done yet
		{"2024-03-11", 3},
		{"2024-03-12", 3}, // not a due day
		{"2024-03-06", 2},
		{"2024-03-03", 0}, // before start
	}
	for _, tt := range tests {
		if got := Streak(stretch, tt.date); got != tt.want {
			t.Errorf("Streak(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}

	delete(stretch.History, "2024-03-06")
	if got := Streak(stretch, "2024-03-13"); got != 1 {
		t.Errorf("Streak after a miss = %d, want 1", got)
	}
	if got := Streak(items[1], "2024-03-12"); got != 0 {
		t.Errorf("one-off streak = %d, want 0", got)
	}
}

func TestGenerateDaily(t *testing.T) {
	r := NewGenerator(testSource()).GenerateDaily("2024-03-13")

	if r.TotalCount != 2 || r.CompletedCount != 0 {
		t.Fatalf("counts = %d/%d, want 0/2", r.CompletedCount, r.TotalCount)
	}
	// Newest first: the floating one-off, then the habit.
	if r.Items[0].ID != "taxes" || r.Items[1].ID != "stretch" {
		t.Errorf("items = %+v", r.Items)
	}
	if r.Items[1].Streak != 3 {
		t.Errorf("stretch streak = %d, want 3", r.Items[1].Streak)
	}

	r = NewGenerator(testSource()).GenerateDaily("2024-03-12")
	if r.CompletedCount != 1 || r.CompletionRate != 50 {
		t.Errorf("2024-03-12 = %d done, rate %.1f; want 1, 50", r.CompletedCount, r.CompletionRate)
	}
}

func TestGenerateWeekly(t *testing.T) {
	r := NewGenerator(testSource()).GenerateWeekly("2024-03-13")

	if r.StartDate != "2024-03-10" || r.EndDate != "2024-03-16" {
		t.Fatalf("week = %s..%s, want 2024-03-10..2024-03-16", r.StartDate, r.EndDate)
	}
	if r.ByDay[0].DayOfWeek != "Dom" || r.ByDay[6].DayOfWeek != "Sáb" {
		t.Errorf("ByDay labels = %s..%s", r.ByDay[0].DayOfWeek, r.ByDay[6].DayOfWeek)
	}
	if r.TotalDue != 3 || r.TotalCompleted != 2 {
		t.Errorf("totals = %d/%d, want 2/3", r.TotalCompleted, r.TotalDue)
	}
	if len(r.Items) != 2 {
		t.Fatalf("items = %+v, want stretch and rent", r.Items)
	}
	for _, it := range r.Items {
		if it.ID == "stretch" && (it.DueCount != 2 || it.CompletedCount != 1 || it.CompletionRate != 50) {
			t.Errorf("stretch = %+v", it)
		}
	}
	if r.ByDay[1].Due != 1 || r.ByDay[1].Completed != 1 {
		t.Errorf("Monday = %+v", r.ByDay[1])
	}
}

func TestFormatMarkdown(t *testing.T) {
	gen := NewGenerator(testSource())

	daily := FormatDailyMarkdown(gen.GenerateDaily("2024-03-12"))
	for _, want := range []string{"# Daily Report: 2024-03-12 (Ter)", "Pay \\| rent", "[x]", "1 of 2"} {
		if !strings.Contains(daily, want) {
			t.Errorf("daily markdown missing %q:\n%s", want, daily)
		}
	}

	weekly := FormatWeeklyMarkdown(gen.GenerateWeekly("2024-03-13"))
	for _, want := range []string{"2024-03-10 to 2024-03-16", "| Seg | 2024-03-11 | 1/1 |", "Stretch"} {
		if !strings.Contains(weekly, want) {
			t.Errorf("weekly markdown missing %q:\n%s", want, weekly)
		}
	}

	empty := FormatDailyMarkdown(NewGenerator(fakeSource{}).GenerateDaily("2024-03-12"))
	if !strings.Contains(empty, "Nothing scheduled") {
		t.Errorf("empty report = %q", empty)
	}
}

func TestFormatJSON(t *testing.T) {
	out, err := Format(NewGenerator(testSource()).GenerateDaily("2024-03-13"), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("JSON output should end with a newline: %q", out)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["date"] != "2024-03-13" || decoded["total_count"] != float64(2) {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestFormat(t *testing.T) {
	gen := NewGenerator(testSource())

	weekly, err := Format(gen.GenerateWeekly("2024-03-13"), "md")
	if err != nil {
		t.Fatal(err)
	}
	if weekly != FormatWeeklyMarkdown(gen.GenerateWeekly("2024-03-13")) {
		t.Errorf("Format(weekly, md) = %q", weekly)
	}

	if _, err := Format(gen.GenerateDaily("2024-03-13"), "html"); err == nil {
		t.Error("expected an error for an unknown format")
	}
	if _, err := Format("not a report", FormatMarkdown); err == nil {
		t.Error("expected an error for an unknown report type")
	}
}

func TestRender(t *testing.T) {
	md := "# Title\n\nSome **bold** text.\n"
	out := Render(md, "notty", 40)
	if !strings.Contains(out, "Title") || !strings.Contains(out, "bold") {
		t.Errorf("Render() = %q", out)
	}
}
