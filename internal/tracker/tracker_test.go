package tracker

import (
	"testing"
	"time"
)

func habit(days []string, target int) Item {
	return Item{
		ID:                "h1",
		Title:             "Drink water",
		Kind:              KindHabit,
		StartDate:         "2024-03-01",
		RecurrenceDays:    days,
		TargetRepetitions: target,
		GlobalStatus:      StatusPending,
		History:           map[Date]DayState{},
		CreatedAt:         time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func oneOff(id string, start Date, created time.Time) Item {
	return Item{
		ID:                id,
		Title:             "File taxes " + id,
		Kind:              KindOneOff,
		StartDate:         start,
		TargetRepetitions: 1,
		GlobalStatus:      StatusPending,
		History:           map[Date]DayState{},
		CreatedAt:         created,
	}
}

func TestIsDueOn(t *testing.T) {
	it := habit([]string{"Seg", "Qua"}, 1)

	tests := []struct {
		date Date
		want bool
	}{
		{"2024-02-26", false}, // Monday, before start
		{"2024-03-01", true},  // start date (Friday)
		{"2024-03-02", false}, // Saturday
		{"2024-03-04", true},  // Monday
		{"2024-03-05", false}, // Tuesday
		{"2024-03-06", true},  // Wednesday
		{"2024-03-11", true},  // next Monday
	}
	for _, tt := range tests {
		t.Run(string(tt.date), func(t *testing.T) {
			if got := IsDueOn(it, tt.date); got != tt.want {
				t.Errorf("IsDueOn(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsDueOn_OneOff(t *testing.T) {
	it := oneOff("t1", "2024-03-04", time.Now())
	if !IsDueOn(it, "2024-03-04") {
		t.Error("one-off should be due on its start date")
	}
	if IsDueOn(it, "2024-03-05") {
		t.Error("one-off should not be due after its start date without a completion")
	}
	it.History["2024-03-07"] = DayState{RepetitionsDone: 1, DayStatus: StatusCompleted}
	if !IsDueOn(it, "2024-03-07") {
		t.Error("one-off should be due on the date it was completed")
	}
}

func TestRecordProgress_SingleShotToggles(t *testing.T) {
	it := habit([]string{"Seg"}, 1)
	date := Date("2024-03-04")

	it = Apply(it, date)
	if got := it.Day(date); got.DayStatus != StatusCompleted || got.RepetitionsDone != 1 {
		t.Fatalf("after first action = %+v, want {1 completed}", got)
	}
	it = Apply(it, date)
	if got := it.Day(date); got.DayStatus != StatusPending || got.RepetitionsDone != 0 {
		t.Fatalf("after second action = %+v, want {0 pending}", got)
	}
}

func TestRecordProgress_ResetOnTargetPlusOne(t *testing.T) {
	for _, target := range []int{1, 2, 3, 5} {
		it := habit([]string{"Seg"}, target)
		date := Date("2024-03-04")

		prev := 0
		for i := 1; i <= target; i++ {
			it = Apply(it, date)
			st := it.Day(date)
			if st.RepetitionsDone <= prev && st.DayStatus != StatusCompleted {
				t.Fatalf("target %d: call %d did not advance (%d -> %d)", target, i, prev, st.RepetitionsDone)
			}
			if st.RepetitionsDone > target {
				t.Fatalf("target %d: repetitions %d exceed target", target, st.RepetitionsDone)
			}
			if (st.DayStatus == StatusCompleted) != (i == target) {
				t.Fatalf("target %d: call %d status = %s", target, i, st.DayStatus)
			}
			if err := CheckInvariants(it); err != nil {
				t.Fatalf("target %d: invariants after call %d: %v", target, i, err)
			}
			prev = st.RepetitionsDone
		}

		it = Apply(it, date)
		if got := it.Day(date); got != (DayState{RepetitionsDone: 0, DayStatus: StatusPending}) {
			t.Errorf("target %d: call %d = %+v, want reset", target, target+1, got)
		}
	}
}

func TestRecordProgress_DoesNotMutateInput(t *testing.T) {
	it := habit([]string{"Seg", "Qua"}, 3)
	it.History["2024-03-04"] = DayState{RepetitionsDone: 1, DayStatus: StatusPending}

	history, _ := RecordProgress(it, "2024-03-06")

	if len(it.History) != 1 {
		t.Errorf("input history len = %d, want 1", len(it.History))
	}
	if got := it.History["2024-03-04"]; got.RepetitionsDone != 1 {
		t.Errorf("input entry changed to %+v", got)
	}
	if len(history) != 2 {
		t.Errorf("result history len = %d, want 2", len(history))
	}
	if history["2024-03-04"] != it.History["2024-03-04"] {
		t.Error("untouched entry differs in result")
	}
}

func TestRecordProgress_GlobalStatus(t *testing.T) {
	h := habit([]string{"Seg"}, 1)
	if _, status := RecordProgress(h, "2024-03-04"); status != StatusPending {
		t.Errorf("habit global status = %s, want pending", status)
	}

	o := oneOff("t1", "2024-03-04", time.Now())
	_, status := RecordProgress(o, "2024-03-04")
	if status != StatusCompleted {
		t.Errorf("one-off global status = %s, want completed", status)
	}
}

func TestAgendaFor_OneOffFloatsUntilCompleted(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	it := oneOff("t1", "2024-03-04", base)

	for _, d := range []Date{"2024-01-01", "2024-03-04", "2024-03-20", "2025-12-31"} {
		if got := AgendaFor([]Item{it}, d); len(got) != 1 {
			t.Errorf("pending one-off missing from agenda on %s", d)
		}
	}

	done := Apply(it, "2024-03-10")
	if done.GlobalStatus != StatusCompleted {
		t.Fatalf("global status = %s, want completed", done.GlobalStatus)
	}
	for _, d := range []Date{"2024-03-04", "2024-03-09", "2024-03-11"} {
		if got := AgendaFor([]Item{done}, d); len(got) != 0 {
			t.Errorf("completed one-off should not appear on %s", d)
		}
	}
	if got := AgendaFor([]Item{done}, "2024-03-10"); len(got) != 1 {
		t.Error("completed one-off should stay on its completion date")
	}

	reopened := Apply(done, "2024-03-10")
	if got := AgendaFor([]Item{reopened}, "2024-04-01"); len(got) != 1 {
		t.Error("reset one-off should float again")
	}
}

func TestAgendaFor_OrderAndFilter(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a := habit([]string{"Seg"}, 1)
	a.ID, a.CreatedAt = "a", t0
	b := habit([]string{"Ter"}, 1)
	b.ID, b.CreatedAt = "b", t0.Add(time.Hour)
	c := oneOff("c", "2024-03-01", t0.Add(2*time.Hour))
	d := habit([]string{"Seg"}, 1)
	d.ID, d.CreatedAt = "d", t0 // same creation time as a

	got := AgendaFor([]Item{a, b, c, d}, "2024-03-04") // Monday
	var ids []string
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	want := []string{"c", "a", "d"}
	if len(ids) != len(want) {
		t.Fatalf("agenda = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("agenda = %v, want %v", ids, want)
		}
	}
}

func TestRegistry_Complete(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		oneOff("1", "2024-03-01", t0),
		oneOff("2", "2024-03-02", t0.Add(time.Minute)),
		habit([]string{"Dom"}, 2),
	}
	items[2].CreatedAt = t0.Add(-time.Hour)

	got := Registry(items)
	if len(got) != len(items) {
		t.Fatalf("registry len = %d, want %d", len(got), len(items))
	}
	if got[0].ID != "2" || got[2].ID != "h1" {
		t.Errorf("registry order = %s,%s,%s", got[0].ID, got[1].ID, got[2].ID)
	}
	if items[0].ID != "1" {
		t.Error("Registry reordered its input")
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"Seg", "Seg", false},
		{"sáb", "Sáb", false},
		{"Sab", "Sáb", false},
		{"monday", "Seg", false},
		{"SUN", "Dom", false},
		{"Funday", "", true},
	}
	for _, tt := range tests {
		got, err := ParseWeekday(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseWeekday(%q) error = %v, want error %v", tt.in, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWeekday(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	days, err := NormalizeWeekdays([]string{"Qua", "mon", "Seg", ""})
	if err != nil {
		t.Fatalf("NormalizeWeekdays error = %v", err)
	}
	if len(days) != 2 || days[0] != "Seg" || days[1] != "Qua" {
		t.Errorf("NormalizeWeekdays = %v, want [Seg Qua]", days)
	}
}

func TestDate(t *testing.T) {
	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Error("ParseDate should reject month 13")
	}
	d, err := ParseDate(" 2024-03-04 ")
	if err != nil {
		t.Fatalf("ParseDate error = %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Errorf("Weekday = %v, want Monday", d.Weekday())
	}
	if got := d.AddDays(-4); got != "2024-02-29" {
		t.Errorf("AddDays(-4) = %s, want 2024-02-29", got)
	}
}
