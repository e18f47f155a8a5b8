package notify

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"zenflow/internal/tracker"
)

type recordingNotifier struct {
	sent []Message
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingNotifier) Supported() bool { return true }

func item(id, title string, kind tracker.Kind, days []string, target int, created time.Time) tracker.Item {
	return tracker.Item{
		ID: id, Title: title, Kind: kind, StartDate: "2024-03-01",
		RecurrenceDays: days, TargetRepetitions: target,
		GlobalStatus: tracker.StatusPending,
		History:      map[tracker.Date]tracker.DayState{},
		CreatedAt:    created,
	}
}

func TestNew(t *testing.T) {
	n := New()
	if n == nil {
		t.Fatal("New() returned nil")
	}
	if runtime.GOOS != "darwin" && runtime.GOOS != "linux" && n.Supported() {
		t.Errorf("Supported() should be false on %s", runtime.GOOS)
	}
}

func TestReminder(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	water := item("w", "Water", tracker.KindDaily, []string{"Seg"}, 8, base)
	water.History["2024-03-04"] = tracker.DayState{RepetitionsDone: 3, DayStatus: tracker.StatusPending}
	run := item("r", "Run", tracker.KindHabit, []string{"Seg"}, 1, base.Add(time.Minute))
	run.History["2024-03-04"] = tracker.DayState{RepetitionsDone: 1, DayStatus: tracker.StatusCompleted}
	call := item("c", "Call bank", tracker.KindOneOff, nil, 1, base.Add(2*time.Minute))

	msg, ok := Reminder([]tracker.Item{water, run, call}, "2024-03-04")
	if !ok {
		t.Fatal("Reminder() ok = false, want true")
	}
	if msg.Title != "zenflow: 2 pending for 2024-03-04" {
		t.Errorf("Title = %q", msg.Title)
	}
	if !strings.Contains(msg.Body, "Water (3/8)") || !strings.Contains(msg.Body, "Call bank") {
		t.Errorf("Body = %q", msg.Body)
	}
	if strings.Contains(msg.Body, "Run") {
		t.Errorf("completed item listed in %q", msg.Body)
	}
}

func TestReminder_Summarises(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	var items []tracker.Item
	for i, title := range []string{"a", "b", "c", "d", "e"} {
		items = append(items, item(title, title, tracker.KindOneOff, nil, 1, base.Add(time.Duration(i)*time.Minute)))
	}
	msg, _ := Reminder(items, "2024-03-04")
	if !strings.HasSuffix(msg.Body, "and 2 more") {
		t.Errorf("Body = %q", msg.Body)
	}
}

func TestRemind(t *testing.T) {
	n := &recordingNotifier{}
	call := item("c", "Call bank", tracker.KindOneOff, nil, 1, time.Now())

	sent, err := Remind(context.Background(), n, []tracker.Item{call}, "2024-03-04", true)
	if err != nil || !sent {
		t.Fatalf("Remind() = %v, %v", sent, err)
	}
	if len(n.sent) != 1 || !n.sent[0].Sound || n.sent[0].Title != "zenflow: 1 pending for 2024-03-04" {
		t.Errorf("sent = %+v", n.sent)
	}

	sent, err = Remind(context.Background(), n, nil, "2024-03-04", false)
	if err != nil || sent {
		t.Errorf("Remind() with nothing pending = %v, %v", sent, err)
	}

	n.err = errors.New("daemon down")
	if _, err := Remind(context.Background(), n, []tracker.Item{call}, "2024-03-04", false); err == nil {
		t.Error("Remind() should surface notifier errors")
	}
}

// TestNotify_Manual actually shows a notification.
func TestNotify_Manual(t *testing.T) {
	if testing.Short() || os.Getenv("RUN_NOTIFY_TESTS") != "1" {
		t.Skip("set RUN_NOTIFY_TESTS=1 to show a real notification")
	}
	n := New()
	if !n.Supported() {
		t.Skip("notifications not supported on this platform")
	}
	if err := n.Notify(context.Background(), Message{Title: "zenflow test", Body: "hello"}); err != nil {
		t.Errorf("Notify() error: %v", err)
	}
}
