// Package notify sends desktop reminders for pending agenda items, using
// osascript on macOS and notify-send on Linux.
package notify

import (
	"context"
	"fmt"
	"strings"

	"zenflow/internal/tracker"
)

// Message is one desktop notification.
type Message struct {
	Title string
	Body  string
	Sound bool
}

// Notifier delivers desktop notifications.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error

	// Supported reports whether the platform tool is installed.
	Supported() bool
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Message) error { return nil }
func (noopNotifier) Supported() bool                       { return false }

// New returns the platform notifier, or a no-op when the platform tool is
// missing.
func New() Notifier {
	n := newPlatformNotifier()
	if n == nil || !n.Supported() {
		return noopNotifier{}
	}
	return n
}

// maxListed caps how many titles a reminder names before summarising.
const maxListed = 3

// Reminder builds the reminder for the pending agenda items of date. ok is
// false when everything on the agenda is already completed.
func Reminder(items []tracker.Item, date tracker.Date) (msg Message, ok bool) {
	var pending []tracker.Item
	for _, it := range tracker.AgendaFor(items, date) {
		if !it.CompletedOn(date) {
			pending = append(pending, it)
		}
	}
	if len(pending) == 0 {
		return Message{}, false
	}

	msg.Title = fmt.Sprintf("zenflow: %d pending for %s", len(pending), date)

	lines := make([]string, 0, maxListed+1)
	for i, it := range pending {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("and %d more", len(pending)-maxListed))
			break
		}
		line := "• " + it.Title
		if it.TargetRepetitions > 1 {
			line += fmt.Sprintf(" (%d/%d)", it.Day(date).RepetitionsDone, it.TargetRepetitions)
		}
		lines = append(lines, line)
	}
	msg.Body = strings.Join(lines, "\n")
	return msg, true
}

// Remind sends the reminder for date through n. It reports whether a
// notification was sent.
func Remind(ctx context.Context, n Notifier, items []tracker.Item, date tracker.Date, sound bool) (bool, error) {
	msg, ok := Reminder(items, date)
	if !ok {
		return false, nil
	}
	msg.Sound = sound
	if err := n.Notify(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}
