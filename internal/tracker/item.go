// Package tracker holds the habit and task tracking core: the item model,
// recurrence evaluation, the progress ledger, view filtering, and the
// persist-then-apply service that keeps an in-memory collection in step with
// a record store.
package tracker

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies an item.
type Kind string

const (
	KindHabit  Kind = "habit"
	KindDaily  Kind = "daily"
	KindOneOff Kind = "oneoff"
)

// ParseKind accepts the canonical kind names plus a few aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "habit", "habito", "hábito":
		return KindHabit, nil
	case "daily", "cotidiano", "routine":
		return KindDaily, nil
	case "oneoff", "one-off", "task", "tarefa":
		return KindOneOff, nil
	}
	return "", &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", s)}
}

// Recurring reports whether items of this kind repeat on weekdays.
func (k Kind) Recurring() bool { return k == KindHabit || k == KindDaily }

// Status is the completion state of a day or of a one-off item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// DayState is the progress recorded for a single date.
type DayState struct {
	RepetitionsDone int    `json:"repetitions_done"`
	DayStatus       Status `json:"day_status"`
}

// Category groups items for display.
type Category string

// Categories is the closed set of item categories; the first is the default.
var Categories = []Category{"Trabalho", "Pessoal", "Saúde", "Estudo", "Urgente"}

// ParseCategory matches s case-insensitively against Categories. Empty input
// yields the default category.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Categories[0], nil
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", s)}
}

// Icon names a symbol from the fixed icon set.
type Icon string

const (
	IconList        Icon = "List"
	IconPlus        Icon = "Plus"
	IconCheck       Icon = "Check"
	IconTrash       Icon = "Trash"
	IconSun         Icon = "Sun"
	IconMoon        Icon = "Moon"
	IconWater       Icon = "Water"
	IconCoffee      Icon = "Coffee"
	IconDumbbell    Icon = "Dumbbell"
	IconBenchPress  Icon = "BenchPress"
	IconPill        Icon = "Pill"
	IconSeed        Icon = "Seed"
	IconActivity    Icon = "Activity"
	IconZap         Icon = "Zap"
	IconBook        Icon = "Book"
	IconBriefcase   Icon = "Briefcase"
	IconHeart       Icon = "Heart"
	IconStethoscope Icon = "Stethoscope"
	IconApple       Icon = "Apple"
)

// Icons lists every icon in picker order.
var Icons = []Icon{
	IconList, IconSun, IconMoon, IconWater, IconCoffee, IconDumbbell, IconBenchPress,
	IconPill, IconSeed, IconActivity, IconZap, IconBook, IconBriefcase, IconHeart,
	IconStethoscope, IconApple, IconCheck, IconPlus, IconTrash,
}

// ParseIcon validates an icon name. Empty input yields IconList.
func ParseIcon(s string) (Icon, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return IconList, nil
	}
	for _, ic := range Icons {
		if strings.EqualFold(string(ic), s) {
			return ic, nil
		}
	}
	return "", &ValidationError{Field: "icon", Reason: fmt.Sprintf("unknown icon %q", s)}
}

// Colors is the icon colour palette; the first entry is the default.
var Colors = []string{
	"#0f172a", "#ef4444", "#f59e0b", "#10b981",
	"#3b82f6", "#8b5cf6", "#ec4899", "#06b6d4",
}

// Item is a trackable habit, daily routine, or one-off task.
type Item struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Kind              Kind              `json:"kind"`
	StartDate         Date              `json:"start_date"`
	RecurrenceDays    []string          `json:"recurrence_days,omitempty"`
	TargetRepetitions int               `json:"target_repetitions"`
	GlobalStatus      Status            `json:"global_status"`
	History           map[Date]DayState `json:"history,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`

	Category  Category `json:"category,omitempty"`
	Icon      Icon     `json:"icon,omitempty"`
	IconColor string   `json:"icon_color,omitempty"`
}

// Clone returns a deep copy of it; the history map and day list are not shared.
func (it Item) Clone() Item {
	out := it
	if it.RecurrenceDays != nil {
		out.RecurrenceDays = append([]string(nil), it.RecurrenceDays...)
	}
	if it.History != nil {
		out.History = make(map[Date]DayState, len(it.History))
		for k, v := range it.History {
			out.History[k] = v
		}
	}
	return out
}

// Day returns the recorded state for date, or a zero pending state.
func (it Item) Day(date Date) DayState {
	if st, ok := it.History[date]; ok {
		return st
	}
	return DayState{DayStatus: StatusPending}
}

// CompletedOn reports whether it has a completed history entry on date.
func (it Item) CompletedOn(date Date) bool {
	st, ok := it.History[date]
	return ok && st.DayStatus == StatusCompleted
}

// HasDay reports whether day (a recurrence label) is in it.RecurrenceDays.
func (it Item) HasDay(day string) bool {
	for _, d := range it.RecurrenceDays {
		if d == day {
			return true
		}
	}
	return false
}

// CheckInvariants reports the first structural problem with it, or nil.
func CheckInvariants(it Item) error {
	if strings.TrimSpace(it.Title) == "" {
		return &ValidationError{Field: "title", Reason: "title is required"}
	}
	if it.TargetRepetitions < 1 {
		return &ValidationError{Field: "target_repetitions", Reason: "target must be at least 1"}
	}
	if !it.StartDate.Valid() {
		return &ValidationError{Field: "start_date", Reason: fmt.Sprintf("invalid date %q", it.StartDate)}
	}
	if it.Kind == KindOneOff && len(it.RecurrenceDays) > 0 {
		return &ValidationError{Field: "recurrence_days", Reason: "one-off items cannot repeat"}
	}
	for date, st := range it.History {
		if !date.Valid() {
			return &ValidationError{Field: "history", Reason: fmt.Sprintf("invalid history date %q", date)}
		}
		if st.RepetitionsDone < 0 || st.RepetitionsDone > it.TargetRepetitions {
			return &ValidationError{Field: "history", Reason: fmt.Sprintf("%s: %d repetitions outside 0..%d", date, st.RepetitionsDone, it.TargetRepetitions)}
		}
		if (st.DayStatus == StatusCompleted) != (st.RepetitionsDone == it.TargetRepetitions) {
			return &ValidationError{Field: "history", Reason: fmt.Sprintf("%s: status %s does not match %d/%d", date, st.DayStatus, st.RepetitionsDone, it.TargetRepetitions)}
		}
	}
	return nil
}
